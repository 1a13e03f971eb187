package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/intentbot-backend/internal/http/response"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/services"
)

type IntentHandler struct {
	log            *logger.Logger
	datasetService services.DatasetService
	datasetPath    string
}

func NewIntentHandler(baseLog *logger.Logger, datasetService services.DatasetService, datasetPath string) *IntentHandler {
	return &IntentHandler{
		log:            baseLog.With("handler", "IntentHandler"),
		datasetService: datasetService,
		datasetPath:    datasetPath,
	}
}

func (ih *IntentHandler) Create(c *gin.Context) {
	var req services.IntentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	intent, err := ih.datasetService.Create(dc, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, intent)
}

func (ih *IntentHandler) List(c *gin.Context) {
	dc := dbctx.Context{Ctx: c.Request.Context()}
	intents, err := ih.datasetService.List(dc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"intents": intents})
}

func (ih *IntentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	intent, err := ih.datasetService.Get(dc, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, intent)
}

func (ih *IntentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req services.IntentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	intent, err := ih.datasetService.Update(dc, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, intent)
}

func (ih *IntentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	if err := ih.datasetService.Delete(dc, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "intent deleted"})
}

func (ih *IntentHandler) AddPattern(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		PatternText string `json:"pattern_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	pattern, err := ih.datasetService.AddPattern(dc, id, req.PatternText)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, pattern)
}

// Sync imports the configured dataset JSON file, skipping intents whose
// tag already exists.
func (ih *IntentHandler) Sync(c *gin.Context) {
	data, err := os.ReadFile(ih.datasetPath)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "dataset_unreadable", err)
		return
	}
	var doc services.ExchangeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		response.RespondError(c, http.StatusBadRequest, "dataset_malformed", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	inserted, err := ih.datasetService.Import(dc, doc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	ih.log.Info("dataset synced", "path", ih.datasetPath, "inserted", inserted)
	response.RespondOK(c, gin.H{"inserted": inserted})
}

func (ih *IntentHandler) Export(c *gin.Context) {
	dc := dbctx.Context{Ctx: c.Request.Context()}
	doc, err := ih.datasetService.Export(dc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, doc)
}
