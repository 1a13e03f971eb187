package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/intentbot-backend/internal/http/response"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/services"
)

type TrainingHandler struct {
	log             *logger.Logger
	trainingService services.TrainingService
}

func NewTrainingHandler(baseLog *logger.Logger, trainingService services.TrainingService) *TrainingHandler {
	return &TrainingHandler{
		log:             baseLog.With("handler", "TrainingHandler"),
		trainingService: trainingService,
	}
}

func (th *TrainingHandler) Retrain(c *gin.Context) {
	var req struct {
		Epochs     int    `json:"epochs"`
		SplitRatio string `json:"split_ratio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	result, err := th.trainingService.Train(dc, req.Epochs, req.SplitRatio)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (th *TrainingHandler) History(c *gin.Context) {
	dc := dbctx.Context{Ctx: c.Request.Context()}
	runs, err := th.trainingService.History(dc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": runs})
}

func (th *TrainingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	run, err := th.trainingService.Get(dc, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, run)
}

func (th *TrainingHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	if err := th.trainingService.Delete(dc, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "training run deleted"})
}
