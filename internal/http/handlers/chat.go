package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/intentbot-backend/internal/http/response"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/services"
)

type ChatHandler struct {
	log         *logger.Logger
	chatService services.ChatService
}

func NewChatHandler(baseLog *logger.Logger, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{log: baseLog.With("handler", "ChatHandler"), chatService: chatService}
}

func (ch *ChatHandler) Classify(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	result, err := ch.chatService.Classify(dc, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (ch *ChatHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	dc := dbctx.Context{Ctx: c.Request.Context()}
	logs, total, err := ch.chatService.History(dc, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logs": logs, "total": total})
}

func (ch *ChatHandler) ListPending(c *gin.Context) {
	dc := dbctx.Context{Ctx: c.Request.Context()}
	logs, err := ch.chatService.ListPending(dc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logs": logs})
}

func (ch *ChatHandler) Assign(c *gin.Context) {
	var req struct {
		LogID       uuid.UUID `json:"log_id"`
		IntentID    uuid.UUID `json:"intent_id"`
		PatternText string    `json:"pattern_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	if err := ch.chatService.Promote(dc, req.LogID, req.IntentID, req.PatternText); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "chat log assigned to intent"})
}
