package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/intentbot-backend/internal/http/middleware"
	"github.com/yungbote/intentbot-backend/internal/http/response"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	user, err := ah.authService.Register(dc, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, user)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	token, user, err := ah.authService.Login(dc, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": token,
		"user":         user,
	})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	dc := dbctx.Context{Ctx: c.Request.Context()}
	user, err := ah.authService.GetUser(dc, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, user)
}
