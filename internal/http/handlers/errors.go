package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/intentbot-backend/internal/http/response"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
)

// respondServiceError maps service-layer sentinels to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, pkgerrors.ErrInsufficientData):
		response.RespondError(c, http.StatusBadRequest, "insufficient_data", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrDuplicateTag):
		response.RespondError(c, http.StatusConflict, "duplicate_tag", err)
	case errors.Is(err, pkgerrors.ErrArtifactUnavailable):
		response.RespondError(c, http.StatusServiceUnavailable, "model_unavailable", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
