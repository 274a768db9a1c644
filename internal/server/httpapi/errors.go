package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sketchmotion/sketchmotion/internal/common"
)

// ErrorResponse is the JSON error envelope of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError maps a sentinel error to its HTTP status and aborts the
// request. Every handler funnels failures through here so the taxonomy is
// applied in exactly one place.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		WriteErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	case errors.Is(err, common.ErrForbidden):
		WriteErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, common.ErrNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, common.ErrInvalidRequest):
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
	case errors.Is(err, common.ErrMisconfigured):
		WriteErrorCode(c, http.StatusInternalServerError, "MISCONFIGURED", "service misconfigured")
	case errors.Is(err, common.ErrUpstream):
		WriteErrorCode(c, http.StatusInternalServerError, "UPSTREAM", "upstream provider failed")
	default:
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func WriteErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}
