package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamlens/streamlens/internal/pricebook"
	roomdomain "github.com/streamlens/streamlens/internal/room/domain"
	sessiondomain "github.com/streamlens/streamlens/internal/session/domain"
	"github.com/streamlens/streamlens/internal/stream"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware renders the last gin error as a JSON body
// when no handler has written a response yet.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, stream.ErrInvalidTarget),
		errors.Is(err, roomdomain.ErrInvalidRoom),
		errors.Is(err, sessiondomain.ErrInvalidRoom),
		errors.Is(err, sessiondomain.ErrInvalidSession),
		errors.Is(err, pricebook.ErrInvalidGift),
		errors.Is(err, pricebook.ErrInvalidPrice):
		return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: err.Error()}
	case errors.Is(err, sessiondomain.ErrSessionNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	case errors.Is(err, sessiondomain.ErrSequenceExhausted):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal error"}
	}
}
