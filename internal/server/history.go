package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) History(c *gin.Context) {
	roomID := strings.TrimSpace(c.Query("roomId"))
	if roomID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	buckets, err := s.statsSvc.TimeStats(c.Request.Context(), roomID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, buckets)
}
