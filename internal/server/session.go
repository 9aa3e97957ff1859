package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type endSessionRequest struct {
	RoomID   string         `json:"roomId"`
	Snapshot map[string]any `json:"snapshot"`
}

func (s *Server) EndSession(c *gin.Context) {
	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	sessionID, err := s.sessionSvc.Create(c.Request.Context(), strings.TrimSpace(req.RoomID), req.Snapshot)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": sessionID})
}

func (s *Server) ListSessions(c *gin.Context) {
	summaries, err := s.sessionSvc.List(c.Request.Context(), c.Query("roomId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (s *Server) GetSession(c *gin.Context) {
	snapshot, err := s.sessionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
