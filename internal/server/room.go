package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	roomdomain "github.com/streamlens/streamlens/internal/room/domain"
)

type upsertRoomRequest struct {
	RoomID  string `json:"roomId"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (s *Server) UpsertRoom(c *gin.Context) {
	var req upsertRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	room, err := s.roomSvc.Upsert(c.Request.Context(), roomdomain.UpsertRequest{
		RoomID:  strings.TrimSpace(req.RoomID),
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "room": room})
}

func (s *Server) ListRooms(c *gin.Context) {
	rooms, err := s.roomSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}
