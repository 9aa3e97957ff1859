package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type setPriceRequest struct {
	ID    string   `json:"id"`
	Price *float64 `json:"price"`
}

func (s *Server) SetPrice(c *gin.Context) {
	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Price == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.book.Set(strings.TrimSpace(req.ID), *req.Price); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) GetPrice(c *gin.Context) {
	giftID := strings.TrimSpace(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"id":    giftID,
		"price": s.book.Get(giftID),
	})
}
