package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/assistant"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// handleAIChat forwards one message to the assistant. A provider failure
// degrades to the fixed fallback reply with a 200; the conversation keeps
// going either way.
func (s *Server) handleAIChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	reply, err := s.assistant.Complete(c.Request.Context(), req.Message)
	if err != nil {
		s.log.Warn("assistant request failed", zap.Error(err))
		reply = assistant.FallbackReply
	}
	c.JSON(http.StatusOK, chatResponse{Reply: reply})
}
