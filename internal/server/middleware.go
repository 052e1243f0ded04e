package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/identity"
)

const (
	ctxKeyIdentity  = "identity"
	ctxKeyRequestID = "request_id"
)

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("request_id", c.GetString(ctxKeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// requireAuth verifies the bearer token and stashes the caller identity.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing authorization token"})
			return
		}
		id, err := s.ids.CurrentUser(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
			return
		}
		c.Set(ctxKeyIdentity, id)
		c.Next()
	}
}

func extractBearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return strings.TrimSpace(header)
}

func callerIdentity(c *gin.Context) *identity.Identity {
	v, ok := c.Get(ctxKeyIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*identity.Identity)
	return id
}

type errorResponse struct {
	Error string `json:"error"`
}
