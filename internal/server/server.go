// Package server exposes every user operation over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/docstore"
	"github.com/muffakiribnhamid/Scholarly/internal/flags"
	"github.com/muffakiribnhamid/Scholarly/internal/identity"
)

// Completer is the completion-text boundary as the server sees it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QuoteSource returns an inspirational string and never fails.
type QuoteSource interface {
	Random(ctx context.Context) string
}

// Server wires the adapters behind the HTTP API.
type Server struct {
	store     docstore.Store
	ids       identity.Provider
	assistant Completer
	quotes    QuoteSource
	flags     *flags.Store
	log       *zap.Logger
	router    *gin.Engine

	// removalDelay is passed to task reconcilers; the API has no visual
	// transition to wait for, so the default is zero.
	removalDelay time.Duration
}

// New builds the server and its route table.
func New(store docstore.Store, ids identity.Provider, assistant Completer, quotes QuoteSource, flagStore *flags.Store, log *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		store:     store,
		ids:       ids,
		assistant: assistant,
		quotes:    quotes,
		flags:     flagStore,
		log:       log,
		router:    router,
	}

	router.Use(s.requestID(), s.requestLog())

	router.GET("/api/health", s.handleHealth)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
		auth.POST("/logout", s.requireAuth(), s.handleLogout)
		auth.GET("/user", s.requireAuth(), s.handleCurrentUser)
	}

	router.GET("/api/gate", s.handleGate)
	router.POST("/api/onboard", s.handleOnboard)

	api := router.Group("/api", s.requireAuth())
	{
		api.POST("/setup", s.handleSetup)

		api.GET("/tasks", s.handleGetTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.POST("/tasks/:id/complete", s.handleCompleteTask)
		api.GET("/tasks/search", s.handleSearchTasks)

		api.GET("/targets", s.handleGetTargets)
		api.POST("/targets", s.handleCreateTarget)
		api.POST("/targets/:id/toggle", s.handleToggleTarget)
		api.DELETE("/targets/:id", s.handleDeleteTarget)

		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handleSaveSettings)

		api.GET("/stats", s.handleGetStats)
		api.POST("/focus-sessions", s.handleRecordFocusSession)

		api.GET("/profile", s.handleGetProfile)
		api.GET("/quote", s.handleGetQuote)

		api.POST("/ai/chat", s.handleAIChat)
	}

	return s
}

// Run starts the listener.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, mainly to tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
	})
}
