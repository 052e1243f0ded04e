package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/reconcile"
)

type statsResponse struct {
	Weekly     []reconcile.WeekBucket    `json:"weekly"`
	DailyFocus []reconcile.DayFocus      `json:"dailyFocus"`
	Categories []reconcile.CategoryCount `json:"categories"`
}

// handleGetStats recomputes the three aggregates from the document on every
// request. Nothing is cached between requests.
func (s *Server) handleGetStats(c *gin.Context) {
	profile, _, ok := s.loadProfile(c)
	if !ok {
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, statsResponse{
		Weekly:     reconcile.WeeklyPerformance(profile.Tasks, profile.CompletedTasks, now),
		DailyFocus: reconcile.DailyFocus(profile.FocusSessions),
		Categories: reconcile.CategoryCounts(profile.Tasks),
	})
}

type focusSessionRequest struct {
	Duration int `json:"duration" binding:"required"`
}

// handleRecordFocusSession persists one completed focus interval for timers
// that run on the caller's side.
func (s *Server) handleRecordFocusSession(c *gin.Context) {
	id := callerIdentity(c)

	var req focusSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Duration < reconcile.MinLengthMinutes || req.Duration > reconcile.MaxLengthMinutes {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "duration must be between 1 and 60 minutes"})
		return
	}

	if err := reconcile.RecordFocusSession(c.Request.Context(), s.store, id.UID, req.Duration, time.Now()); err != nil {
		s.log.Error("focus session write failed", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not record focus session"})
		return
	}
	c.Status(http.StatusCreated)
}

type profileResponse struct {
	DisplayName     string `json:"displayName"`
	Email           string `json:"email"`
	School          string `json:"school"`
	Grade           string `json:"grade"`
	Country         string `json:"country"`
	TotalTasks      int    `json:"totalTasks"`
	CompletedTasks  int64  `json:"completedTasks"`
	FocusedSessions int64  `json:"focusedSessions"`
	Quote           string `json:"quote"`
}

// handleGetProfile returns the dashboard header data plus a fresh quote.
// The quote source never fails, so neither does this assembly step.
func (s *Server) handleGetProfile(c *gin.Context) {
	id := callerIdentity(c)
	profile, found, ok := s.loadProfile(c)
	if !ok {
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, errorResponse{Error: "profile not set up"})
		return
	}

	resp := profileResponse{
		DisplayName:     profile.DisplayName,
		Email:           profile.Email,
		School:          profile.School,
		Grade:           profile.Grade,
		Country:         profile.Country,
		TotalTasks:      len(profile.Tasks),
		CompletedTasks:  profile.TotalTasksCompleted,
		FocusedSessions: profile.FocusedSessions,
		Quote:           s.quotes.Random(c.Request.Context()),
	}
	if resp.DisplayName == "" {
		resp.DisplayName = id.DisplayName
	}
	s.log.Debug("profile served", zap.String("uid", id.UID))
	c.JSON(http.StatusOK, resp)
}

type quoteResponse struct {
	Quote string `json:"quote"`
}

func (s *Server) handleGetQuote(c *gin.Context) {
	c.JSON(http.StatusOK, quoteResponse{Quote: s.quotes.Random(c.Request.Context())})
}
