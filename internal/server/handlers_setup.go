package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/gate"
	"github.com/muffakiribnhamid/Scholarly/internal/models"
)

const usersCollection = "users"

type setupRequest struct {
	School   string   `json:"school"`
	Grade    string   `json:"grade"`
	Country  string   `json:"country"`
	Subjects []string `json:"subjects"`
}

type setupResponse struct {
	Profile  models.UserProfile `json:"profile"`
	Redirect string             `json:"redirect"`
}

// handleSetup creates the per-user document. This is the only place the
// document is created whole; everything after runs field-level updates.
func (s *Server) handleSetup(c *gin.Context) {
	id := callerIdentity(c)

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.School == "" || req.Grade == "" || req.Country == "" || len(req.Subjects) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Please fill in all fields and select at least one subject"})
		return
	}

	now := time.Now().Format(models.TimeLayout)
	profile := models.UserProfile{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		School:      req.School,
		Grade:       req.Grade,
		Country:     req.Country,
		Subjects:    req.Subjects,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx := c.Request.Context()
	if err := s.store.Set(ctx, usersCollection, id.UID, profile); err != nil {
		s.log.Error("profile create failed", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not save profile"})
		return
	}
	if err := s.flags.For(id.UID).MarkAccountSetup(); err != nil {
		s.log.Warn("flag write failed", zap.String("uid", id.UID), zap.Error(err))
	}

	s.log.Info("profile created", zap.String("uid", id.UID), zap.String("school", req.School))
	c.JSON(http.StatusCreated, setupResponse{Profile: profile, Redirect: gate.RouteDashboard})
}
