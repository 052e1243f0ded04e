package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/models"
)

// loadProfile fetches the caller's document. A missing document is not an
// error; callers decide what absence means.
func (s *Server) loadProfile(c *gin.Context) (models.UserProfile, bool, bool) {
	id := callerIdentity(c)
	var profile models.UserProfile
	found, err := s.store.Get(c.Request.Context(), usersCollection, id.UID, &profile)
	if err != nil {
		s.log.Error("profile load failed", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not load profile"})
		return models.UserProfile{}, false, false
	}
	return profile, found, true
}

// handleGetSettings returns the merged settings view: document values laid
// over the defaults, absent fields keeping their default.
func (s *Server) handleGetSettings(c *gin.Context) {
	id := callerIdentity(c)
	profile, _, ok := s.loadProfile(c)
	if !ok {
		return
	}

	settings := models.MergeSettings(profile.Notifications, profile.Preferences)
	settings.DisplayName = profile.DisplayName
	settings.Email = profile.Email
	settings.School = profile.School
	settings.Grade = profile.Grade
	if settings.DisplayName == "" {
		settings.DisplayName = id.DisplayName
	}
	if settings.Email == "" {
		settings.Email = id.Email
	}

	c.JSON(http.StatusOK, settings)
}

type saveSettingsRequest struct {
	DisplayName   string                `json:"displayName"`
	Notifications *models.Notifications `json:"notifications"`
	Preferences   *models.Preferences   `json:"preferences"`
}

// handleSaveSettings persists notification and preference documents and,
// when the display name changed, pushes it to the identity provider too.
func (s *Server) handleSaveSettings(c *gin.Context) {
	id := callerIdentity(c)

	var req saveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid settings payload"})
		return
	}

	fields := map[string]any{
		"updatedAt": time.Now().Format(models.TimeLayout),
	}
	if req.Notifications != nil {
		fields["notifications"] = req.Notifications
	}
	if req.Preferences != nil {
		fields["preferences"] = req.Preferences
	}
	if req.DisplayName != "" {
		fields["displayName"] = req.DisplayName
	}

	ctx := c.Request.Context()
	if err := s.store.UpdateFields(ctx, usersCollection, id.UID, fields); err != nil {
		s.log.Error("settings write failed", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not save settings"})
		return
	}
	if req.DisplayName != "" && req.DisplayName != id.DisplayName {
		if err := s.ids.UpdateDisplayName(ctx, id.UID, req.DisplayName); err != nil {
			s.log.Warn("display name update failed", zap.String("uid", id.UID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, models.MergeSettings(req.Notifications, req.Preferences))
}
