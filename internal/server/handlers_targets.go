package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/models"
	"github.com/muffakiribnhamid/Scholarly/internal/reconcile"
)

func (s *Server) targetReconciler(c *gin.Context) (*reconcile.TargetReconciler, bool) {
	id := callerIdentity(c)
	r := reconcile.NewTargetReconciler(s.store, s.log, id.UID)
	if err := r.Load(c.Request.Context()); err != nil {
		s.log.Error("target load failed", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not load targets"})
		return nil, false
	}
	return r, true
}

type targetsResponse struct {
	Targets   []models.Target `json:"targets"`
	Completed int             `json:"completed"`
}

func (s *Server) handleGetTargets(c *gin.Context) {
	r, ok := s.targetReconciler(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, targetsResponse{Targets: r.Targets(), Completed: r.CompletedCount()})
}

type createTargetRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCreateTarget(c *gin.Context) {
	var req createTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid target payload"})
		return
	}

	r, ok := s.targetReconciler(c)
	if !ok {
		return
	}
	target, err := r.Add(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, target)
}

func (s *Server) handleToggleTarget(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid target id"})
		return
	}

	r, ok := s.targetReconciler(c)
	if !ok {
		return
	}
	if err := r.Toggle(c.Request.Context(), targetID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, targetsResponse{Targets: r.Targets(), Completed: r.CompletedCount()})
}

func (s *Server) handleDeleteTarget(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid target id"})
		return
	}

	r, ok := s.targetReconciler(c)
	if !ok {
		return
	}
	if err := r.Delete(c.Request.Context(), targetID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, targetsResponse{Targets: r.Targets(), Completed: r.CompletedCount()})
}
