package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/models"
	"github.com/muffakiribnhamid/Scholarly/internal/reconcile"
	"github.com/muffakiribnhamid/Scholarly/internal/search"
)

// taskReconciler builds a loaded reconciler for the caller. Each request
// gets a fresh one; the document is the source of truth between requests.
func (s *Server) taskReconciler(c *gin.Context) (*reconcile.TaskReconciler, bool) {
	id := callerIdentity(c)
	r := reconcile.NewTaskReconciler(s.store, s.log, id.UID)
	r.SetRemovalDelay(s.removalDelay)
	if err := r.Load(c.Request.Context()); err != nil {
		s.log.Error("task load failed", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not load tasks"})
		return nil, false
	}
	return r, true
}

type tasksResponse struct {
	Tasks     []models.Task                `json:"tasks"`
	Completed []models.CompletedTaskRecord `json:"completed"`
}

func (s *Server) handleGetTasks(c *gin.Context) {
	r, ok := s.taskReconciler(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tasksResponse{Tasks: r.Tasks(), Completed: r.Completed()})
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Subject     string `json:"subject"`
	Priority    string `json:"priority"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task payload"})
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	r, ok := s.taskReconciler(c)
	if !ok {
		return
	}
	task, err := r.Add(c.Request.Context(), models.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Subject:     req.Subject,
		Priority:    req.Priority,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		return
	}

	r, ok := s.taskReconciler(c)
	if !ok {
		return
	}
	if err := r.Complete(c.Request.Context(), taskID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasksResponse{Tasks: r.Tasks(), Completed: r.Completed()})
}

type searchResponse struct {
	Matches []search.Match `json:"matches"`
}

func (s *Server) handleSearchTasks(c *gin.Context) {
	query := c.Query("q")

	r, ok := s.taskReconciler(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, searchResponse{
		Matches: search.Tasks(query, r.Tasks(), search.DefaultThreshold),
	})
}
