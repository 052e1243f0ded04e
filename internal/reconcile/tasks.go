// Package reconcile holds the in-memory state that mirrors a user's
// document and coordinates local-first updates with remote writes. Each
// reconciler lives as long as the screen that loaded it; there is no
// cross-screen cache.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/docstore"
	"github.com/muffakiribnhamid/Scholarly/internal/models"
)

const usersCollection = "users"

// DefaultRemovalDelay is the visual transition delay between marking a
// task for removal and evicting it.
const DefaultRemovalDelay = 500 * time.Millisecond

// TaskReconciler mirrors the active task list of one user document.
//
// Completion runs the pending -> pendingRemoval -> removed protocol: the
// task stays addressable for the removal delay, then the compound remote
// write runs (rewrite the active array without the task, append the
// completion record, increment the completed counter) and only on success
// is the task evicted locally. A failed write returns the task to pending
// and reports the error instead of silently dropping the data.
type TaskReconciler struct {
	store docstore.Store
	log   *zap.Logger
	uid   string

	mu        sync.Mutex
	tasks     []models.Task
	completed []models.CompletedTaskRecord
	pending   map[int64]bool

	removalDelay time.Duration
	now          func() time.Time
}

// NewTaskReconciler returns a reconciler for one user's task list. Call
// Load before mutating.
func NewTaskReconciler(store docstore.Store, log *zap.Logger, uid string) *TaskReconciler {
	return &TaskReconciler{
		store:        store,
		log:          log,
		uid:          uid,
		pending:      make(map[int64]bool),
		removalDelay: DefaultRemovalDelay,
		now:          time.Now,
	}
}

// SetRemovalDelay overrides the visual transition delay. Zero disables it.
func (r *TaskReconciler) SetRemovalDelay(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removalDelay = d
}

// Load fetches the user document and replaces the in-memory lists. A
// missing document loads as empty.
func (r *TaskReconciler) Load(ctx context.Context) error {
	var profile models.UserProfile
	found, err := r.store.Get(ctx, usersCollection, r.uid, &profile)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !found {
		r.tasks, r.completed = nil, nil
		return nil
	}
	r.tasks = profile.Tasks
	r.completed = profile.CompletedTasks
	return nil
}

// Tasks returns a copy of the active list, pendingRemoval entries
// included.
func (r *TaskReconciler) Tasks() []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Completed returns a copy of the completion records as of the last Load.
func (r *TaskReconciler) Completed() []models.CompletedTaskRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CompletedTaskRecord, len(r.completed))
	copy(out, r.completed)
	return out
}

// PendingRemoval reports whether a task is marked for removal but not yet
// evicted.
func (r *TaskReconciler) PendingRemoval(taskID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending[taskID]
}

// Add appends a task remotely and optimistically to the local list. Zero
// id and timestamps are filled in from the current time; status starts as
// pending.
func (r *TaskReconciler) Add(ctx context.Context, t models.Task) (models.Task, error) {
	if t.Title == "" {
		return models.Task{}, fmt.Errorf("task title is required")
	}
	now := r.now()
	if t.ID == 0 {
		t.ID = now.UnixMilli()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = now.Format(models.TimeLayout)
	}
	t.Status = models.StatusPending

	err := r.store.AppendToArrayField(ctx, usersCollection, r.uid, "tasks", t)
	if err == docstore.ErrNotFound {
		// First task for a brand-new account: create the document.
		err = r.store.Set(ctx, usersCollection, r.uid, models.UserProfile{
			UID:       r.uid,
			Tasks:     []models.Task{t},
			CreatedAt: now.Format(models.TimeLayout),
			UpdatedAt: now.Format(models.TimeLayout),
		})
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("add task: %w", err)
	}

	r.mu.Lock()
	r.tasks = append(r.tasks, t)
	r.mu.Unlock()
	return t, nil
}

// Complete runs the completion protocol for one task. Completing a task
// already marked for removal is a no-op.
func (r *TaskReconciler) Complete(ctx context.Context, taskID int64) error {
	r.mu.Lock()
	var task models.Task
	found := false
	for _, t := range r.tasks {
		if t.ID == taskID {
			task, found = t, true
			break
		}
	}
	if !found {
		r.mu.Unlock()
		return fmt.Errorf("task %d is not in the active list", taskID)
	}
	if task.Status == models.StatusCompleted || r.pending[taskID] {
		r.mu.Unlock()
		return nil
	}
	r.pending[taskID] = true
	r.mu.Unlock()

	if err := sleep(ctx, r.removalDelay); err != nil {
		r.mu.Lock()
		delete(r.pending, taskID)
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := make([]models.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if t.ID != taskID {
			remaining = append(remaining, t)
		}
	}
	record := models.CompletedFrom(task, r.now())

	if err := r.writeCompletion(ctx, remaining, record); err != nil {
		delete(r.pending, taskID)
		r.log.Warn("task completion write failed",
			zap.String("uid", r.uid), zap.Int64("taskId", taskID), zap.Error(err))
		return err
	}

	r.tasks = remaining
	r.completed = append(r.completed, record)
	delete(r.pending, taskID)
	return nil
}

// writeCompletion performs the compound remote write. The store only has
// field-level primitives, so the removal is a whole-list rewrite; the
// reconciler lock makes the sequence atomic from the caller's side.
func (r *TaskReconciler) writeCompletion(ctx context.Context, remaining []models.Task, record models.CompletedTaskRecord) error {
	if err := r.store.UpdateFields(ctx, usersCollection, r.uid, map[string]any{"tasks": remaining}); err != nil {
		return fmt.Errorf("remove from active list: %w", err)
	}
	if err := r.store.AppendToArrayField(ctx, usersCollection, r.uid, "completedTasks", record); err != nil {
		return fmt.Errorf("append completion record: %w", err)
	}
	if err := r.store.IncrementNumericField(ctx, usersCollection, r.uid, "totalTasksCompleted", 1); err != nil {
		return fmt.Errorf("increment completed count: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
