package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/docstore"
	"github.com/muffakiribnhamid/Scholarly/internal/models"
)

// TargetReconciler mirrors the study-target list of one user document.
// Toggle and delete rewrite the whole list remotely; the mutex serializes
// same-client mutations so they cannot race each other. The in-memory
// list after a successful write reflects the mutation that was sent.
type TargetReconciler struct {
	store docstore.Store
	log   *zap.Logger
	uid   string

	mu      sync.Mutex
	targets []models.Target

	now func() time.Time
}

// NewTargetReconciler returns a reconciler for one user's target list.
func NewTargetReconciler(store docstore.Store, log *zap.Logger, uid string) *TargetReconciler {
	return &TargetReconciler{store: store, log: log, uid: uid, now: time.Now}
}

// Load fetches the user document and replaces the in-memory list.
func (r *TargetReconciler) Load(ctx context.Context) error {
	var profile models.UserProfile
	found, err := r.store.Get(ctx, usersCollection, r.uid, &profile)
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !found {
		r.targets = nil
		return nil
	}
	r.targets = profile.Targets
	return nil
}

// Targets returns a copy of the list.
func (r *TargetReconciler) Targets() []models.Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// CompletedCount returns how many targets are currently completed.
func (r *TargetReconciler) CompletedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.targets {
		if t.Completed {
			n++
		}
	}
	return n
}

// Add creates a target from trimmed free text and appends it remotely and
// locally.
func (r *TargetReconciler) Add(ctx context.Context, text string) (models.Target, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Target{}, fmt.Errorf("target text is required")
	}
	now := r.now()
	target := models.Target{
		ID:        now.UnixMilli(),
		Text:      text,
		Completed: false,
		CreatedAt: now.Format(models.TimeLayout),
	}

	if err := r.store.AppendToArrayField(ctx, usersCollection, r.uid, "targets", target); err != nil {
		return models.Target{}, fmt.Errorf("add target: %w", err)
	}

	r.mu.Lock()
	r.targets = append(r.targets, target)
	r.mu.Unlock()
	return target, nil
}

// Toggle flips the completed flag of one target. Toggling twice with no
// intervening change restores the original flag.
func (r *TargetReconciler) Toggle(ctx context.Context, targetID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]models.Target, len(r.targets))
	for i, t := range r.targets {
		if t.ID == targetID {
			t.Completed = !t.Completed
		}
		updated[i] = t
	}
	if err := r.writeList(ctx, updated); err != nil {
		return fmt.Errorf("toggle target: %w", err)
	}
	r.targets = updated
	return nil
}

// Delete removes one target from the list.
func (r *TargetReconciler) Delete(ctx context.Context, targetID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]models.Target, 0, len(r.targets))
	for _, t := range r.targets {
		if t.ID != targetID {
			updated = append(updated, t)
		}
	}
	if err := r.writeList(ctx, updated); err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	r.targets = updated
	return nil
}

// writeList rewrites the entire target list remotely. The store has no
// per-item update primitive for array elements.
func (r *TargetReconciler) writeList(ctx context.Context, targets []models.Target) error {
	return r.store.UpdateFields(ctx, usersCollection, r.uid, map[string]any{"targets": targets})
}
