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

// Timer modes.
type Mode string

const (
	ModeSession Mode = "session"
	ModeBreak   Mode = "break"
)

// Session and break lengths are clamped to this range, in minutes.
const (
	MinLengthMinutes = 1
	MaxLengthMinutes = 60
)

// Notifier is invoked on every countdown expiry (the SPA played an
// audible notification). The mode argument is the mode being entered.
type Notifier func(entered Mode)

// Pomodoro is the focus timer: a one-tick-per-second countdown
// alternating between session and break. On a session expiry it records a
// FocusSession remotely and bumps the local sessions-completed counter;
// break expiries record nothing. The timer is fully independent of the
// other reconcilers.
type Pomodoro struct {
	store docstore.Store
	log   *zap.Logger
	uid   string

	mu         sync.Mutex
	sessionLen int // minutes
	breakLen   int // minutes
	remaining  int // seconds
	mode       Mode
	running    bool

	completedToday int
	notify         Notifier
	now            func() time.Time
}

// NewPomodoro returns an idle timer at the default 25/5 lengths.
func NewPomodoro(store docstore.Store, log *zap.Logger, uid string) *Pomodoro {
	p := &Pomodoro{
		store:      store,
		log:        log,
		uid:        uid,
		sessionLen: models.DefaultFocusTime,
		breakLen:   models.DefaultBreakTime,
		mode:       ModeSession,
		now:        time.Now,
	}
	p.remaining = p.sessionLen * 60
	return p
}

// SetNotifier installs the expiry notification hook.
func (p *Pomodoro) SetNotifier(n Notifier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notify = n
}

// Start begins or resumes the countdown.
func (p *Pomodoro) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = true
}

// Pause stops the countdown without resetting it.
func (p *Pomodoro) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

// Reset stops the timer and returns to an idle session at full length.
func (p *Pomodoro) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.mode = ModeSession
	p.remaining = p.sessionLen * 60
}

func (p *Pomodoro) Running() bool       { p.mu.Lock(); defer p.mu.Unlock(); return p.running }
func (p *Pomodoro) Mode() Mode          { p.mu.Lock(); defer p.mu.Unlock(); return p.mode }
func (p *Pomodoro) Remaining() int      { p.mu.Lock(); defer p.mu.Unlock(); return p.remaining }
func (p *Pomodoro) SessionLength() int  { p.mu.Lock(); defer p.mu.Unlock(); return p.sessionLen }
func (p *Pomodoro) BreakLength() int    { p.mu.Lock(); defer p.mu.Unlock(); return p.breakLen }
func (p *Pomodoro) CompletedToday() int { p.mu.Lock(); defer p.mu.Unlock(); return p.completedToday }

// AdjustSession changes the session length by delta minutes, clamped to
// [1,60]. Rejected while the timer is running. When the timer is idle in
// session mode the remaining time follows the new length.
func (p *Pomodoro) AdjustSession(delta int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("cannot adjust session length while the timer is running")
	}
	p.sessionLen = clampLength(p.sessionLen + delta)
	if p.mode == ModeSession {
		p.remaining = p.sessionLen * 60
	}
	return nil
}

// AdjustBreak changes the break length by delta minutes, clamped to
// [1,60]. Rejected while the timer is running.
func (p *Pomodoro) AdjustBreak(delta int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("cannot adjust break length while the timer is running")
	}
	p.breakLen = clampLength(p.breakLen + delta)
	if p.mode == ModeBreak {
		p.remaining = p.breakLen * 60
	}
	return nil
}

// Tick advances the countdown by one second. On a session expiry the
// focus session is recorded remotely before the break starts; a failed
// write is logged and the timer continues (the screen keeps rendering).
func (p *Pomodoro) Tick(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.remaining--
	if p.remaining > 0 {
		return
	}

	if p.mode == ModeBreak {
		p.mode = ModeSession
		p.remaining = p.sessionLen * 60
	} else {
		p.completedToday++
		// Duration is the session length in effect at completion time.
		if err := RecordFocusSession(ctx, p.store, p.uid, p.sessionLen, p.now()); err != nil {
			p.log.Warn("focus session write failed", zap.String("uid", p.uid), zap.Error(err))
		}
		p.mode = ModeBreak
		p.remaining = p.breakLen * 60
	}
	if p.notify != nil {
		p.notify(p.mode)
	}
}

// Run drives Tick once per second until the context is canceled.
func (p *Pomodoro) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// RecordFocusSession appends one completed focus interval to the user
// document and increments the focused-session counter.
func RecordFocusSession(ctx context.Context, store docstore.Store, uid string, durationMinutes int, now time.Time) error {
	session := models.FocusSession{
		Date:        now.Format(models.DateLayout),
		Duration:    durationMinutes,
		CompletedAt: now.Format(models.TimeLayout),
	}
	if err := store.AppendToArrayField(ctx, usersCollection, uid, "focusSessions", session); err != nil {
		return fmt.Errorf("append focus session: %w", err)
	}
	if err := store.IncrementNumericField(ctx, usersCollection, uid, "focusedSessions", 1); err != nil {
		return fmt.Errorf("increment focused sessions: %w", err)
	}
	return nil
}

func clampLength(minutes int) int {
	if minutes < MinLengthMinutes {
		return MinLengthMinutes
	}
	if minutes > MaxLengthMinutes {
		return MaxLengthMinutes
	}
	return minutes
}
