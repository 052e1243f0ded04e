package models

import "time"

// Task priority levels.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Timestamps are stored as RFC 3339 strings inside the user document,
// matching the wire format the document store already holds.
const (
	TimeLayout = time.RFC3339
	DayLayout  = "1/2/2006"
	DateLayout = "2006-01-02"
)

// Task is one entry of the user document's active task list. IDs are
// generated from the current time in milliseconds and are unique within a
// single user's list.
type Task struct {
	ID          int64  `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	DueDate     string `bson:"dueDate" json:"dueDate"`
	Subject     string `bson:"subject" json:"subject"`
	Priority    string `bson:"priority" json:"priority"`
	Status      string `bson:"status" json:"status"`
	CreatedAt   string `bson:"createdAt" json:"createdAt"`
}

// CompletedTaskRecord is derived from a Task at the moment of completion.
// The completed list is append-only; records are never mutated or removed.
type CompletedTaskRecord struct {
	TaskID       int64  `bson:"taskId" json:"taskId"`
	Title        string `bson:"title" json:"title"`
	Subject      string `bson:"subject" json:"subject"`
	CompletedAt  string `bson:"completedAt" json:"completedAt"`
	DayCompleted string `bson:"dayCompleted" json:"dayCompleted"`
}

// CompletedFrom builds the completion record for a task at the given time.
func CompletedFrom(t Task, now time.Time) CompletedTaskRecord {
	return CompletedTaskRecord{
		TaskID:       t.ID,
		Title:        t.Title,
		Subject:      t.Subject,
		CompletedAt:  now.Format(TimeLayout),
		DayCompleted: now.Format(DayLayout),
	}
}

// Target is a free-text study goal with a toggleable completed flag.
type Target struct {
	ID        int64  `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	Completed bool   `bson:"completed" json:"completed"`
	CreatedAt string `bson:"createdAt" json:"createdAt"`
}

// FocusSession records one completed (non-break) pomodoro interval.
// Duration is in minutes and reflects the session length in effect at
// completion time, not at start.
type FocusSession struct {
	Date        string `bson:"date" json:"date"`
	Duration    int    `bson:"duration" json:"duration"`
	CompletedAt string `bson:"completedAt" json:"completedAt"`
}

// UserProfile is the single per-user document. Every other entity lives
// inside it; the application only ever holds a transient in-memory copy.
type UserProfile struct {
	UID                 string                `bson:"uid" json:"uid"`
	Email               string                `bson:"email" json:"email"`
	DisplayName         string                `bson:"displayName" json:"displayName"`
	School              string                `bson:"school" json:"school"`
	Grade               string                `bson:"grade" json:"grade"`
	Subjects            []string              `bson:"subjects" json:"subjects"`
	Country             string                `bson:"country" json:"country"`
	Tasks               []Task                `bson:"tasks,omitempty" json:"tasks,omitempty"`
	CompletedTasks      []CompletedTaskRecord `bson:"completedTasks,omitempty" json:"completedTasks,omitempty"`
	Targets             []Target              `bson:"targets,omitempty" json:"targets,omitempty"`
	FocusSessions       []FocusSession        `bson:"focusSessions,omitempty" json:"focusSessions,omitempty"`
	TotalTasksCompleted int64                 `bson:"totalTasksCompleted,omitempty" json:"totalTasksCompleted,omitempty"`
	FocusedSessions     int64                 `bson:"focusedSessions,omitempty" json:"focusedSessions,omitempty"`
	Notifications       *Notifications        `bson:"notifications,omitempty" json:"notifications,omitempty"`
	Preferences         *Preferences          `bson:"preferences,omitempty" json:"preferences,omitempty"`
	CreatedAt           string                `bson:"createdAt" json:"createdAt"`
	UpdatedAt           string                `bson:"updatedAt" json:"updatedAt"`
}
