package models

// Notifications holds the per-channel notification flags.
type Notifications struct {
	Email          *bool `bson:"email,omitempty" json:"email,omitempty"`
	TaskReminders  *bool `bson:"taskReminders,omitempty" json:"taskReminders,omitempty"`
	StudyReminders *bool `bson:"studyReminders,omitempty" json:"studyReminders,omitempty"`
}

// Preferences holds study preference values. Pointer fields distinguish
// "absent from the persisted document" from a deliberate zero value so that
// partial documents merge over defaults instead of erasing them.
type Preferences struct {
	DarkMode  *bool `bson:"darkMode,omitempty" json:"darkMode,omitempty"`
	FocusTime *int  `bson:"focusTime,omitempty" json:"focusTime,omitempty"`
	BreakTime *int  `bson:"breakTime,omitempty" json:"breakTime,omitempty"`
	DailyGoal *int  `bson:"dailyGoal,omitempty" json:"dailyGoal,omitempty"`
}

// Settings is the merged, fully populated view handed to callers.
type Settings struct {
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	School        string `json:"school"`
	Grade         string `json:"grade"`
	Notifications struct {
		Email          bool `json:"email"`
		TaskReminders  bool `json:"taskReminders"`
		StudyReminders bool `json:"studyReminders"`
	} `json:"notifications"`
	Preferences struct {
		DarkMode  bool `json:"darkMode"`
		FocusTime int  `json:"focusTime"`
		BreakTime int  `json:"breakTime"`
		DailyGoal int  `json:"dailyGoal"`
	} `json:"preferences"`
}

// Pomodoro and goal defaults used when the document carries no preferences.
const (
	DefaultFocusTime = 25
	DefaultBreakTime = 5
	DefaultDailyGoal = 4
)

// DefaultSettings returns the local defaults: all notifications on, dark
// mode off, 25/5 minute focus/break lengths, four sessions per day.
func DefaultSettings() Settings {
	var s Settings
	s.Notifications.Email = true
	s.Notifications.TaskReminders = true
	s.Notifications.StudyReminders = true
	s.Preferences.FocusTime = DefaultFocusTime
	s.Preferences.BreakTime = DefaultBreakTime
	s.Preferences.DailyGoal = DefaultDailyGoal
	return s
}

// MergeSettings overlays whatever the persisted document specifies on top
// of the defaults. Fields the document omits keep their default value.
func MergeSettings(n *Notifications, p *Preferences) Settings {
	s := DefaultSettings()
	if n != nil {
		if n.Email != nil {
			s.Notifications.Email = *n.Email
		}
		if n.TaskReminders != nil {
			s.Notifications.TaskReminders = *n.TaskReminders
		}
		if n.StudyReminders != nil {
			s.Notifications.StudyReminders = *n.StudyReminders
		}
	}
	if p != nil {
		if p.DarkMode != nil {
			s.Preferences.DarkMode = *p.DarkMode
		}
		if p.FocusTime != nil {
			s.Preferences.FocusTime = *p.FocusTime
		}
		if p.BreakTime != nil {
			s.Preferences.BreakTime = *p.BreakTime
		}
		if p.DailyGoal != nil {
			s.Preferences.DailyGoal = *p.DailyGoal
		}
	}
	return s
}
