package model

// Ringtone selects the alarm sound rendered when a notification fires.
type Ringtone string

const (
	RingtoneClassic Ringtone = "Classic"
	RingtonePulse   Ringtone = "Pulse"
	RingtoneEcho    Ringtone = "Echo"
	RingtoneDigital Ringtone = "Digital"
)

func (r Ringtone) IsValid() bool {
	switch r {
	case RingtoneClassic, RingtonePulse, RingtoneEcho, RingtoneDigital:
		return true
	default:
		return false
	}
}

// View names the screen the user is on.
type View string

const (
	ViewSetup     View = "Setup"
	ViewActive    View = "Active"
	ViewDashboard View = "Dashboard"
)

// DayConfig carries the bounds and alarm settings for the planned day.
// AlarmDate is the "YYYY-MM-DD" calendar date the current task set belongs to.
type DayConfig struct {
	DayStart         string   `json:"dayStart"`
	DayEnd           string   `json:"dayEnd"`
	AlarmDate        string   `json:"alarmDate"`
	SelectedRingtone Ringtone `json:"selectedRingtone"`
}

// DayStats is the per-date outcome record written when a day is closed.
// Pending counts both Pending and In-Progress tasks at rollover time.
type DayStats struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
	Missed    int    `json:"missed"`
	Total     int    `json:"total"`
	UserNotes string `json:"userNotes,omitempty"`
}

// DayReview is the generated end-of-day reflection. It lives only for the
// duration of the review flow and is never persisted.
type DayReview struct {
	Summary             string   `json:"summary"`
	Accomplishments     []string `json:"accomplishments"`
	MissedOpportunities []string `json:"missedOpportunities"`
	ProductivityScore   int      `json:"productivityScore"`
	TipsForTomorrow     string   `json:"tipsForTomorrow"`
}

// AlertKind tags an in-app notification record.
type AlertKind string

const (
	AlertStart  AlertKind = "start"
	AlertEnd    AlertKind = "end"
	AlertSystem AlertKind = "system"
)

// Alert is one entry in the in-app notification feed.
type Alert struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Kind    AlertKind `json:"kind"`
	TaskID  string    `json:"taskId,omitempty"`
}

// Snapshot bundles everything the persistence layer stores.
type Snapshot struct {
	Tasks     []Task
	Config    DayConfig
	CarryOver []Task
	History   []DayStats
}
