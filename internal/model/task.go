package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCategory = errors.New("model: invalid task category")
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidTime     = errors.New("model: invalid time of day")
	ErrInvertedRange   = errors.New("model: start time must be before end time")
)

// Category groups a task by area of life.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryHealth   Category = "Health"
	CategoryLeisure  Category = "Leisure"
	CategoryOther    Category = "Other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategoryLeisure, CategoryOther:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In-Progress"
	StatusCompleted  Status = "Completed"
	StatusMissed     Status = "Missed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusMissed:
		return true
	default:
		return false
	}
}

// Task is a single scheduled item in the planner. Times of day are "HH:MM"
// strings at minute precision; comparing two of them lexicographically orders
// them within one day.
type Task struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	Category        Category `json:"category"`
	Priority        Priority `json:"priority"`
	Status          Status   `json:"status"`
	Notified        bool     `json:"notified"`
	ReminderMinutes int      `json:"reminderMinutes,omitempty"`
	ReminderFired   bool     `json:"reminderFired"`
	EndPromptFired  bool     `json:"endPromptFired"`
	Order           int      `json:"order"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if _, err := ParseTimeOfDay(t.StartTime); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	if _, err := ParseTimeOfDay(t.EndTime); err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.ReminderMinutes < 0 {
		return errors.New("model: reminder minutes must not be negative")
	}
	return nil
}

// ParseTimeOfDay validates an "HH:MM" string and returns minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FormatTimeOfDay is the inverse of ParseTimeOfDay. Minutes outside one day
// wrap around midnight.
func FormatTimeOfDay(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
