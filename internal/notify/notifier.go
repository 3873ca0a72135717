package notify

import (
	"log"

	"aether-planner/internal/model"
)

// Notifier delivers alarm side effects. Both calls are best-effort: a failed
// or unavailable delivery channel must never block the in-app feed.
type Notifier interface {
	// PlayAlarm renders the alarm sound for the selected ringtone.
	PlayAlarm(ringtone model.Ringtone)
	// Show raises a system-level notification. Tag groups repeated
	// notifications for the same event.
	Show(title, body, tag string)
}

// LogNotifier writes notifications to the process log. It is the fallback
// channel when no external delivery is configured.
type LogNotifier struct{}

func (LogNotifier) PlayAlarm(ringtone model.Ringtone) {
	log.Printf("alarm: ring (%s)", ringtone)
}

func (LogNotifier) Show(title, body, tag string) {
	log.Printf("notify: %s: %s [%s]", title, body, tag)
}

// Multi fans a notification out to several channels.
type Multi []Notifier

func (m Multi) PlayAlarm(ringtone model.Ringtone) {
	for _, n := range m {
		n.PlayAlarm(ringtone)
	}
}

func (m Multi) Show(title, body, tag string) {
	for _, n := range m {
		n.Show(title, body, tag)
	}
}
