package service

import (
	"context"
	"sync"
	"time"

	"aether-planner/internal/model"
)

// AlarmService evaluates the task list and day configuration on every clock
// tick and requests transitions from the planner. All comparisons run at
// minute precision; each event is guarded so that repeated ticks landing on
// the same minute fire it at most once. Ticks missed while the process was
// not running are not backfilled.
type AlarmService struct {
	planner *PlannerService

	mu    sync.Mutex
	fired map[string]struct{}
}

func NewAlarmService(planner *PlannerService) *AlarmService {
	return &AlarmService{
		planner: planner,
		fired:   make(map[string]struct{}),
	}
}

// Tick runs one evaluation pass against the given instant.
func (s *AlarmService) Tick(now time.Time) {
	timeStr := now.Format("15:04")
	dateStr := now.Format("2006-01-02")

	for _, task := range s.planner.Tasks() {
		if task.StartTime == timeStr && task.Status == model.StatusPending && !task.Notified {
			s.planner.NotifyTaskStart(task.ID)
		}

		if task.ReminderMinutes > 0 && !task.ReminderFired && task.Status == model.StatusPending {
			if start, err := model.ParseTimeOfDay(task.StartTime); err == nil {
				if model.FormatTimeOfDay(start-task.ReminderMinutes) == timeStr {
					s.planner.NotifyTaskReminder(task.ID)
				}
			}
		}

		if task.EndTime == timeStr && task.Status == model.StatusInProgress && !task.EndPromptFired {
			s.planner.NotifyTaskEnd(task.ID)
		}
	}

	cfg := s.planner.Config()
	if dateStr != cfg.AlarmDate {
		return
	}

	if timeStr == cfg.DayStart && s.markFired("start-"+dateStr) {
		s.planner.NotifySystem("Your planned day has begun!")
	}
	if timeStr == cfg.DayEnd && s.markFired("end-"+dateStr) {
		s.planner.NotifySystem("Planned day complete! Time to review.")
		s.planner.BeginDayReview(context.Background())
	}
}

// markFired records a day-boundary alarm key, reporting whether it was new.
// The set is session-scoped: it does not survive a restart, matching the
// accepted behavior of the polling model.
func (s *AlarmService) markFired(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fired[key]; ok {
		return false
	}
	s.fired[key] = struct{}{}
	return true
}
