package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"aether-planner/internal/genai"
	"aether-planner/internal/model"
	"aether-planner/internal/notify"
)

var (
	ErrTaskNotFound  = errors.New("service: task not found")
	ErrAlertNotFound = errors.New("service: notification not found")
	ErrEmptyInput    = errors.New("service: day description is required")
	ErrGeneration    = errors.New("service: timetable generation failed")
)

// StateStore persists the planner snapshot.
type StateStore interface {
	LoadAll(ctx context.Context) (model.Snapshot, error)
	SaveAll(ctx context.Context, snap model.Snapshot) error
}

// Generator produces timetables and day reviews from task data.
type Generator interface {
	GenerateTimetable(ctx context.Context, userInput, dayStart, dayEnd string, carryOver []model.Task) ([]genai.GeneratedTask, error)
	GenerateDayReview(ctx context.Context, tasks []model.Task) (*model.DayReview, error)
}

// TaskInput represents data required to create or edit a task by hand.
type TaskInput struct {
	Title           string
	StartTime       string
	EndTime         string
	Category        model.Category
	Priority        model.Priority
	ReminderMinutes int
}

// PlannerService owns the whole application state: the task list, day
// configuration, carry-over list, history, the in-app notification feed and
// the current review. Every mutation goes through its methods under one
// mutex, and every state-affecting mutation is persisted before returning.
type PlannerService struct {
	mu    sync.Mutex
	store StateStore
	gen   Generator
	notif notify.Notifier

	tasks     []model.Task
	config    model.DayConfig
	carryOver []model.Task
	history   []model.DayStats
	alerts    []model.Alert
	view      model.View

	review        *model.DayReview
	reviewLoading bool
	reviewDate    string
	reviewGen     int
}

// NewPlannerService hydrates state from the store. A non-empty saved task
// list restores the Active view, matching a reload mid-day.
func NewPlannerService(ctx context.Context, store StateStore, gen Generator, notif notify.Notifier) (*PlannerService, error) {
	snap, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("hydrate planner: %w", err)
	}

	view := model.ViewSetup
	if len(snap.Tasks) > 0 {
		view = model.ViewActive
	}

	return &PlannerService{
		store:     store,
		gen:       gen,
		notif:     notif,
		tasks:     snap.Tasks,
		config:    snap.Config,
		carryOver: snap.CarryOver,
		history:   snap.History,
		view:      view,
	}, nil
}

// persistLocked writes the snapshot. Persistence failures are logged and
// never block the mutation that triggered them.
func (s *PlannerService) persistLocked() {
	snap := model.Snapshot{
		Tasks:     s.tasks,
		Config:    s.config,
		CarryOver: s.carryOver,
		History:   s.history,
	}
	if err := s.store.SaveAll(context.Background(), snap); err != nil {
		log.Printf("planner: persist: %v", err)
	}
}

// Tasks returns a copy of the task list in display order.
func (s *PlannerService) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// CarryOver returns a copy of the carry-over list.
func (s *PlannerService) CarryOver() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.carryOver))
	copy(out, s.carryOver)
	return out
}

// RemoveCarryOver drops one task from the carry-over list before the next
// generation request.
func (s *PlannerService) RemoveCarryOver(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.carryOver[:0]
	found := false
	for _, t := range s.carryOver {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return ErrTaskNotFound
	}
	s.carryOver = kept
	s.persistLocked()
	return nil
}

// Config returns the current day configuration.
func (s *PlannerService) Config() model.DayConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// History returns a copy of the recorded day statistics.
func (s *PlannerService) History() []model.DayStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.DayStats, len(s.history))
	copy(out, s.history)
	return out
}

// View reports the screen the planner is on.
func (s *PlannerService) View() model.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Alerts returns a copy of the in-app notification feed, oldest first.
func (s *PlannerService) Alerts() []model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// UpdateSettings applies day-bound and ringtone changes. Empty fields keep
// their current value.
func (s *PlannerService) UpdateSettings(dayStart, dayEnd string, ringtone model.Ringtone) (model.DayConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dayStart != "" {
		if _, err := model.ParseTimeOfDay(dayStart); err != nil {
			return s.config, err
		}
		s.config.DayStart = dayStart
	}
	if dayEnd != "" {
		if _, err := model.ParseTimeOfDay(dayEnd); err != nil {
			return s.config, err
		}
		s.config.DayEnd = dayEnd
	}
	if ringtone != "" {
		if !ringtone.IsValid() {
			return s.config, fmt.Errorf("service: unknown ringtone %q", ringtone)
		}
		s.config.SelectedRingtone = ringtone
	}

	s.persistLocked()
	return s.config, nil
}

// Generate requests a fresh timetable and replaces the current task list.
// On failure the task list and carry-over are left untouched and the planner
// stays in the setup view.
func (s *PlannerService) Generate(ctx context.Context, userInput, dayStart, dayEnd, date string) ([]model.Task, error) {
	if userInput == "" {
		return nil, ErrEmptyInput
	}
	if _, err := model.ParseTimeOfDay(dayStart); err != nil {
		return nil, err
	}
	if _, err := model.ParseTimeOfDay(dayEnd); err != nil {
		return nil, err
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("service: invalid date %q", date)
	}

	s.mu.Lock()
	s.config.DayStart = dayStart
	s.config.DayEnd = dayEnd
	s.config.AlarmDate = date
	carry := make([]model.Task, len(s.carryOver))
	copy(carry, s.carryOver)
	s.persistLocked()
	s.mu.Unlock()

	generated, err := s.gen.GenerateTimetable(ctx, userInput, dayStart, dayEnd, carry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	tasks := make([]model.Task, 0, len(generated))
	for i, g := range generated {
		tasks = append(tasks, model.Task{
			ID:        fmt.Sprintf("task-%s", uuid.NewString()),
			Title:     g.Title,
			StartTime: g.StartTime,
			EndTime:   g.EndTime,
			Category:  g.Category,
			Priority:  g.Priority,
			Status:    model.StatusPending,
			Order:     i,
		})
	}

	s.mu.Lock()
	s.tasks = tasks
	s.carryOver = []model.Task{}
	s.view = model.ViewActive
	s.persistLocked()
	s.mu.Unlock()

	return tasks, nil
}

// AddTask appends a manually created task at the end of the list. Inverted
// time ranges are rejected for manual input.
func (s *PlannerService) AddTask(input TaskInput) (model.Task, error) {
	task := model.Task{
		ID:              fmt.Sprintf("manual-task-%s", uuid.NewString()),
		Title:           input.Title,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Category:        input.Category,
		Priority:        input.Priority,
		Status:          model.StatusPending,
		ReminderMinutes: input.ReminderMinutes,
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := checkRange(input.StartTime, input.EndTime); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task.Order = len(s.tasks)
	s.tasks = append(s.tasks, task)
	s.persistLocked()
	return task, nil
}

// UpdateTask edits a task's descriptive fields. Status, guard flags and
// order are kept.
func (s *PlannerService) UpdateTask(id string, input TaskInput) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Task{}, ErrTaskNotFound
	}

	updated := s.tasks[idx]
	updated.Title = input.Title
	updated.StartTime = input.StartTime
	updated.EndTime = input.EndTime
	updated.Category = input.Category
	updated.Priority = input.Priority
	updated.ReminderMinutes = input.ReminderMinutes
	if err := updated.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := checkRange(input.StartTime, input.EndTime); err != nil {
		return model.Task{}, err
	}

	s.tasks[idx] = updated
	s.persistLocked()
	return updated, nil
}

// ToggleStatus applies a user status action. Re-applying the status a task
// already has reverts it to Pending, so every action doubles as its own undo.
func (s *PlannerService) ToggleStatus(id string, status model.Status) (model.Task, error) {
	if !status.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Task{}, ErrTaskNotFound
	}

	if s.tasks[idx].Status == status {
		s.tasks[idx].Status = model.StatusPending
	} else {
		s.tasks[idx].Status = status
	}
	s.persistLocked()
	return s.tasks[idx], nil
}

// Reorder moves the dragged task to the dropped-on task's position and
// reassigns dense order values.
func (s *PlannerService) Reorder(draggedID, droppedOnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.tasks, func(i, j int) bool { return s.tasks[i].Order < s.tasks[j].Order })

	from := s.indexLocked(draggedID)
	to := s.indexLocked(droppedOnID)
	if from < 0 || to < 0 {
		return ErrTaskNotFound
	}

	moved := s.tasks[from]
	s.tasks = append(s.tasks[:from], s.tasks[from+1:]...)
	rest := append([]model.Task{}, s.tasks[to:]...)
	s.tasks = append(append(s.tasks[:to:to], moved), rest...)
	for i := range s.tasks {
		s.tasks[i].Order = i
	}
	s.persistLocked()
	return nil
}

// DismissAlert removes a feed entry. Unknown ids are a no-op so repeated
// dismissals are safe.
func (s *PlannerService) DismissAlert(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeAlertLocked(id)
}

// CompleteFromAlert marks the task referenced by an end alert Completed and
// dismisses the alert.
func (s *PlannerService) CompleteFromAlert(alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var taskID string
	found := false
	for _, a := range s.alerts {
		if a.ID == alertID {
			taskID = a.TaskID
			found = true
			break
		}
	}
	if !found {
		return ErrAlertNotFound
	}

	if taskID != "" {
		if idx := s.indexLocked(taskID); idx >= 0 {
			s.tasks[idx].Status = model.StatusCompleted
		}
	}
	s.removeAlertLocked(alertID)
	s.persistLocked()
	return nil
}

// NotifyTaskStart handles the engine's start event: transition to
// In-Progress and set the notified guard. Fires at most once per task.
func (s *PlannerService) NotifyTaskStart(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 || s.tasks[idx].Status != model.StatusPending || s.tasks[idx].Notified {
		s.mu.Unlock()
		return false
	}
	s.tasks[idx].Notified = true
	s.tasks[idx].Status = model.StatusInProgress
	msg := fmt.Sprintf("Time to start: %s", s.tasks[idx].Title)
	alert, ringtone := s.appendAlertLocked(msg, model.AlertStart, id)
	s.persistLocked()
	s.mu.Unlock()

	s.deliver(alert, ringtone)
	return true
}

// NotifyTaskReminder fires the pre-start reminder once while the task is
// still Pending.
func (s *PlannerService) NotifyTaskReminder(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 || s.tasks[idx].Status != model.StatusPending || s.tasks[idx].ReminderFired {
		s.mu.Unlock()
		return false
	}
	s.tasks[idx].ReminderFired = true
	msg := fmt.Sprintf("Upcoming Task: %s starts in %d mins", s.tasks[idx].Title, s.tasks[idx].ReminderMinutes)
	alert, ringtone := s.appendAlertLocked(msg, model.AlertSystem, id)
	s.persistLocked()
	s.mu.Unlock()

	s.deliver(alert, ringtone)
	return true
}

// NotifyTaskEnd asks the user to confirm completion. It does not change
// status; the guard flag keeps repeated ticks on the same minute from
// prompting twice.
func (s *PlannerService) NotifyTaskEnd(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 || s.tasks[idx].Status != model.StatusInProgress || s.tasks[idx].EndPromptFired {
		s.mu.Unlock()
		return false
	}
	s.tasks[idx].EndPromptFired = true
	msg := fmt.Sprintf("Did you complete: %s?", s.tasks[idx].Title)
	alert, ringtone := s.appendAlertLocked(msg, model.AlertEnd, id)
	s.persistLocked()
	s.mu.Unlock()

	s.deliver(alert, ringtone)
	return true
}

// NotifySystem emits a day-boundary alarm into the feed.
func (s *PlannerService) NotifySystem(message string) {
	s.mu.Lock()
	alert, ringtone := s.appendAlertLocked(message, model.AlertSystem, "")
	s.mu.Unlock()

	s.deliver(alert, ringtone)
}

// BeginDayReview kicks off review generation for the current alarm date.
// A second trigger while one is in flight for the same date is a no-op.
func (s *PlannerService) BeginDayReview(ctx context.Context) bool {
	s.mu.Lock()
	date := s.config.AlarmDate
	if s.reviewLoading && s.reviewDate == date {
		s.mu.Unlock()
		return false
	}
	s.reviewLoading = true
	s.reviewDate = date
	s.review = nil
	s.reviewGen++
	flight := s.reviewGen
	tasks := make([]model.Task, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.Unlock()

	go func() {
		review, err := s.gen.GenerateDayReview(ctx, tasks)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.reviewGen != flight {
			// A reset or rollover discarded this flight while we were waiting.
			return
		}
		s.reviewLoading = false
		if err != nil {
			log.Printf("planner: generate review: %v", err)
			return
		}
		s.review = review
	}()
	return true
}

// ReviewState reports the current review and whether one is being generated.
func (s *PlannerService) ReviewState() (*model.DayReview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.review, s.reviewLoading
}

// Reset records stats for the current day, clears the schedule and returns
// to setup. The carry-over list is left as it was.
func (s *PlannerService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordStatsLocked("")
	s.tasks = []model.Task{}
	s.discardReviewLocked()
	s.view = model.ViewSetup
	s.persistLocked()
}

// PlanTomorrow closes the day: stats with notes, carry the selected tasks
// forward, clear the schedule and return to setup.
func (s *PlannerService) PlanTomorrow(carryTaskIDs []string, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordStatsLocked(notes)

	carried := make([]model.Task, 0, len(carryTaskIDs))
	for _, id := range carryTaskIDs {
		if idx := s.indexLocked(id); idx >= 0 {
			carried = append(carried, s.tasks[idx])
		}
	}
	s.carryOver = carried
	s.tasks = []model.Task{}
	s.discardReviewLocked()
	s.view = model.ViewSetup
	s.persistLocked()
}

// discardReviewLocked drops the current review and invalidates any flight
// still in progress so a late response cannot resurface after the day closed.
func (s *PlannerService) discardReviewLocked() {
	s.review = nil
	s.reviewLoading = false
	s.reviewGen++
}

// recordStatsLocked upserts the DayStats record for the alarm date. A day
// with zero tasks leaves no record.
func (s *PlannerService) recordStatsLocked(notes string) {
	if len(s.tasks) == 0 {
		return
	}

	stats := model.DayStats{
		Date:      s.config.AlarmDate,
		Total:     len(s.tasks),
		UserNotes: notes,
	}
	for _, t := range s.tasks {
		switch t.Status {
		case model.StatusCompleted:
			stats.Completed++
		case model.StatusMissed:
			stats.Missed++
		default:
			stats.Pending++
		}
	}

	kept := s.history[:0]
	for _, h := range s.history {
		if h.Date != stats.Date {
			kept = append(kept, h)
		}
	}
	s.history = append(kept, stats)
}

func (s *PlannerService) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PlannerService) removeAlertLocked(id string) {
	kept := s.alerts[:0]
	for _, a := range s.alerts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.alerts = kept
}

func (s *PlannerService) appendAlertLocked(message string, kind model.AlertKind, taskID string) (model.Alert, model.Ringtone) {
	source := taskID
	if source == "" {
		source = "sys"
	}
	alert := model.Alert{
		ID:      fmt.Sprintf("%s-%s-%d", source, kind, time.Now().UnixMilli()),
		Message: message,
		Kind:    kind,
		TaskID:  taskID,
	}
	s.alerts = append(s.alerts, alert)
	return alert, s.config.SelectedRingtone
}

// deliver plays the alarm and raises the system notification outside the
// state lock. Both are best-effort.
func (s *PlannerService) deliver(alert model.Alert, ringtone model.Ringtone) {
	s.notif.PlayAlarm(ringtone)
	s.notif.Show("Aether Planner", alert.Message, alert.ID)
}

func checkRange(start, end string) error {
	from, err := model.ParseTimeOfDay(start)
	if err != nil {
		return err
	}
	to, err := model.ParseTimeOfDay(end)
	if err != nil {
		return err
	}
	if from >= to {
		return model.ErrInvertedRange
	}
	return nil
}
