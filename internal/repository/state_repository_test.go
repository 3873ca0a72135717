package repository

import (
	"context"
	"testing"
	"time"

	"aether-planner/internal/model"
)

func newTestRepo(t *testing.T) *StateRepository {
	t.Helper()
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStateRepository(db)
}

func TestLoadAllDefaultsWhenEmpty(t *testing.T) {
	repo := newTestRepo(t)

	snap, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Tasks) != 0 || len(snap.CarryOver) != 0 || len(snap.History) != 0 {
		t.Fatalf("expected empty collections, got %+v", snap)
	}
	if snap.Config.DayStart != DefaultDayStart || snap.Config.DayEnd != DefaultDayEnd {
		t.Fatalf("unexpected default bounds: %+v", snap.Config)
	}
	if snap.Config.SelectedRingtone != model.RingtoneClassic {
		t.Fatalf("default ringtone = %s", snap.Config.SelectedRingtone)
	}
	if snap.Config.AlarmDate != time.Now().Format("2006-01-02") {
		t.Fatalf("default alarm date = %s", snap.Config.AlarmDate)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	in := model.Snapshot{
		Tasks: []model.Task{{
			ID:              "t1",
			Title:           "Gym",
			StartTime:       "18:00",
			EndTime:         "19:00",
			Category:        model.CategoryHealth,
			Priority:        model.PriorityMedium,
			Status:          model.StatusInProgress,
			Notified:        true,
			ReminderMinutes: 15,
			ReminderFired:   true,
			Order:           0,
		}},
		Config: model.DayConfig{
			DayStart:         "07:30",
			DayEnd:           "23:00",
			AlarmDate:        "2025-03-15",
			SelectedRingtone: model.RingtoneEcho,
		},
		CarryOver: []model.Task{{
			ID: "t0", Title: "Leftover", StartTime: "09:00", EndTime: "10:00",
			Category: model.CategoryWork, Priority: model.PriorityLow, Status: model.StatusPending,
		}},
		History: []model.DayStats{
			{Date: "2025-03-14", Total: 4, Completed: 2, Missed: 1, Pending: 1, UserNotes: "ok day"},
		},
	}

	if err := repo.SaveAll(context.Background(), in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(out.Tasks) != 1 || out.Tasks[0] != in.Tasks[0] {
		t.Fatalf("tasks round trip mismatch: %+v", out.Tasks)
	}
	if out.Config != in.Config {
		t.Fatalf("config round trip mismatch: %+v", out.Config)
	}
	if len(out.CarryOver) != 1 || out.CarryOver[0] != in.CarryOver[0] {
		t.Fatalf("carry-over round trip mismatch: %+v", out.CarryOver)
	}
	if len(out.History) != 1 || out.History[0] != in.History[0] {
		t.Fatalf("history round trip mismatch: %+v", out.History)
	}
}

func TestSaveAllOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := model.Snapshot{
		Tasks:  []model.Task{{ID: "a", Title: "A", StartTime: "09:00", EndTime: "10:00", Category: model.CategoryWork, Priority: model.PriorityLow, Status: model.StatusPending}},
		Config: DefaultConfig(time.Now()),
	}
	if err := repo.SaveAll(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := first
	second.Tasks = []model.Task{}
	if err := repo.SaveAll(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	out, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Tasks) != 0 {
		t.Fatalf("second save did not overwrite tasks: %+v", out.Tasks)
	}
}

func TestMalformedDocumentsFallBackToDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, key := range []string{keyTasks, keyConfig, keyCarryOver, keyHistory} {
		row := StoredValue{Key: key, Value: []byte("{not json"), UpdatedAt: time.Now()}
		if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	snap, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Tasks) != 0 || len(snap.CarryOver) != 0 || len(snap.History) != 0 {
		t.Fatalf("malformed docs should yield defaults, got %+v", snap)
	}
	if snap.Config.DayStart != DefaultDayStart || snap.Config.SelectedRingtone != model.RingtoneClassic {
		t.Fatalf("malformed config should yield defaults, got %+v", snap.Config)
	}
}

func TestPartialConfigGetsDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	row := StoredValue{Key: keyConfig, Value: []byte(`{"dayStart":"06:00"}`), UpdatedAt: time.Now()}
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}

	snap, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Config.DayStart != "06:00" {
		t.Fatalf("stored field lost: %+v", snap.Config)
	}
	if snap.Config.DayEnd != DefaultDayEnd || snap.Config.SelectedRingtone != model.RingtoneClassic {
		t.Fatalf("missing fields not defaulted: %+v", snap.Config)
	}
	if snap.Config.AlarmDate == "" {
		t.Fatal("alarm date not defaulted")
	}
}
