package model

import (
	"errors"
	"testing"
)

func validTask() Task {
	return Task{
		ID:        "t1",
		Title:     "Write tests",
		StartTime: "09:00",
		EndTime:   "10:30",
		Category:  CategoryWork,
		Priority:  PriorityHigh,
		Status:    StatusPending,
	}
}

func TestTaskValidate(t *testing.T) {
	if err := validTask().Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Task)
		want   error
	}{
		{"blank title", func(tk *Task) { tk.Title = "  " }, nil},
		{"bad start time", func(tk *Task) { tk.StartTime = "9am" }, ErrInvalidTime},
		{"bad end time", func(tk *Task) { tk.EndTime = "25:00" }, ErrInvalidTime},
		{"bad category", func(tk *Task) { tk.Category = "Chores" }, ErrInvalidCategory},
		{"bad priority", func(tk *Task) { tk.Priority = "Urgent" }, ErrInvalidPriority},
		{"bad status", func(tk *Task) { tk.Status = "Done" }, ErrInvalidStatus},
		{"negative reminder", func(tk *Task) { tk.ReminderMinutes = -5 }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := validTask()
			tc.mutate(&tk)
			err := tk.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusInProgress, StatusCompleted, StatusMissed} {
		if !s.IsValid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if Status("Paused").IsValid() {
		t.Fatal("unknown status accepted")
	}
}

func TestRingtoneIsValid(t *testing.T) {
	for _, r := range []Ringtone{RingtoneClassic, RingtonePulse, RingtoneEcho, RingtoneDigital} {
		if !r.IsValid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Ringtone("Chime").IsValid() {
		t.Fatal("unknown ringtone accepted")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	minutes, err := ParseTimeOfDay("13:45")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if minutes != 13*60+45 {
		t.Fatalf("minutes = %d", minutes)
	}
	if _, err := ParseTimeOfDay("24:00"); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
	if _, err := ParseTimeOfDay(""); err == nil {
		t.Fatal("empty string accepted")
	}
}

func TestFormatTimeOfDayWraps(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{9*60 + 5, "09:05"},
		{-10, "23:50"},
		{24*60 + 30, "00:30"},
	}
	for _, tc := range cases {
		if got := FormatTimeOfDay(tc.minutes); got != tc.want {
			t.Fatalf("FormatTimeOfDay(%d) = %s, want %s", tc.minutes, got, tc.want)
		}
	}
}
