package model

import (
	"errors"
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		status Status
		due    time.Time
		want   Status
	}{
		{"pending past due", StatusPending, now.Add(-time.Minute), StatusMissed},
		{"pending future", StatusPending, now.Add(time.Minute), StatusPending},
		{"pending due exactly now", StatusPending, now, StatusPending},
		{"done past due", StatusDone, now.Add(-time.Hour), StatusDone},
		{"missed future", StatusMissed, now.Add(time.Hour), StatusMissed},
	}
	for _, tc := range cases {
		task := Task{ID: "1", Status: tc.status, DueDate: tc.due}
		if got := DeriveStatus(task, now); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
		if task.Status != tc.status {
			t.Fatalf("%s: input mutated to %s", tc.name, task.Status)
		}
	}
}

func TestDeriveAndTransitions(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	before := []Task{
		{ID: "a", Status: StatusPending, DueDate: now.Add(-time.Hour)},
		{ID: "b", Status: StatusPending, DueDate: now.Add(time.Hour)},
		{ID: "c", Status: StatusDone, DueDate: now.Add(-time.Hour)},
	}
	after := Derive(before, now)
	if before[0].Status != StatusPending {
		t.Fatalf("derive mutated input")
	}
	changed := Transitions(before, after)
	if len(changed) != 1 || changed[0].ID != "a" || changed[0].Status != StatusMissed {
		t.Fatalf("unexpected transitions: %#v", changed)
	}
}

func TestToggle(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	got, ok := Toggle(Task{ID: "1", Status: StatusPending, DueDate: future}, now)
	if !ok || got.Status != StatusDone {
		t.Fatalf("pending toggle = %s,%v", got.Status, ok)
	}
	got, ok = Toggle(got, now)
	if !ok || got.Status != StatusPending {
		t.Fatalf("done toggle = %s,%v", got.Status, ok)
	}
	got, ok = Toggle(Task{ID: "1", Status: StatusMissed, DueDate: future}, now)
	if ok || got.Status != StatusMissed {
		t.Fatalf("missed toggle = %s,%v", got.Status, ok)
	}
	// Pending but past due derives to Missed and cannot be toggled.
	got, ok = Toggle(Task{ID: "1", Status: StatusPending, DueDate: now.Add(-time.Second)}, now)
	if ok || got.Status != StatusPending {
		t.Fatalf("overdue toggle = %s,%v", got.Status, ok)
	}
}

func TestApplyToggleLeavesInputUntouched(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "1", Status: StatusPending, DueDate: now.Add(time.Hour)},
		{ID: "2", Status: StatusMissed, DueDate: now.Add(-time.Hour)},
	}
	out, ok := ApplyToggle(tasks, "1", now)
	if !ok || out[0].Status != StatusDone || tasks[0].Status != StatusPending {
		t.Fatalf("unexpected toggle result: %#v", out)
	}
	if _, ok := ApplyToggle(tasks, "2", now); ok {
		t.Fatal("missed toggle reported a change")
	}
	if _, ok := ApplyToggle(tasks, "nope", now); ok {
		t.Fatal("unknown id reported a change")
	}
}

func TestNormalize(t *testing.T) {
	task := Task{DueDate: time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)}.Normalize(time.UTC)
	if task.Date != "2024-06-01" || task.Time != "23:59" {
		t.Fatalf("unexpected normalization: %q %q", task.Date, task.Time)
	}

	tokyo := time.FixedZone("JST", 9*3600)
	task = task.Normalize(tokyo)
	if task.Date != "2024-06-02" || task.Time != "08:59" {
		t.Fatalf("unexpected zoned normalization: %q %q", task.Date, task.Time)
	}

	empty := Task{Date: "stale", Time: "stale"}.Normalize(time.UTC)
	if empty.Date != "" || empty.Time != "" {
		t.Fatalf("zero due date should clear display fields: %#v", empty)
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" missed ")
	if err != nil || got != StatusMissed {
		t.Fatalf("parse missed = %s, %v", got, err)
	}
	if _, err := ParseStatus("Snoozed"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskValidate(t *testing.T) {
	task := Task{ID: "1", Title: "Buy milk", Status: StatusPending}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got %v", err)
	}
	task.Status = Status("Later")
	if err := task.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
