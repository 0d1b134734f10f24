package storage

import "time"

// Task is the persisted form of a task on the backend. A zero DueDate is
// stored as NULL.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     time.Time
	Status      string
	IsImportant bool
	CreatedAt   time.Time
}

type TaskListFilter struct {
	Status string
	Limit  int
	Offset int
}

// Setting is a device level key/value pair.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

const SettingOnboarded = "hasSeenOnboarding"
