package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// TaskStore backs the /todo resource.
type TaskStore interface {
	CreateTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)
	Close() error
}

// SettingsStore holds device flags such as the onboarding marker.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (Setting, error)
	PutSetting(ctx context.Context, in Setting) error
}

var (
	_ TaskStore     = (*SQLiteRepository)(nil)
	_ SettingsStore = (*SQLiteRepository)(nil)
	_ TaskStore     = (*PostgresRepository)(nil)
)
