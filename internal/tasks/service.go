package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcal/internal/api"
	"github.com/sandeepkv93/taskcal/internal/model"
)

var (
	ErrLoadFailed     = errors.New("tasks: failed to load tasks")
	ErrMutationFailed = errors.New("tasks: failed to save changes")
	ErrTaskNotFound   = errors.New("tasks: task not found")
)

// Repository is the remote task store.
type Repository interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Update(ctx context.Context, id string, p api.Patch) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

var _ Repository = (*api.Client)(nil)

// Service applies local status rules around remote writes. Every mutation
// ends with a full refetch whose result replaces the caller's list.
type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("tasks")
	return s
}

func (s *Service) Now() time.Time {
	return s.now()
}

// Load fetches every task and derives statuses. Tasks that just became
// Missed are written back; write-back failures are only logged.
func (s *Service) Load(ctx context.Context) ([]model.Task, error) {
	fetched, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("load tasks", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	derived := model.Derive(fetched, s.now())
	for _, t := range model.Transitions(fetched, derived) {
		if _, err := s.repo.Update(ctx, t.ID, api.StatusPatch(t.Status)); err != nil {
			s.log.Warn("persist missed status", zap.String("task_id", t.ID), zap.Error(err))
			continue
		}
		s.log.Debug("task missed", zap.String("task_id", t.ID))
	}
	return derived, nil
}

// Toggle flips the task identified by id between Pending and Done. A Missed
// task is left alone and no request is sent. The returned list comes from a
// refetch, which runs even when the write failed.
func (s *Service) Toggle(ctx context.Context, tasks []model.Task, id string) ([]model.Task, error) {
	var target *model.Task
	for i := range tasks {
		if tasks[i].ID == id {
			target = &tasks[i]
			break
		}
	}
	if target == nil {
		return tasks, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	toggled, ok := model.Toggle(*target, s.now())
	if !ok {
		return tasks, nil
	}
	_, writeErr := s.repo.Update(ctx, id, api.StatusPatch(toggled.Status))
	if writeErr != nil {
		s.log.Error("toggle task", zap.String("task_id", id), zap.Error(writeErr))
	}
	return s.resync(ctx, tasks, writeErr)
}

// Delete removes a task remotely and refetches.
func (s *Service) Delete(ctx context.Context, tasks []model.Task, id string) ([]model.Task, error) {
	writeErr := s.repo.Delete(ctx, id)
	if writeErr != nil {
		s.log.Error("delete task", zap.String("task_id", id), zap.Error(writeErr))
	}
	return s.resync(ctx, tasks, writeErr)
}

// Create validates the draft and posts a new Pending task. A validation
// failure is returned as *model.ValidationError before any request is made.
func (s *Service) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	now := s.now()
	if err := d.Validate(now); err != nil {
		return model.Task{}, err
	}
	created, err := s.repo.Create(ctx, d.NewTask(now))
	if err != nil {
		s.log.Error("create task", zap.Error(err))
		return model.Task{}, fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	s.log.Info("task created", zap.String("task_id", created.ID))
	return created, nil
}

// Get fetches a single task for the edit form.
func (s *Service) Get(ctx context.Context, id string) (model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return model.Task{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return t, nil
}

// Update replaces the mutable fields of an existing task. The due date is
// not required to be in the future.
func (s *Service) Update(ctx context.Context, id string, f model.Fields) (model.Task, error) {
	if err := f.Validate(); err != nil {
		return model.Task{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		s.log.Error("update task: fetch current", zap.String("task_id", id), zap.Error(err))
		return model.Task{}, fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	next := f.Apply(current, s.now())
	updated, err := s.repo.Update(ctx, id, api.FieldsPatch(next))
	if err != nil {
		s.log.Error("update task", zap.String("task_id", id), zap.Error(err))
		return model.Task{}, fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	s.log.Info("task updated", zap.String("task_id", id), zap.String("status", string(updated.Status)))
	return updated, nil
}

func (s *Service) resync(ctx context.Context, previous []model.Task, writeErr error) ([]model.Task, error) {
	fresh, err := s.Load(ctx)
	if err != nil {
		if writeErr != nil {
			return previous, fmt.Errorf("%w: %w", ErrMutationFailed, writeErr)
		}
		return previous, err
	}
	if writeErr != nil {
		return fresh, fmt.Errorf("%w: %w", ErrMutationFailed, writeErr)
	}
	return fresh, nil
}
