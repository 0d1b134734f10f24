package model

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Draft is the input of a create request.
type Draft struct {
	Title       string
	Description string
	DueDate     time.Time
	IsImportant bool
}

// Fields is the input of an update request. Every field replaces the stored
// value.
type Fields struct {
	Title       string
	Description string
	DueDate     time.Time
	IsImportant bool
}

const (
	FieldTitle   = "title"
	FieldDueDate = "dueDate"
)

// ValidationError collects one message per offending field.
type ValidationError struct {
	Fields map[string]error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k].Error())
	}
	return "model: invalid task: " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-field sentinels to errors.Is.
func (e *ValidationError) Unwrap() []error {
	out := make([]error, 0, len(e.Fields))
	for _, err := range e.Fields {
		out = append(out, err)
	}
	return out
}

// Message returns a short user facing message for a field, or "".
func (e *ValidationError) Message(field string) string {
	err, ok := e.Fields[field]
	if !ok {
		return ""
	}
	switch {
	case errors.Is(err, ErrTitleRequired):
		return "Task title is required"
	case errors.Is(err, ErrTitleTooShort):
		return "Title must be at least 3 characters"
	case errors.Is(err, ErrDueDateRequired):
		return "Due date is required"
	case errors.Is(err, ErrDueDateNotInFuture):
		return "Due date must be in the future"
	default:
		return err.Error()
	}
}

// Validate checks a create request at now. The due date must lie strictly
// after now.
func (d Draft) Validate(now time.Time) error {
	fields := make(map[string]error)
	if err := validateTitle(d.Title); err != nil {
		fields[FieldTitle] = err
	}
	switch {
	case d.DueDate.IsZero():
		fields[FieldDueDate] = ErrDueDateRequired
	case !d.DueDate.After(now):
		fields[FieldDueDate] = ErrDueDateNotInFuture
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Validate checks an update request. Past due dates are allowed.
func (f Fields) Validate() error {
	fields := make(map[string]error)
	if strings.TrimSpace(f.Title) == "" {
		fields[FieldTitle] = ErrTitleRequired
	}
	if f.DueDate.IsZero() {
		fields[FieldDueDate] = ErrDueDateRequired
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NewTask builds the Pending task a valid draft describes.
func (d Draft) NewTask(now time.Time) Task {
	return Task{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		DueDate:     d.DueDate,
		Status:      StatusPending,
		IsImportant: d.IsImportant,
		CreatedAt:   now,
	}
}

// Apply replaces the mutable fields of t. A Missed task moved to a future
// due date returns to Pending.
func (f Fields) Apply(t Task, now time.Time) Task {
	t.Title = strings.TrimSpace(f.Title)
	t.Description = f.Description
	t.DueDate = f.DueDate
	t.IsImportant = f.IsImportant
	if t.Status == StatusMissed && f.DueDate.After(now) {
		t.Status = StatusPending
	}
	return t
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrTitleRequired
	}
	if len([]rune(trimmed)) < MinTitleLength {
		return ErrTitleTooShort
	}
	return nil
}
