package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	MinTitleLength = 3
)

var (
	ErrInvalidStatus      = errors.New("model: invalid task status")
	ErrTitleRequired      = errors.New("model: task title is required")
	ErrTitleTooShort      = errors.New("model: task title is too short")
	ErrDueDateRequired    = errors.New("model: due date is required")
	ErrDueDateNotInFuture = errors.New("model: due date must be in the future")
)

type Status string

const (
	StatusPending Status = "Pending"
	StatusDone    Status = "Done"
	StatusMissed  Status = "Missed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDone, StatusMissed:
		return true
	default:
		return false
	}
}

// ParseStatus matches a status name case-insensitively.
func ParseStatus(raw string) (Status, error) {
	for _, s := range []Status{StatusPending, StatusDone, StatusMissed} {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     time.Time
	// Date and Time are display fields derived from DueDate by Normalize.
	Date        string
	Time        string
	Status      Status
	IsImportant bool
	CreatedAt   time.Time
}

// Normalize fills Date and Time from DueDate in loc. A zero DueDate leaves
// both empty.
func (t Task) Normalize(loc *time.Location) Task {
	if t.DueDate.IsZero() {
		t.Date, t.Time = "", ""
		return t
	}
	if loc == nil {
		loc = time.Local
	}
	local := t.DueDate.In(loc)
	t.Date = local.Format(DateLayout)
	t.Time = local.Format(TimeLayout)
	return t
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return nil
}

// Overdue reports whether the due instant lies strictly before now.
func (t Task) Overdue(now time.Time) bool {
	return !t.DueDate.IsZero() && t.DueDate.Before(now)
}
