package api

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskcal/internal/model"
)

// Timestamp is a JSON time that tolerates empty strings and null.
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	ts.Time = t
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ts.UTC().Format("2006-01-02T15:04:05.000Z07:00") + `"`), nil
}

// Record is the wire form of a task.
type Record struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     Timestamp `json:"dueDate"`
	Status      string    `json:"status"`
	IsImportant bool      `json:"isImportant"`
	CreatedAt   Timestamp `json:"createdAt"`
	// Date and Time are accepted from the wire but always recomputed.
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

// Patch is a partial update body. Nil fields are left untouched.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *Timestamp `json:"dueDate,omitempty"`
	Status      *string    `json:"status,omitempty"`
	IsImportant *bool      `json:"isImportant,omitempty"`
}

func FromTask(t model.Task) Record {
	return Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     Timestamp{t.DueDate},
		Status:      string(t.Status),
		IsImportant: t.IsImportant,
		CreatedAt:   Timestamp{t.CreatedAt},
	}
}

// Task converts a record and attaches Date and Time in loc.
func (r Record) Task(loc *time.Location) model.Task {
	status := model.Status(r.Status)
	if !status.IsValid() {
		if parsed, err := model.ParseStatus(r.Status); err == nil {
			status = parsed
		} else {
			status = model.StatusPending
		}
	}
	return model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.Time,
		Status:      status,
		IsImportant: r.IsImportant,
		CreatedAt:   r.CreatedAt.Time,
	}.Normalize(loc)
}

// Apply merges the non-nil fields of p into r.
func (p Patch) Apply(r Record) Record {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.DueDate != nil {
		r.DueDate = *p.DueDate
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.IsImportant != nil {
		r.IsImportant = *p.IsImportant
	}
	return r
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(s model.Status) Patch {
	v := string(s)
	return Patch{Status: &v}
}

// FieldsPatch builds a patch carrying every mutable field of t.
func FieldsPatch(t model.Task) Patch {
	due := Timestamp{t.DueDate}
	status := string(t.Status)
	return Patch{
		Title:       &t.Title,
		Description: &t.Description,
		DueDate:     &due,
		Status:      &status,
		IsImportant: &t.IsImportant,
	}
}
