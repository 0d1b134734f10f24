package model

import "time"

// DeriveStatus returns the status a task should carry at now. A Pending task
// whose due date has passed is Missed; every other status is returned as is.
func DeriveStatus(t Task, now time.Time) Status {
	if t.Status == StatusPending && t.Overdue(now) {
		return StatusMissed
	}
	return t.Status
}

// Derive returns a copy of tasks with each status re-derived at now.
func Derive(tasks []Task, now time.Time) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Status = DeriveStatus(t, now)
		out[i] = t
	}
	return out
}

// Transitions lists the tasks in after whose status differs from the task
// with the same index in before. The slices must be index aligned, as
// returned by Derive.
func Transitions(before, after []Task) []Task {
	out := make([]Task, 0)
	for i := range after {
		if i >= len(before) {
			break
		}
		if before[i].ID == after[i].ID && before[i].Status != after[i].Status {
			out = append(out, after[i])
		}
	}
	return out
}

// NextStatus is the toggle transition over a derived status. Missed has no
// successor.
func NextStatus(s Status) (Status, bool) {
	switch s {
	case StatusPending:
		return StatusDone, true
	case StatusDone:
		return StatusPending, true
	default:
		return s, false
	}
}

// Toggle derives the task status at now and flips it between Pending and
// Done. The boolean is false when the task is Missed and nothing changed.
func Toggle(t Task, now time.Time) (Task, bool) {
	next, ok := NextStatus(DeriveStatus(t, now))
	if !ok {
		return t, false
	}
	t.Status = next
	return t, true
}

// ApplyToggle returns a copy of tasks with the task identified by id
// toggled. The boolean is false when id is unknown or the toggle is a no-op.
func ApplyToggle(tasks []Task, id string, now time.Time) ([]Task, bool) {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		toggled, ok := Toggle(out[i], now)
		if !ok {
			return out, false
		}
		out[i] = toggled
		return out, true
	}
	return out, false
}
