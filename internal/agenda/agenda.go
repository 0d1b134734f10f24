package agenda

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/taskcal/internal/model"
)

var ErrInvalidFilter = errors.New("agenda: invalid status filter")

// Filter selects tasks by status. FilterAll matches every task.
type Filter string

const (
	FilterAll     Filter = "ALL"
	FilterPending Filter = Filter(model.StatusPending)
	FilterDone    Filter = Filter(model.StatusDone)
	FilterMissed  Filter = Filter(model.StatusMissed)
)

// Filters is the chip order shown on the task list.
var Filters = []Filter{FilterAll, FilterDone, FilterPending, FilterMissed}

func (f Filter) IsValid() bool {
	return f == FilterAll || model.Status(f).IsValid()
}

// Next returns the filter after f in chip order, wrapping around.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

func ParseFilter(raw string) (Filter, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, string(FilterAll)) {
		return FilterAll, nil
	}
	status, err := model.ParseStatus(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
	}
	return Filter(status), nil
}

// FilterByStatus keeps the tasks whose status matches f, in input order.
func FilterByStatus(tasks []model.Task, f Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f == FilterAll || t.Status == model.Status(f) {
			out = append(out, t)
		}
	}
	return out
}

// SortByRecency orders a copy of tasks by creation time, newest first.
func SortByRecency(tasks []model.Task) []model.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// SortByTimeProximity orders a copy of tasks so that upcoming tasks come
// first, soonest first, followed by past tasks, most recent first. A task due
// exactly at now counts as past.
func SortByTimeProximity(tasks []model.Task, now time.Time) []model.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return compareProximity(a.DueDate.Sub(now), b.DueDate.Sub(now))
	})
	return out
}

func compareProximity(da, db time.Duration) int {
	switch {
	case da > 0 && db > 0:
		return cmp.Compare(da, db)
	case da > 0:
		return -1
	case db > 0:
		return 1
	default:
		return cmp.Compare(absDuration(da), absDuration(db))
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// DayKey is the YYYY-MM-DD calendar day of a task in loc.
func DayKey(t model.Task, loc *time.Location) string {
	if t.Date != "" {
		return t.Date
	}
	if t.DueDate.IsZero() {
		return ""
	}
	return t.DueDate.In(loc).Format(model.DateLayout)
}

// GroupByDay keeps the tasks due on the calendar day of day, in the location
// day carries.
func GroupByDay(tasks []model.Task, day time.Time) []model.Task {
	key := day.Format(model.DateLayout)
	out := make([]model.Task, 0)
	for _, t := range tasks {
		if DayKey(t, day.Location()) == key {
			out = append(out, t)
		}
	}
	return out
}

// MarkedDays returns, for each day of the month holding month, the status
// that best summarizes its tasks: Missed over Pending over Done.
func MarkedDays(tasks []model.Task, month time.Time) map[int]model.Status {
	prefix := month.Format("2006-01-")
	out := make(map[int]model.Status)
	for _, t := range tasks {
		key := DayKey(t, month.Location())
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		day, err := time.ParseInLocation(model.DateLayout, key, month.Location())
		if err != nil {
			continue
		}
		current, seen := out[day.Day()]
		if !seen || statusRank(t.Status) > statusRank(current) {
			out[day.Day()] = t.Status
		}
	}
	return out
}

func statusRank(s model.Status) int {
	switch s {
	case model.StatusMissed:
		return 3
	case model.StatusPending:
		return 2
	case model.StatusDone:
		return 1
	default:
		return 0
	}
}

type Counts struct {
	Pending int
	Done    int
	Missed  int
}

// Count tallies derived statuses. Missed tasks are only counted while their
// due date lies before now.
func Count(tasks []model.Task, now time.Time) Counts {
	var c Counts
	for _, t := range tasks {
		switch model.DeriveStatus(t, now) {
		case model.StatusPending:
			c.Pending++
		case model.StatusDone:
			c.Done++
		case model.StatusMissed:
			if t.Overdue(now) {
				c.Missed++
			}
		}
	}
	return c
}

// Upcoming is the Home list: Pending tasks ordered by time proximity.
func Upcoming(tasks []model.Task, now time.Time) []model.Task {
	return SortByTimeProximity(FilterByStatus(model.Derive(tasks, now), FilterPending), now)
}
