package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcal/internal/agenda"
	"github.com/sandeepkv93/taskcal/internal/model"
	"github.com/sandeepkv93/taskcal/internal/views"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "h", "left":
		m.selectDay(m.Calendar.Selected.AddDate(0, 0, -1))
	case "l", "right":
		m.selectDay(m.Calendar.Selected.AddDate(0, 0, 1))
	case "H":
		m.selectDay(m.Calendar.Selected.AddDate(0, -1, 0))
	case "L":
		m.selectDay(m.Calendar.Selected.AddDate(0, 1, 0))
	case "t":
		m.selectDay(m.now())
	case "up", "k":
		if m.Calendar.Cursor > 0 {
			m.Calendar.Cursor--
		}
	case "down", "j":
		if m.Calendar.Cursor < len(m.dayTasks())-1 {
			m.Calendar.Cursor++
		}
	}
	return m
}

// selectDay moves the selection and keeps the displayed month in step.
func (m *Model) selectDay(day time.Time) {
	m.Calendar.Selected = dayStart(day.In(m.loc))
	m.Calendar.Month = monthStart(m.Calendar.Selected)
	m.Calendar.Cursor = 0
}

func (m Model) renderCalendarView() string {
	now := m.now()
	marks := make(map[int]string)
	for day, status := range agenda.MarkedDays(model.Derive(m.Tasks, now), m.Calendar.Month) {
		marks[day] = string(status)
	}
	data := views.CalendarData{
		Month:    m.Calendar.Month,
		Selected: m.Calendar.Selected,
		Today:    now,
		Marks:    marks,
	}
	for i, t := range m.dayTasks() {
		data.DayRows = append(data.DayRows, taskRow(t, now, i == m.Calendar.Cursor))
	}
	out := views.RenderCalendar(data)
	if m.ConfirmDelete != "" {
		if t, ok := m.findTask(m.ConfirmDelete); ok {
			out += "\n" + views.RenderConfirm(t.Title)
		}
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
