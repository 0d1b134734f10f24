package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcal/internal/agenda"
	"github.com/sandeepkv93/taskcal/internal/views"
)

func (m Model) handleHomeKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.HomeCursor > 0 {
			m.HomeCursor--
		}
	case "down", "j":
		if m.HomeCursor < len(m.upcomingTasks())-1 {
			m.HomeCursor++
		}
	case "p":
		m = m.jumpToFilter(agenda.FilterPending)
	case "o":
		m = m.jumpToFilter(agenda.FilterDone)
	case "m":
		m = m.jumpToFilter(agenda.FilterMissed)
	}
	return m
}

func (m Model) jumpToFilter(f agenda.Filter) Model {
	m.Filter = f
	m.Cursor = 0
	m.CurrentView = ViewTasks
	m.Status = StatusBar{Text: "filter: " + string(f)}
	return m
}

func (m Model) renderHomeView() string {
	now := m.now()
	counts := agenda.Count(m.Tasks, now)
	data := views.HomeData{
		Pending: counts.Pending,
		Done:    counts.Done,
		Missed:  counts.Missed,
		Loading: m.Loading,
		Spinner: m.loadSpinner.View(),
	}
	if m.LoadErr != nil {
		data.LoadError = "failed to load tasks"
	}
	for i, t := range m.upcomingTasks() {
		data.Upcoming = append(data.Upcoming, taskRow(t, now, i == m.HomeCursor))
	}
	out := views.RenderHome(data)
	if m.ConfirmDelete != "" {
		if t, ok := m.findTask(m.ConfirmDelete); ok {
			out += "\n" + views.RenderConfirm(t.Title)
		}
	}
	return out
}
