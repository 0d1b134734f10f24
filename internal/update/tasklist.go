package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcal/internal/agenda"
	"github.com/sandeepkv93/taskcal/internal/views"
)

func (m Model) handleTaskListKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.visibleTasks())-1 {
			m.Cursor++
		}
	case "f":
		m.Filter = m.Filter.Next()
		m.Cursor = 0
		m.Status = StatusBar{Text: "filter: " + string(m.Filter)}
	}
	return m
}

func (m Model) renderTaskListView() string {
	filters := make([]string, 0, len(agenda.Filters))
	for _, f := range agenda.Filters {
		filters = append(filters, string(f))
	}
	data := views.TaskListData{
		Filters:      filters,
		ActiveFilter: string(m.Filter),
		TableView:    m.taskTable.View(),
		Empty:        len(m.visibleTasks()) == 0,
	}
	if m.ConfirmDelete != "" {
		if t, ok := m.findTask(m.ConfirmDelete); ok {
			data.ConfirmDelete = t.Title
		}
	}
	return views.RenderTaskList(data)
}
