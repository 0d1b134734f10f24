package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcal/internal/model"
	"github.com/sandeepkv93/taskcal/internal/tasks"
	"github.com/sandeepkv93/taskcal/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.service == nil {
		return nil
	}
	return tea.Batch(m.loadCmd(), m.loadSpinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.Loading {
			var cmd tea.Cmd
			m.loadSpinner, cmd = m.loadSpinner.Update(typed)
			return m, cmd
		}
	case tasksLoadedMsg:
		m.Loading = false
		if typed.Err != nil {
			m.LoadErr = typed.Err
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "failed to load tasks", IsError: true}
			m.notify("Error", "failed to load tasks", "error")
			return m, nil
		}
		m.LoadErr = nil
		m.Tasks = typed.Tasks
		return m, nil
	case mutationDoneMsg:
		if typed.Tasks != nil {
			m.Tasks = typed.Tasks
		}
		if typed.Err != nil {
			m.LastError = typed.Err
			m.log.Warn("mutation failed", zap.String("op", typed.Op), zap.Error(typed.Err))
			m.Status = StatusBar{Text: fmt.Sprintf("%s failed: %s", typed.Op, userMessage(typed.Err)), IsError: true}
			m.notify("Error", m.Status.Text, "error")
			return m, nil
		}
		cmd := m.flashStatus(fmt.Sprintf("%s saved", typed.Op))
		return m, cmd
	case taskSavedMsg:
		return m.onTaskSaved(typed)
	case taskFetchedMsg:
		return m.onTaskFetched(typed)
	case onboardedMsg:
		if typed.Err != nil {
			m.log.Warn("persist onboarding flag", zap.Error(typed.Err))
			m.Status = StatusBar{Text: "could not save onboarding state", IsError: true}
		}
		return m, nil
	case ClearStatusMsg:
		if typed.Seq == m.statusSeq && m.Status.Text == typed.Text && !m.Status.IsError {
			m.Status = StatusBar{}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}

	switch {
	case m.CurrentView == ViewOnboarding:
		return m.handleOnboardingKey(msg)
	case m.CurrentView == ViewForm:
		return m.handleFormKey(msg)
	case m.Palette.Active:
		return m.handlePaletteKey(msg)
	case m.ConfirmDelete != "":
		return m.handleConfirmKey(msg)
	}

	switch keyStr {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Home:
		m.CurrentView = ViewHome
		return m, nil
	case m.Keys.Tasks:
		m.CurrentView = ViewTasks
		return m, nil
	case m.Keys.Calendar:
		m.CurrentView = ViewCalendar
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Add:
		return m.openCreateForm()
	case "r":
		return m.refresh()
	case "e":
		return m.openEditForm()
	case " ":
		return m.toggleSelected()
	case "d":
		if t, ok := m.selectedTask(); ok {
			m.ConfirmDelete = t.ID
		}
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewHome:
		return m.handleHomeKey(msg), nil
	case ViewTasks:
		return m.handleTaskListKey(msg), nil
	case ViewCalendar:
		return m.handleCalendarKey(msg), nil
	}
	return m, nil
}

func (m Model) handleOnboardingKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		m.CurrentView = ViewHome
		m.Status = StatusBar{Text: "welcome"}
		return m, m.markOnboardedCmd()
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	id := m.ConfirmDelete
	m.ConfirmDelete = ""
	switch msg.String() {
	case "y", "Y":
		before := m.Tasks
		m.Tasks = removeTask(m.Tasks, id)
		m.Status = StatusBar{Text: "deleting task"}
		return m, m.deleteCmd(before, id)
	default:
		m.Status = StatusBar{Text: "delete cancelled"}
		return m, nil
	}
}

func (m Model) refresh() (Model, tea.Cmd) {
	if m.Loading {
		return m, nil
	}
	m.Loading = true
	m.Status = StatusBar{Text: "refreshing"}
	return m, tea.Batch(m.loadCmd(), m.loadSpinner.Tick)
}

// toggleSelected flips the selected task locally and sends the write. A
// Missed task stays as it is and nothing is sent.
func (m Model) toggleSelected() (Model, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	before := m.Tasks
	next, changed := model.ApplyToggle(m.Tasks, t.ID, m.now())
	if !changed {
		m.Status = StatusBar{Text: "missed tasks cannot be toggled", IsError: true}
		return m, nil
	}
	m.Tasks = next
	return m, m.toggleCmd(before, t.ID)
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	tabs := views.RenderTabs([]string{string(ViewHome), string(ViewTasks), string(ViewCalendar)}, string(m.CurrentView))
	switch m.CurrentView {
	case ViewOnboarding:
		leftPane = views.RenderOnboarding()
		tabs = ""
	case ViewHome:
		leftPane = m.renderHomeView()
		rightPane = m.renderSidePane()
	case ViewTasks:
		leftPane = m.renderTaskListView()
		rightPane = m.renderSidePane()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
		rightPane = m.renderSidePane()
	case ViewForm:
		leftPane = m.renderFormView()
		rightPane = m.renderHelpIfVisible()
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("taskcal | view: %s | filter: %s", m.CurrentView, m.Filter),
		Tabs:         tabs,
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer:       fmt.Sprintf("keys: %s home | %s tasks | %s calendar | %s add | / cmd | %s help | %s quit", m.Keys.Home, m.Keys.Tasks, m.Keys.Calendar, m.Keys.Add, m.Keys.Help, m.Keys.Quit),
	})
}

// userMessage trims wrapped errors down to the sentinel a user can act on.
func userMessage(err error) string {
	switch {
	case errors.Is(err, tasks.ErrMutationFailed):
		return "failed to save changes"
	case errors.Is(err, tasks.ErrLoadFailed):
		return "failed to load tasks"
	case errors.Is(err, tasks.ErrTaskNotFound):
		return "task not found"
	default:
		return strings.TrimSpace(err.Error())
	}
}

func removeTask(list []model.Task, id string) []model.Task {
	out := make([]model.Task, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
