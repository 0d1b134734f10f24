package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcal/internal/model"
)

type tasksLoadedMsg struct {
	Tasks []model.Task
	Err   error
}

// mutationDoneMsg carries the refetched list after a toggle or delete. Tasks
// replaces the local list even when Err is set.
type mutationDoneMsg struct {
	Op    string
	Tasks []model.Task
	Err   error
}

type taskSavedMsg struct {
	Editing bool
	Task    model.Task
	Err     error
}

type taskFetchedMsg struct {
	Task model.Task
	Err  error
}

type onboardedMsg struct {
	Err error
}

func (m Model) withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m Model) loadCmd() tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		loaded, err := svc.Load(ctx)
		return tasksLoadedMsg{Tasks: loaded, Err: err}
	}
}

// toggleCmd sends the toggle for id; before must be the list as it was
// prior to the optimistic change.
func (m Model) toggleCmd(before []model.Task, id string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		fresh, err := svc.Toggle(ctx, before, id)
		return mutationDoneMsg{Op: "toggle", Tasks: fresh, Err: err}
	}
}

func (m Model) deleteCmd(before []model.Task, id string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		fresh, err := svc.Delete(ctx, before, id)
		return mutationDoneMsg{Op: "delete", Tasks: fresh, Err: err}
	}
}

func (m Model) createCmd(d model.Draft) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		created, err := svc.Create(ctx, d)
		return taskSavedMsg{Task: created, Err: err}
	}
}

func (m Model) updateCmd(id string, f model.Fields) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		updated, err := svc.Update(ctx, id, f)
		return taskSavedMsg{Editing: true, Task: updated, Err: err}
	}
}

func (m Model) fetchCmd(id string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		t, err := svc.Get(ctx, id)
		return taskFetchedMsg{Task: t, Err: err}
	}
}

func (m Model) markOnboardedCmd() tea.Cmd {
	mark := m.markOnboarded
	if mark == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		return onboardedMsg{Err: mark(ctx)}
	}
}
