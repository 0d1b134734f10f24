package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcal/internal/commands"
	"github.com/sandeepkv93/taskcal/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	m.commandInput = editInput(m.commandInput, msg)
	m.Palette.Input = m.commandInput.Value()
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			due, err := a.Resolve(m.loc)
			if err != nil {
				return commands.Result{}, err
			}
			draft := model.Draft{Title: a.Title, DueDate: due}
			if err := draft.Validate(m.now()); err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: validationSummary(err)}
			}
			return commands.Result{Message: fmt.Sprintf("creating task: %s", draft.Title), Cmd: m.createCmd(draft)}, nil
		},
		Filter: func(f commands.FilterArgs) (commands.Result, error) {
			m = m.jumpToFilter(f.Filter)
			return commands.Result{Message: fmt.Sprintf("filter applied: %s", f.Filter)}, nil
		},
		Goto: func(g commands.GotoArgs) (commands.Result, error) {
			day, err := g.Resolve(m.now())
			if err != nil {
				return commands.Result{}, err
			}
			m.selectDay(day)
			m.CurrentView = ViewCalendar
			return commands.Result{Message: fmt.Sprintf("calendar: %s", m.Calendar.Selected.Format(model.DateLayout))}, nil
		},
		Refresh: func() (commands.Result, error) {
			next, loadCmd := m.refresh()
			m = next
			return commands.Result{Message: "refreshing", Cmd: loadCmd}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m, res.Cmd
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func validationSummary(err error) string {
	fields := formErrors(err)
	parts := make([]string, 0, len(fields))
	for _, field := range []string{model.FieldTitle, model.FieldDueDate} {
		if msg, ok := fields[field]; ok {
			parts = append(parts, msg)
		}
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}
