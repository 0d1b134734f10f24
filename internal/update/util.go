package update

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcal/internal/model"
	"github.com/sandeepkv93/taskcal/internal/views"
)

// flashStatus shows text and schedules its removal after the status TTL.
// The tick is ignored once another status has replaced it.
func (m *Model) flashStatus(text string) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.Status = StatusBar{Text: text}
	return tea.Tick(m.statusTTL, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq, Text: text}
	})
}

// editInput applies a key to a text input. Printable keys and backspace are
// handled directly so the input does not need focus.
func editInput(in textinput.Model, msg tea.KeyMsg) textinput.Model {
	switch msg.Type {
	case tea.KeyRunes:
		in.SetValue(in.Value() + string(msg.Runes))
		return in
	case tea.KeySpace:
		in.SetValue(in.Value() + " ")
		return in
	case tea.KeyBackspace:
		runes := []rune(in.Value())
		if len(runes) > 0 {
			in.SetValue(string(runes[:len(runes)-1]))
		}
		return in
	}
	var cmd tea.Cmd
	in, cmd = in.Update(msg)
	_ = cmd
	return in
}

func taskRow(t model.Task, now time.Time, selected bool) views.TaskRow {
	return views.TaskRow{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		DueLabel:  dueLabel(t, now),
		Important: t.IsImportant,
		Selected:  selected,
	}
}

func dueLabel(t model.Task, now time.Time) string {
	return views.DueLabel(t.DueDate, now)
}

func renderDescription(md string, width int) string {
	return views.RenderMarkdown(md, width-2)
}
