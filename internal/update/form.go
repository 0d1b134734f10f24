package update

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcal/internal/model"
	"github.com/sandeepkv93/taskcal/internal/views"
)

// defaultDueTime fills the time field when only a date is given.
const defaultDueTime = "23:59"

const dueFormatMessage = "Use YYYY-MM-DD and HH:MM"

func (m Model) openCreateForm() (Model, tea.Cmd) {
	m.resetFormInputs()
	m.Form = FormState{ReturnTo: m.CurrentView, Errors: map[string]string{}}
	if m.CurrentView == ViewCalendar {
		m.dateInput.SetValue(m.Calendar.Selected.Format(model.DateLayout))
	}
	m.CurrentView = ViewForm
	m.setFormFocus(FieldTitle)
	return m, nil
}

// openEditForm prefills the form from a fresh GET of the selected task.
func (m Model) openEditForm() (Model, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	m.resetFormInputs()
	m.Form = FormState{
		Editing:  true,
		EditID:   t.ID,
		Loading:  true,
		ReturnTo: m.CurrentView,
		Errors:   map[string]string{},
	}
	m.CurrentView = ViewForm
	m.setFormFocus(FieldTitle)
	return m, m.fetchCmd(t.ID)
}

func (m Model) onTaskFetched(msg taskFetchedMsg) (Model, tea.Cmd) {
	if m.CurrentView != ViewForm || !m.Form.Loading {
		return m, nil
	}
	if msg.Err != nil {
		m.LastError = msg.Err
		m = m.closeForm()
		m.Status = StatusBar{Text: userMessage(msg.Err), IsError: true}
		m.notify("Error", m.Status.Text, "error")
		return m, nil
	}
	t := msg.Task.Normalize(m.loc)
	m.Form.Loading = false
	m.Form.Important = t.IsImportant
	m.titleInput.SetValue(t.Title)
	m.descArea.SetValue(t.Description)
	m.dateInput.SetValue(t.Date)
	m.timeInput.SetValue(t.Time)
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closeForm()
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	case "tab":
		m.setFormFocus((m.Form.Focus + 1) % fieldCount)
		return m, nil
	case "shift+tab":
		m.setFormFocus((m.Form.Focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "enter", "ctrl+s":
		if m.Form.Loading || m.Form.Submitting {
			return m, nil
		}
		return m.submitForm()
	}
	if m.Form.Loading {
		return m, nil
	}

	switch m.Form.Focus {
	case FieldImportant:
		if msg.String() == " " || msg.String() == "x" {
			m.Form.Important = !m.Form.Important
		}
	case FieldDescription:
		switch msg.Type {
		case tea.KeyRunes:
			m.descArea.InsertString(string(msg.Runes))
			return m, nil
		case tea.KeySpace:
			m.descArea.InsertString(" ")
			return m, nil
		}
		var cmd tea.Cmd
		m.descArea, cmd = m.descArea.Update(msg)
		return m, cmd
	case FieldTitle:
		m.titleInput = editInput(m.titleInput, msg)
	case FieldDate:
		m.dateInput = editInput(m.dateInput, msg)
	case FieldTime:
		m.timeInput = editInput(m.timeInput, msg)
	}
	return m, nil
}

// submitForm validates locally and only then issues the request.
func (m Model) submitForm() (Model, tea.Cmd) {
	now := m.now()
	due, dueErr := parseDue(m.dateInput.Value(), m.timeInput.Value(), m.loc)

	var err error
	if m.Form.Editing {
		err = m.formFields(due).Validate()
	} else {
		err = m.formDraft(due).Validate(now)
	}
	m.Form.Errors = formErrors(err)
	if dueErr != nil {
		m.Form.Errors[model.FieldDueDate] = dueFormatMessage
	}
	if len(m.Form.Errors) > 0 {
		m.Status = StatusBar{Text: "fix the highlighted fields", IsError: true}
		return m, nil
	}

	m.Form.Submitting = true
	if m.Form.Editing {
		return m, m.updateCmd(m.Form.EditID, m.formFields(due))
	}
	return m, m.createCmd(m.formDraft(due))
}

func (m Model) onTaskSaved(msg taskSavedMsg) (Model, tea.Cmd) {
	m.Form.Submitting = false
	if msg.Err != nil {
		var ve *model.ValidationError
		if errors.As(msg.Err, &ve) && m.CurrentView == ViewForm {
			m.Form.Errors = formErrors(ve)
			return m, nil
		}
		m.LastError = msg.Err
		m.Status = StatusBar{Text: userMessage(msg.Err), IsError: true}
		m.notify("Error", m.Status.Text, "error")
		return m, nil
	}

	if m.CurrentView == ViewForm {
		m = m.closeForm()
	}
	text := "task created"
	if msg.Editing {
		text = "task updated"
	}
	clearCmd := m.flashStatus(text)
	m.notify("Saved", text+": "+msg.Task.Title, "info")
	m.Loading = true
	return m, tea.Batch(m.loadCmd(), m.loadSpinner.Tick, clearCmd)
}

func (m Model) closeForm() Model {
	back := m.Form.ReturnTo
	if !isBrowsingView(back) {
		back = ViewHome
	}
	m.CurrentView = back
	m.Form = FormState{}
	m.resetFormInputs()
	return m
}

func (m Model) formDraft(due time.Time) model.Draft {
	return model.Draft{
		Title:       m.titleInput.Value(),
		Description: m.descArea.Value(),
		DueDate:     due,
		IsImportant: m.Form.Important,
	}
}

func (m Model) formFields(due time.Time) model.Fields {
	return model.Fields{
		Title:       m.titleInput.Value(),
		Description: m.descArea.Value(),
		DueDate:     due,
		IsImportant: m.Form.Important,
	}
}

func (m *Model) resetFormInputs() {
	m.titleInput.SetValue("")
	m.descArea.SetValue("")
	m.dateInput.SetValue("")
	m.timeInput.SetValue("")
}

func (m *Model) setFormFocus(field FormField) {
	m.Form.Focus = field
	m.titleInput.Blur()
	m.descArea.Blur()
	m.dateInput.Blur()
	m.timeInput.Blur()
	switch field {
	case FieldTitle:
		m.titleInput.Focus()
	case FieldDescription:
		m.descArea.Focus()
	case FieldDate:
		m.dateInput.Focus()
	case FieldTime:
		m.timeInput.Focus()
	}
}

func (m Model) renderFormView() string {
	return views.RenderForm(views.FormData{
		Editing:         m.Form.Editing,
		Loading:         m.Form.Loading,
		TitleView:       m.titleInput.View(),
		DescriptionView: m.descArea.View(),
		DateView:        m.dateInput.View(),
		TimeView:        m.timeInput.View(),
		Important:       m.Form.Important,
		Focus:           int(m.Form.Focus),
		Errors:          m.Form.Errors,
		Submitting:      m.Form.Submitting,
	})
}

// parseDue combines the date and time fields. An empty date yields the zero
// time so validation reports it as missing.
func parseDue(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, nil
	}
	if clock == "" {
		clock = defaultDueTime
	}
	return time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+clock, loc)
}

func formErrors(err error) map[string]string {
	out := map[string]string{}
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		return out
	}
	for _, field := range []string{model.FieldTitle, model.FieldDueDate} {
		if msg := ve.Message(field); msg != "" {
			out[field] = msg
		}
	}
	return out
}
