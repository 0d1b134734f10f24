package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcal/internal/agenda"
	"github.com/sandeepkv93/taskcal/internal/model"
	"github.com/sandeepkv93/taskcal/internal/tasks"
)

type View string

const (
	ViewOnboarding View = "Onboarding"
	ViewHome       View = "Home"
	ViewTasks      View = "Tasks"
	ViewCalendar   View = "Calendar"
	ViewForm       View = "Form"
)

// TaskService is the slice of tasks.Service the program drives.
type TaskService interface {
	Load(ctx context.Context) ([]model.Task, error)
	Toggle(ctx context.Context, current []model.Task, id string) ([]model.Task, error)
	Delete(ctx context.Context, current []model.Task, id string) ([]model.Task, error)
	Create(ctx context.Context, d model.Draft) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	Update(ctx context.Context, id string, f model.Fields) (model.Task, error)
	Now() time.Time
}

var _ TaskService = (*tasks.Service)(nil)

type Options struct {
	Service TaskService
	// Onboarded is read once at startup; false routes to the onboarding view.
	Onboarded     bool
	MarkOnboarded func(ctx context.Context) error
	InitialView   View
	InitialFilter agenda.Filter
	Location      *time.Location
	// RequestTimeout bounds each command that talks to the backend.
	RequestTimeout time.Duration
	// StatusTTL is how long a success status stays in the status bar.
	StatusTTL time.Duration
	Logger    *zap.Logger
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Home     string
	Tasks    string
	Calendar string
	Add      string
	Help     string
	Quit     string
}

type CalendarState struct {
	Month    time.Time
	Selected time.Time
	Cursor   int
}

type FormField int

const (
	FieldTitle FormField = iota
	FieldDescription
	FieldDate
	FieldTime
	FieldImportant
	fieldCount
)

type FormState struct {
	Editing    bool
	EditID     string
	Loading    bool
	Submitting bool
	Focus      FormField
	Important  bool
	Errors     map[string]string
	ReturnTo   View
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Model struct {
	CurrentView   View
	Tasks         []model.Task
	Filter        agenda.Filter
	Cursor        int
	HomeCursor    int
	Calendar      CalendarState
	Form          FormState
	ConfirmDelete string
	Loading       bool
	LoadErr       error
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	service       TaskService
	markOnboarded func(ctx context.Context) error
	loc           *time.Location
	timeout       time.Duration
	statusTTL     time.Duration
	statusSeq     int
	log           *zap.Logger

	taskTable      table.Model
	titleInput     textinput.Model
	descArea       textarea.Model
	dateInput      textinput.Model
	timeInput      textinput.Model
	commandInput   textinput.Model
	loadSpinner    spinner.Model
	helpModel      help.Model
	detailViewport viewport.Model
}

// ClearStatusMsg clears a transient status once its display time is up.
// Seq and Text tie it to the status that scheduled it.
type ClearStatusMsg struct {
	Seq  int
	Text string
}

func NewModel(opts Options) Model {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	statusTTL := opts.StatusTTL
	if statusTTL <= 0 {
		statusTTL = 4 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	filter := opts.InitialFilter
	if !filter.IsValid() {
		filter = agenda.FilterAll
	}

	m := Model{
		CurrentView:   ViewHome,
		Filter:        filter,
		Loading:       true,
		service:       opts.Service,
		markOnboarded: opts.MarkOnboarded,
		loc:           loc,
		timeout:       timeout,
		statusTTL:     statusTTL,
		log:           log.Named("ui"),
		Keys: GlobalKeyMap{
			Home:     "1",
			Tasks:    "2",
			Calendar: "3",
			Add:      "a",
			Help:     "?",
			Quit:     "q",
		},
	}
	if isBrowsingView(opts.InitialView) {
		m.CurrentView = opts.InitialView
	}
	if !opts.Onboarded {
		m.CurrentView = ViewOnboarding
	}
	today := m.now()
	m.Calendar = CalendarState{Month: monthStart(today), Selected: dayStart(today)}

	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Status", Width: 8},
		{Title: "Due", Width: 18},
		{Title: "!", Width: 1},
		{Title: "Title", Width: 24},
	}
	m.taskTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.titleInput = textinput.New()
	m.titleInput.Placeholder = "What needs doing?"
	m.titleInput.CharLimit = 120
	m.titleInput.Width = 48

	m.descArea = textarea.New()
	m.descArea.SetWidth(50)
	m.descArea.SetHeight(4)
	m.descArea.ShowLineNumbers = false
	m.descArea.Placeholder = "Description (markdown)"

	m.dateInput = textinput.New()
	m.dateInput.Placeholder = model.DateLayout
	m.dateInput.CharLimit = 10
	m.dateInput.Width = 12

	m.timeInput = textinput.New()
	m.timeInput.Placeholder = model.TimeLayout
	m.timeInput.CharLimit = 5
	m.timeInput.Width = 6

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.loadSpinner = spinner.New()
	m.loadSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detailViewport = viewport.New(38, 8)
}

// syncBubbleData pushes model state into the bubble components. It runs
// after every Update.
func (m *Model) syncBubbleData() {
	visible := m.visibleTasks()
	if m.Cursor >= len(visible) {
		m.Cursor = max(len(visible)-1, 0)
	}
	now := m.now()
	rows := make([]table.Row, 0, len(visible))
	for _, t := range visible {
		important := ""
		if t.IsImportant {
			important = "!"
		}
		rows = append(rows, table.Row{string(t.Status), dueLabel(t, now), important, t.Title})
	}
	m.taskTable.SetRows(rows)
	m.taskTable.SetCursor(m.Cursor)

	if upcoming := m.upcomingTasks(); m.HomeCursor >= len(upcoming) {
		m.HomeCursor = max(len(upcoming)-1, 0)
	}
	if day := m.dayTasks(); m.Calendar.Cursor >= len(day) {
		m.Calendar.Cursor = max(len(day)-1, 0)
	}

	if t, ok := m.selectedTask(); ok {
		m.detailViewport.SetContent(renderDescription(t.Description, m.detailViewport.Width))
	} else {
		m.detailViewport.SetContent("")
	}
}

func (m Model) now() time.Time {
	if m.service == nil {
		return time.Now().In(m.loc)
	}
	return m.service.Now().In(m.loc)
}

// visibleTasks is the Tasks view list: derived, filtered, newest first.
func (m Model) visibleTasks() []model.Task {
	return agenda.SortByRecency(agenda.FilterByStatus(model.Derive(m.Tasks, m.now()), m.Filter))
}

func (m Model) upcomingTasks() []model.Task {
	return agenda.Upcoming(m.Tasks, m.now())
}

func (m Model) dayTasks() []model.Task {
	now := m.now()
	return agenda.SortByTimeProximity(agenda.GroupByDay(model.Derive(m.Tasks, now), m.Calendar.Selected), now)
}

// selectedTask returns the task under the cursor of the current view.
func (m Model) selectedTask() (model.Task, bool) {
	var list []model.Task
	cursor := 0
	switch m.CurrentView {
	case ViewHome:
		list, cursor = m.upcomingTasks(), m.HomeCursor
	case ViewTasks:
		list, cursor = m.visibleTasks(), m.Cursor
	case ViewCalendar:
		list, cursor = m.dayTasks(), m.Calendar.Cursor
	default:
		return model.Task{}, false
	}
	if cursor < 0 || cursor >= len(list) {
		return model.Task{}, false
	}
	return list[cursor], true
}

func (m Model) findTask(id string) (model.Task, bool) {
	for _, t := range m.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func isBrowsingView(v View) bool {
	switch v {
	case ViewHome, ViewTasks, ViewCalendar:
		return true
	default:
		return false
	}
}

// ParseView maps a -view flag value to a browsing view.
func ParseView(raw string) (View, bool) {
	switch raw {
	case "home", "Home", "":
		return ViewHome, true
	case "tasks", "Tasks":
		return ViewTasks, true
	case "calendar", "Calendar":
		return ViewCalendar, true
	default:
		return "", false
	}
}
