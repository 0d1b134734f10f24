package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type TaskRow struct {
	ID        string
	Title     string
	Status    string
	DueLabel  string
	Important bool
	Selected  bool
}

type HomeData struct {
	Pending   int
	Done      int
	Missed    int
	Upcoming  []TaskRow
	Loading   bool
	Spinner   string
	LoadError string
}

type TaskListData struct {
	Filters       []string
	ActiveFilter  string
	TableView     string
	Empty         bool
	ConfirmDelete string
}

type CalendarData struct {
	Month    time.Time
	Selected time.Time
	Today    time.Time
	// Marks maps day of month to the status that summarizes it.
	Marks   map[int]string
	DayRows []TaskRow
}

type FormData struct {
	Editing         bool
	Loading         bool
	TitleView       string
	DescriptionView string
	DateView        string
	TimeView        string
	Important       bool
	Focus           int
	Errors          map[string]string
	Submitting      bool
}

type DetailData struct {
	Title           string
	Status          string
	Due             string
	Important       bool
	Created         string
	DescriptionView string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderOnboarding() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Welcome to taskcal") + "\n\n")
	b.WriteString("Plan your day and never miss a deadline.\n\n")
	b.WriteString("- Home shows what is coming up next and how you are doing.\n")
	b.WriteString("- Tasks lists everything, filtered by status.\n")
	b.WriteString("- Calendar shows which days have tasks due.\n\n")
	b.WriteString("Tasks you do not finish before their due time are marked missed.\n\n")
	b.WriteString(mutedStyle.Render("press enter to get started"))
	return b.String()
}

func RenderHome(data HomeData) string {
	var b strings.Builder
	b.WriteString("home:\n")
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		pendingStyle.Render(fmt.Sprintf("pending %d", data.Pending)),
		doneStyle.Render(fmt.Sprintf("done %d", data.Done)),
		missedStyle.Render(fmt.Sprintf("missed %d", data.Missed)),
	))
	b.WriteString(mutedStyle.Render("jump: [p]pending [o]done [m]missed") + "\n\n")
	if data.Loading {
		b.WriteString(data.Spinner + " loading tasks\n")
	}
	if data.LoadError != "" {
		b.WriteString(errorStyle.Render(data.LoadError) + "\n")
		b.WriteString(mutedStyle.Render("press r to retry") + "\n")
		return strings.TrimSpace(b.String())
	}
	b.WriteString("upcoming:\n")
	if len(data.Upcoming) == 0 && !data.Loading {
		b.WriteString("  (nothing pending)\n")
	}
	for _, row := range data.Upcoming {
		b.WriteString(renderRow(row) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	chips := make([]string, 0, len(data.Filters))
	for _, f := range data.Filters {
		if f == data.ActiveFilter {
			chips = append(chips, selectedStyle.Render(" "+f+" "))
			continue
		}
		chips = append(chips, StatusStyle(f).Render(" "+f+" "))
	}
	b.WriteString(strings.Join(chips, " ") + "\n")
	b.WriteString(mutedStyle.Render("actions: [f]filter [j/k]move [space]toggle [e]edit [d]delete") + "\n")
	if data.Empty {
		b.WriteString("\n(no tasks)\n")
	} else {
		b.WriteString(data.TableView + "\n")
	}
	if data.ConfirmDelete != "" {
		b.WriteString(RenderConfirm(data.ConfirmDelete))
	}
	return strings.TrimSpace(b.String())
}

func RenderCalendar(data CalendarData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("calendar: %s\n", data.Month.Format("January 2006")))
	b.WriteString(mutedStyle.Render("actions: [h/l]day [H/L]month [t]today [j/k]move") + "\n\n")
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")

	first := time.Date(data.Month.Year(), data.Month.Month(), 1, 0, 0, 0, 0, data.Month.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()
	b.WriteString(strings.Repeat("    ", int(first.Weekday())))
	for day := 1; day <= daysInMonth; day++ {
		cell := fmt.Sprintf("%3d", day)
		if status, ok := data.Marks[day]; ok {
			cell = StatusStyle(status).Render(cell)
		}
		if sameDay(data.Selected, first.AddDate(0, 0, day-1)) {
			cell = selectedStyle.Render(fmt.Sprintf("%3d", day))
		}
		marker := " "
		if sameDay(data.Today, first.AddDate(0, 0, day-1)) {
			marker = "*"
		}
		b.WriteString(cell + marker)
		if (int(first.Weekday())+day)%7 == 0 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s:\n", data.Selected.Format("Mon Jan 2")))
	if len(data.DayRows) == 0 {
		b.WriteString("  (no tasks)\n")
	}
	for _, row := range data.DayRows {
		b.WriteString(renderRow(row) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderForm(data FormData) string {
	var b strings.Builder
	if data.Editing {
		b.WriteString("update task:\n")
	} else {
		b.WriteString("new task:\n")
	}
	if data.Loading {
		b.WriteString("loading task...\n")
		return b.String()
	}
	b.WriteString(mutedStyle.Render("keys: [tab]next field [enter]save [esc]cancel") + "\n\n")

	field := func(idx int, label, view, errKey string) {
		cursor := " "
		if data.Focus == idx {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s\n%s\n", cursor, label, view))
		if msg := data.Errors[errKey]; msg != "" {
			b.WriteString(errorStyle.Render("  "+msg) + "\n")
		}
	}
	field(0, "title", data.TitleView, "title")
	field(1, "description", data.DescriptionView, "")
	field(2, "due date (YYYY-MM-DD)", data.DateView, "")
	field(3, "due time (HH:MM)", data.TimeView, "dueDate")

	check := "[ ]"
	if data.Important {
		check = "[x]"
	}
	cursor := " "
	if data.Focus == 4 {
		cursor = ">"
	}
	b.WriteString(fmt.Sprintf("%s %s important (space)\n", cursor, check))
	if data.Submitting {
		b.WriteString("\nsaving...")
	}
	return strings.TrimSpace(b.String())
}

func RenderDetail(data DetailData) string {
	if data.Title == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(headerStyle.Render(data.Title) + "\n")
	b.WriteString(fmt.Sprintf("status: %s\n", StatusStyle(data.Status).Render(data.Status)))
	b.WriteString(fmt.Sprintf("due: %s\n", data.Due))
	if data.Important {
		b.WriteString("important: yes\n")
	}
	if data.Created != "" {
		b.WriteString(fmt.Sprintf("created: %s\n", data.Created))
	}
	if data.DescriptionView != "" {
		b.WriteString("\n" + data.DescriptionView)
	}
	return strings.TrimSpace(b.String())
}

func RenderConfirm(title string) string {
	return errorStyle.Render(fmt.Sprintf("delete %q? [y/n]", title))
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	line := fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
	if level == "error" {
		return errorStyle.Render(line)
	}
	return line
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

// DueLabel renders a due instant relative to now's calendar day, e.g.
// "Today • 14:00" or "Jun 1 • 08:00".
func DueLabel(due, now time.Time) string {
	if due.IsZero() {
		return "no due date"
	}
	due = due.In(now.Location())
	clock := due.Format("15:04")
	switch {
	case sameDay(due, now):
		return "Today • " + clock
	case sameDay(due, now.AddDate(0, 0, 1)):
		return "Tomorrow • " + clock
	case sameDay(due, now.AddDate(0, 0, -1)):
		return "Yesterday • " + clock
	case due.Year() == now.Year():
		return due.Format("Jan 2") + " • " + clock
	default:
		return due.Format("Jan 2 2006") + " • " + clock
	}
}

// CreatedLabel renders a creation time relative to now.
func CreatedLabel(created, now time.Time) string {
	if created.IsZero() {
		return ""
	}
	return humanize.RelTime(created, now, "ago", "from now")
}

func renderRow(row TaskRow) string {
	cursor := " "
	if row.Selected {
		cursor = ">"
	}
	star := " "
	if row.Important {
		star = "!"
	}
	status := StatusStyle(row.Status).Render(fmt.Sprintf("%-7s", row.Status))
	return fmt.Sprintf("%s %s %s %s  %s", cursor, star, status, row.Title, mutedStyle.Render(row.DueLabel))
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
