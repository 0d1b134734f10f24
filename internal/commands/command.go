package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskcal/internal/agenda"
	"github.com/sandeepkv93/taskcal/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeFilter  Type = "filter"
	TypeGoto    Type = "goto"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

// DueLayout is the date-time form accepted after "@" in add.
const DueLayout = "2006-01-02 15:04"

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
	// Due is the raw "YYYY-MM-DD HH:MM" text; Resolve turns it into a time.
	Due string
}

// Resolve parses Due in loc.
func (a AddArgs) Resolve(loc *time.Location) (time.Time, error) {
	due, err := time.ParseInLocation(DueLayout, a.Due, loc)
	if err != nil {
		return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("due must look like %s", DueLayout)}
	}
	return due, nil
}

type FilterArgs struct {
	Filter agenda.Filter
}

type GotoArgs struct {
	// Day is empty for today.
	Day string
}

func (g GotoArgs) Resolve(now time.Time) (time.Time, error) {
	if g.Day == "" {
		return now, nil
	}
	day, err := time.ParseInLocation(model.DateLayout, g.Day, now.Location())
	if err != nil {
		return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "goto expects YYYY-MM-DD or today"}
	}
	return day, nil
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Filter *FilterArgs
	Goto   *GotoArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(raw, parts[0]))

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, rest)
	case TypeFilter:
		return parseFilter(input, parts[1:])
	case TypeGoto:
		return parseGoto(input, parts[1:])
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw, rest string) (Command, error) {
	title, due, found := strings.Cut(rest, "@")
	title = strings.TrimSpace(title)
	due = strings.Join(strings.Fields(due), " ")
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	if !found || due == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a due date: add <title> @ YYYY-MM-DD HH:MM"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title, Due: due}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires one of ALL, Pending, Done, Missed"}
	}
	f, err := agenda.ParseFilter(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown filter: %s", args[0])}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Filter: f}}, nil
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "goto takes a single date"}
	}
	day := ""
	if len(args) == 1 && !strings.EqualFold(args[0], "today") {
		if _, err := time.Parse(model.DateLayout, args[0]); err != nil {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "goto expects YYYY-MM-DD or today"}
		}
		day = args[0]
	}
	return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Day: day}}, nil
}
