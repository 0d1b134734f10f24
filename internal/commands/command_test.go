package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/taskcal/internal/agenda"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add Buy milk @ 2024-06-02 09:00", TypeAdd},
		{"filter missed", TypeFilter},
		{"goto 2024-06-01", TypeGoto},
		{"goto today", TypeGoto},
		{"/refresh", TypeRefresh},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAdd(t *testing.T) {
	cmd, err := Parse("/add  Buy   milk @ 2024-06-02   09:00 ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Title != "Buy   milk" || cmd.Add.Due != "2024-06-02 09:00" {
		t.Fatalf("unexpected add args: %+v", cmd.Add)
	}
	due, err := cmd.Add.Resolve(time.UTC)
	if err != nil || !due.Equal(time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("resolve = %v, %v", due, err)
	}

	for _, in := range []string{"add", "add Buy milk", "add @ 2024-06-02 09:00"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}

	bad := AddArgs{Title: "x", Due: "tomorrow"}
	if _, err := bad.Resolve(time.UTC); err == nil {
		t.Fatal("expected resolve error")
	}
}

func TestParseFilterAndGoto(t *testing.T) {
	cmd, err := Parse("filter ALL")
	if err != nil || cmd.Filter.Filter != agenda.FilterAll {
		t.Fatalf("filter ALL = %+v, %v", cmd.Filter, err)
	}
	if _, err := Parse("filter snoozed"); err == nil {
		t.Fatal("expected unknown filter error")
	}

	cmd, err = Parse("goto today")
	if err != nil || cmd.Goto.Day != "" {
		t.Fatalf("goto today = %+v, %v", cmd.Goto, err)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	day, err := cmd.Goto.Resolve(now)
	if err != nil || !day.Equal(now) {
		t.Fatalf("resolve today = %v, %v", day, err)
	}
	if _, err := Parse("goto 06/01/2024"); err == nil {
		t.Fatal("expected date format error")
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/snooze do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if _, err := Parse(" / "); err == nil {
		t.Fatal("expected empty input error")
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs @ 2024-06-02 09:00")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("refresh")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
