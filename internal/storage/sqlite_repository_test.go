package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taskcal-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestTaskCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()
	created := parseRFC3339(t, "2024-05-30T08:00:00Z")
	due := parseRFC3339(t, "2024-06-01T23:59:00Z")

	task := Task{
		ID:          "task-1",
		Title:       "Buy milk",
		Description: "two litres",
		DueDate:     due,
		Status:      "Pending",
		IsImportant: true,
		CreatedAt:   created,
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != task.Title || !got.DueDate.Equal(due) || !got.IsImportant || got.Status != "Pending" {
		t.Fatalf("unexpected task get result: %#v", got)
	}

	task.Status = "Done"
	task.IsImportant = false
	if err := repo.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	done, err := repo.ListTasks(ctx, TaskListFilter{Status: "Done"})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(done) != 1 || done[0].ID != task.ID || done[0].IsImportant {
		t.Fatalf("unexpected done list: %#v", done)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	_, err = repo.GetTask(ctx, task.ID)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := repo.DeleteTask(ctx, task.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestTaskWithoutDueDate(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()
	if err := repo.CreateTask(ctx, Task{ID: "t", Title: "Someday", Status: "Pending", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	got, err := repo.GetTask(ctx, "t")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !got.DueDate.IsZero() {
		t.Fatalf("expected zero due date, got %v", got.DueDate)
	}
}

func TestListTasksOrderAndPagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()
	base := parseRFC3339(t, "2024-06-01T00:00:00Z")
	for i, id := range []string{"a", "b", "c"} {
		if err := repo.CreateTask(ctx, Task{ID: id, Title: id, Status: "Pending", CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	all, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("unexpected order: %#v", all)
	}
	page, err := repo.ListTasks(ctx, TaskListFilter{Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 || page[0].ID != "b" {
		t.Fatalf("unexpected page: %#v", page)
	}
}

func TestListTasksOrdersWithinSecond(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()
	base := parseRFC3339(t, "2024-06-01T12:00:00Z")
	if err := repo.CreateTask(ctx, Task{ID: "older", Title: "older", Status: "Pending", CreatedAt: base}); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := repo.CreateTask(ctx, Task{ID: "newer", Title: "newer", Status: "Pending", CreatedAt: base.Add(500 * time.Millisecond)}); err != nil {
		t.Fatalf("create newer: %v", err)
	}
	all, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "newer" {
		t.Fatalf("expected newer first, got %#v", all)
	}
	if !all[0].CreatedAt.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("created_at lost precision: %v", all[0].CreatedAt)
	}
}

func TestUpdateMissingTask(t *testing.T) {
	repo := setupRepo(t)
	if err := repo.UpdateTask(t.Context(), Task{ID: "nope", Title: "x", Status: "Pending"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsUnknownStatus(t *testing.T) {
	repo := setupRepo(t)
	if err := repo.CreateTask(t.Context(), Task{ID: "x", Title: "x", Status: "Snoozed", CreatedAt: time.Now()}); err == nil {
		t.Fatal("expected check constraint failure")
	}
}

func TestOnboardingFlag(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()

	seen, err := Onboarded(ctx, repo)
	if err != nil || seen {
		t.Fatalf("fresh store onboarded = %v, %v", seen, err)
	}
	if err := SetOnboarded(ctx, repo, true, time.Now()); err != nil {
		t.Fatalf("set onboarded: %v", err)
	}
	seen, err = Onboarded(ctx, repo)
	if err != nil || !seen {
		t.Fatalf("onboarded after set = %v, %v", seen, err)
	}
	if err := SetOnboarded(ctx, repo, false, time.Now()); err != nil {
		t.Fatalf("reset onboarded: %v", err)
	}
	if seen, _ := Onboarded(ctx, repo); seen {
		t.Fatal("expected reset flag")
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "device.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()
	if _, err := repo.ListTasks(t.Context(), TaskListFilter{}); err != nil {
		t.Fatalf("list on fresh db: %v", err)
	}
}
