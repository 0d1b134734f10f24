package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMigrateUpIsRepeatable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-repeat.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.CreateTask(t.Context(), Task{
		ID:          "task-rt-1",
		Title:       "Roundtrip task",
		Description: "migration compatibility",
		Status:      "Pending",
		DueDate:     now.Add(time.Hour),
		CreatedAt:   now,
	}); err != nil {
		t.Fatalf("insert after migrate failed: %v", err)
	}

	got, err := repo.GetTask(t.Context(), "task-rt-1")
	if err != nil {
		t.Fatalf("get after migrate failed: %v", err)
	}
	if got.Title != "Roundtrip task" || !got.DueDate.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected task after migrate: %#v", got)
	}
}

func TestDeviceStoreHasOnlySettings(t *testing.T) {
	repo, err := OpenDeviceStore(filepath.Join(t.TempDir(), "device.db"))
	if err != nil {
		t.Fatalf("open device store: %v", err)
	}
	defer repo.Close()

	rows, err := repo.db.QueryContext(t.Context(), `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		tables = append(tables, name)
	}
	if len(tables) != 1 || tables[0] != "settings" {
		t.Fatalf("expected only settings table, got %v", tables)
	}

	if err := SetOnboarded(t.Context(), repo, true, time.Now()); err != nil {
		t.Fatalf("set onboarded: %v", err)
	}
	seen, err := Onboarded(t.Context(), repo)
	if err != nil || !seen {
		t.Fatalf("expected onboarded, got %v %v", seen, err)
	}
}

func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("TASKCAL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TASKCAL_TEST_DATABASE_URL not set")
	}
	repo, err := OpenPostgres(t.Context(), url)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer repo.Close()

	ctx := t.Context()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := "pg-" + now.Format("150405.000000")
	if err := repo.CreateTask(ctx, Task{ID: id, Title: "Buy milk", Status: "Pending", DueDate: now.Add(time.Hour), CreatedAt: now}); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { _ = repo.DeleteTask(t.Context(), id) })

	got, err := repo.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Buy milk" || !got.DueDate.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected task: %#v", got)
	}
	got.Status = "Done"
	if err := repo.UpdateTask(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	done, err := repo.ListTasks(ctx, TaskListFilter{Status: "Done"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, task := range done {
		found = found || task.ID == id
	}
	if !found {
		t.Fatalf("updated task missing from done list")
	}
	if err := repo.UpdateTask(ctx, Task{ID: "missing", Title: "x", Status: "Pending"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
