package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sandeepkv93/taskcal/internal/api"
	"github.com/sandeepkv93/taskcal/internal/audit"
	"github.com/sandeepkv93/taskcal/internal/model"
	"github.com/sandeepkv93/taskcal/internal/storage"
	"github.com/sandeepkv93/taskcal/internal/tasks"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Publish(_ context.Context, ev audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingAudit) Close() error { return nil }

func (r *recordingAudit) actions() []audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Action, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

func setupServer(t *testing.T) (*httptest.Server, *recordingAudit) {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	rec := &recordingAudit{}
	var seq atomic.Int64
	srv := New(Options{
		Store:  store,
		Audit:  rec,
		Logger: zaptest.NewLogger(t),
		Now:    func() time.Time { return now },
		NewID: func() string {
			return fmt.Sprintf("id-%d", seq.Add(1))
		},
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, rec
}

func newClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	c, err := api.NewClient(api.Options{BaseURL: baseURL, Timeout: time.Second, Location: time.UTC, Logger: zaptest.NewLogger(t)})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	ts, rec := setupServer(t)
	c := newClient(t, ts.URL)
	due := now.Add(24 * time.Hour)

	created, err := c.Create(t.Context(), model.Task{Title: "Buy milk", DueDate: due, Status: model.StatusPending, CreatedAt: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "id-1" {
		t.Fatalf("unexpected id: %q", created.ID)
	}

	got, err := c.Get(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Buy milk" || !got.DueDate.Equal(due) || got.Status != model.StatusPending || got.Date != "2024-06-02" {
		t.Fatalf("unexpected round trip: %#v", got)
	}
	if actions := rec.actions(); len(actions) != 1 || actions[0] != audit.ActionCreate {
		t.Fatalf("unexpected audit events: %v", actions)
	}
}

func TestUpdateMergesPartialBody(t *testing.T) {
	ts, _ := setupServer(t)
	c := newClient(t, ts.URL)
	created, err := c.Create(t.Context(), model.Task{Title: "Buy milk", Description: "oat", DueDate: now.Add(time.Hour), Status: model.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := c.Update(t.Context(), created.ID, api.StatusPatch(model.StatusDone))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.StatusDone || updated.Description != "oat" || updated.Title != "Buy milk" {
		t.Fatalf("partial update lost fields: %#v", updated)
	}
	if !updated.CreatedAt.Equal(now) {
		t.Fatalf("created_at should default to server clock: %v", updated.CreatedAt)
	}
}

func TestDeleteReturnsRecordAnd404sAfter(t *testing.T) {
	ts, rec := setupServer(t)
	c := newClient(t, ts.URL)
	created, err := c.Create(t.Context(), model.Task{Title: "Buy milk", DueDate: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.Delete(t.Context(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Delete(t.Context(), created.ID); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Get(t.Context(), created.ID); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	actions := rec.actions()
	if len(actions) != 2 || actions[1] != audit.ActionDelete {
		t.Fatalf("unexpected audit events: %v", actions)
	}
}

func TestRejectsBadInput(t *testing.T) {
	ts, _ := setupServer(t)
	cases := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{http.MethodPost, "/todo", "{", http.StatusBadRequest},
		{http.MethodPost, "/todo", `{"title":""}`, http.StatusBadRequest},
		{http.MethodPost, "/todo", `{"title":"ok","status":"Later"}`, http.StatusBadRequest},
		{http.MethodPut, "/todo/missing", `{"status":"Done"}`, http.StatusNotFound},
		{http.MethodGet, "/todo?status=Later", "", http.StatusBadRequest},
		{http.MethodGet, "/todo?limit=-1", "", http.StatusBadRequest},
		{http.MethodGet, "/todo?offset=two", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req, err := http.NewRequestWithContext(t.Context(), tc.method, ts.URL+tc.path, strings.NewReader(tc.body))
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}
		var body map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != tc.code || body["error"] == "" {
			t.Fatalf("%s %s = %d %v, want %d", tc.method, tc.path, resp.StatusCode, body, tc.code)
		}
	}
}

func TestListFiltersByStatus(t *testing.T) {
	ts, _ := setupServer(t)
	c := newClient(t, ts.URL)
	for _, status := range []model.Status{model.StatusPending, model.StatusDone, model.StatusDone} {
		if _, err := c.Create(t.Context(), model.Task{Title: "task", Status: status, DueDate: now.Add(time.Hour)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	resp, err := http.Get(ts.URL + "/todo?status=done")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	var records []api.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 done records, got %d", len(records))
	}
}

func TestUpdateRejectsBlankTitle(t *testing.T) {
	ts, _ := setupServer(t)
	c := newClient(t, ts.URL)
	created, err := c.Create(t.Context(), model.Task{Title: "Buy milk", DueDate: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPut, ts.URL+"/todo/"+created.ID, strings.NewReader(`{"title":"   "}`))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	got, err := c.Get(t.Context(), created.ID)
	if err != nil || got.Title != "Buy milk" {
		t.Fatalf("stored task changed: %#v %v", got, err)
	}
}

func TestListPaginates(t *testing.T) {
	ts, _ := setupServer(t)
	c := newClient(t, ts.URL)
	for i, title := range []string{"first", "second", "third"} {
		created := now.Add(time.Duration(i) * time.Minute)
		if _, err := c.Create(t.Context(), model.Task{Title: title, DueDate: now.Add(time.Hour), CreatedAt: created}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	resp, err := http.Get(ts.URL + "/todo?limit=1&offset=1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	var records []api.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].Title != "second" {
		t.Fatalf("unexpected page: %#v", records)
	}
}

func TestServiceAgainstServer(t *testing.T) {
	ts, _ := setupServer(t)
	c := newClient(t, ts.URL)
	svc := tasks.NewService(c, tasks.WithClock(func() time.Time { return now }))

	if _, err := svc.Create(t.Context(), model.Draft{Title: "Buy milk", DueDate: now.Add(24 * time.Hour)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.Create(t.Context(), model.Task{Title: "Pay rent", Status: model.StatusPending, DueDate: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("seed overdue: %v", err)
	}

	list, err := svc.Load(t.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	overdue, err := c.Get(t.Context(), "id-2")
	if err != nil {
		t.Fatalf("get overdue: %v", err)
	}
	if overdue.Status != model.StatusMissed {
		t.Fatalf("missed status was not written back: %s", overdue.Status)
	}

	list, err = svc.Toggle(t.Context(), list, "id-1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	for _, task := range list {
		if task.ID == "id-1" && task.Status != model.StatusDone {
			t.Fatalf("toggle not persisted: %#v", task)
		}
	}

	list, err = svc.Delete(t.Context(), list, "id-2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(list) != 1 || list[0].ID != "id-1" {
		t.Fatalf("unexpected list after delete: %#v", list)
	}
}
