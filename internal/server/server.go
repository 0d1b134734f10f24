package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcal/internal/api"
	"github.com/sandeepkv93/taskcal/internal/audit"
	"github.com/sandeepkv93/taskcal/internal/model"
	"github.com/sandeepkv93/taskcal/internal/storage"
)

type Options struct {
	Store  storage.TaskStore
	Audit  audit.Publisher
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string
}

// Server serves the /todo resource the client talks to.
type Server struct {
	store storage.TaskStore
	audit audit.Publisher
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

func New(opts Options) *Server {
	s := &Server{store: opts.Store, audit: opts.Audit, log: opts.Logger, now: opts.Now, newID: opts.NewID}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.log = s.log.Named("server")
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/todo", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTask)
			r.Put("/", s.updateTask)
			r.Delete("/", s.deleteTask)
		})
	})
	return r
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	filter := storage.TaskListFilter{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = string(status)
	}
	var ok bool
	if filter.Limit, ok = pageParam(r, "limit"); !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, ok = pageParam(r, "offset"); !ok {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	tasks, err := s.store.ListTasks(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "list tasks", err)
		return
	}
	out := make([]api.Record, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toRecord(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in api.Record
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	status, ok := normalizeStatus(in.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	task := storage.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate.Time,
		Status:      status,
		IsImportant: in.IsImportant,
		CreatedAt:   in.CreatedAt.Time,
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.now()
	}
	if err := validateTask(task); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.CreateTask(r.Context(), task); err != nil {
		s.fail(w, r, "create task", err)
		return
	}
	s.publish(r.Context(), audit.ActionCreate, task)
	writeJSON(w, http.StatusCreated, toRecord(task))
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "get task", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecord(task))
}

// updateTask merges the fields present in the body into the stored record.
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch api.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	current, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		s.fail(w, r, "update task", err)
		return
	}
	merged := patch.Apply(toRecord(current))
	status, ok := normalizeStatus(merged.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	next := storage.Task{
		ID:          current.ID,
		Title:       merged.Title,
		Description: merged.Description,
		DueDate:     merged.DueDate.Time,
		Status:      status,
		IsImportant: merged.IsImportant,
		CreatedAt:   current.CreatedAt,
	}
	if err := validateTask(next); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.UpdateTask(r.Context(), next); err != nil {
		s.fail(w, r, "update task", err)
		return
	}
	s.publish(r.Context(), audit.ActionUpdate, next)
	writeJSON(w, http.StatusOK, toRecord(next))
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		s.fail(w, r, "delete task", err)
		return
	}
	if err := s.store.DeleteTask(r.Context(), id); err != nil {
		s.fail(w, r, "delete task", err)
		return
	}
	s.publish(r.Context(), audit.ActionDelete, current)
	writeJSON(w, http.StatusOK, toRecord(current))
}

func (s *Server) publish(ctx context.Context, action audit.Action, t storage.Task) {
	ev := audit.Event{
		Action:    action,
		TaskID:    t.ID,
		Status:    t.Status,
		RequestID: middleware.GetReqID(ctx),
		At:        s.now(),
	}
	if err := s.audit.Publish(ctx, ev); err != nil {
		s.log.Warn("audit publish failed", zap.String("task_id", t.ID), zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.log.Error(op,
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func normalizeStatus(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return string(model.StatusPending), true
	}
	status, err := model.ParseStatus(raw)
	if err != nil {
		return "", false
	}
	return string(status), true
}

// validateTask checks the record about to be stored.
func validateTask(t storage.Task) error {
	return model.Task{ID: t.ID, Title: t.Title, Status: model.Status(t.Status)}.Validate()
}

// pageParam reads a non-negative integer query parameter. Absent means zero.
func pageParam(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func toRecord(t storage.Task) api.Record {
	return api.Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     api.Timestamp{Time: t.DueDate},
		Status:      t.Status,
		IsImportant: t.IsImportant,
		CreatedAt:   api.Timestamp{Time: t.CreatedAt},
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
