package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// OpenPostgres migrates the schema and connects a pool to databaseURL.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if err := MigratePostgres(databaseURL); err != nil {
		return nil, err
	}
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) CreateTask(ctx context.Context, in Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, description, due_date, status, is_important, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, in.Title, in.Description, pgTime(in.DueDate), in.Status, in.IsImportant, in.CreatedAt.UTC(),
	)
	return err
}

func (r *PostgresRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, description, due_date, status, is_important, created_at
		FROM tasks WHERE id = $1`, id)
	task, err := scanPgTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, in Task) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, status = $4, is_important = $5
		WHERE id = $6`,
		in.Title, in.Description, pgTime(in.DueDate), in.Status, in.IsImportant, in.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT id, title, description, due_date, status, is_important, created_at FROM tasks`
	args := make([]any, 0, 3)
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanPgTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func pgTime(v time.Time) *time.Time {
	if v.IsZero() {
		return nil
	}
	utc := v.UTC()
	return &utc
}

func scanPgTask(s scanner) (Task, error) {
	var out Task
	var due *time.Time
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &due, &out.Status, &out.IsImportant, &out.CreatedAt); err != nil {
		return Task{}, err
	}
	if due != nil {
		out.DueDate = due.UTC()
	}
	out.CreatedAt = out.CreatedAt.UTC()
	return out, nil
}
