// Package postgres stores users and todos in PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"todoapi/internal/server/repository"
	"todoapi/internal/shared/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS todos (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_todos_user_created ON todos(user_id, created_at DESC);
`

const todoColumns = `id, user_id, title, description, completed, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

// New connects to dsn and creates the schema if it does not exist.
func New(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Users

func (r *Repository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, password_hash, created_at, updated_at`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	var out models.User
	if err := row.Scan(&out.ID, &out.Email, &out.PasswordHash, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return models.User{}, err
	}
	return out, nil
}

func (r *Repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := models.ParseID(id); err != nil {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx, `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Todos

func (r *Repository) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+todoColumns,
		t.ID, t.OwnerID, string(t.Title), t.Description, t.Completed, t.CreatedAt, t.UpdatedAt)
	return scanTask(row)
}

func (r *Repository) FindTask(ctx context.Context, id, ownerID string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1 AND user_id = $2`, id, ownerID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) ListTasks(ctx context.Context, ownerID string, limit, offset int) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) CountTasks(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos WHERE user_id = $1`, ownerID).Scan(&n)
	return n, err
}

func (r *Repository) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE todos
		SET title = $1, description = $2, completed = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
		RETURNING `+todoColumns,
		string(t.Title), t.Description, t.Completed, t.UpdatedAt, t.ID, t.OwnerID)
	updated, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, repository.ErrNotFound
	}
	return updated, err
}

func (r *Repository) DeleteTask(ctx context.Context, id, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, ownerID)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (models.Task, error) {
	var t models.Task
	var title string
	var desc sql.NullString
	if err := s.Scan(&t.ID, &t.OwnerID, &title, &desc, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	t.Title = models.Title(title)
	if desc.Valid {
		t.Description = &desc.String
	}
	return t, nil
}
