package sqlite

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"

	"todoapi/internal/server/repository"
	"todoapi/internal/shared/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS todos (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		completed BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_todos_user_created ON todos(user_id, created_at DESC);
`

const todoColumns = `id, user_id, title, description, completed, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Users

func (r *Repository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users(id,email,password_hash,created_at,updated_at) VALUES(?,?,?,?,?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *Repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id,email,password_hash,created_at,updated_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id,email,password_hash,created_at,updated_at FROM users WHERE email = ?`, email)
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
	_, err := r.db.ExecContext(ctx, `INSERT INTO todos(`+todoColumns+`) VALUES(?,?,?,?,?,?,?)`,
		t.ID, t.OwnerID, string(t.Title), t.Description, t.Completed, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	got, err := r.FindTask(ctx, t.ID, t.OwnerID)
	if err != nil {
		return models.Task{}, err
	}
	if got == nil {
		return models.Task{}, repository.ErrNotFound
	}
	return *got, nil
}

func (r *Repository) FindTask(ctx context.Context, id, ownerID string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`, id, ownerID)
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
	rows, err := r.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, ownerID, limit, offset)
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
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos WHERE user_id = ?`, ownerID).Scan(&n)
	return n, err
}

func (r *Repository) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE todos SET title=?, description=?, completed=?, updated_at=? WHERE id=? AND user_id=?`,
		string(t.Title), t.Description, t.Completed, t.UpdatedAt, t.ID, t.OwnerID)
	if err != nil {
		return models.Task{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return models.Task{}, repository.ErrNotFound
	}
	got, err := r.FindTask(ctx, t.ID, t.OwnerID)
	if err != nil {
		return models.Task{}, err
	}
	if got == nil {
		return models.Task{}, repository.ErrNotFound
	}
	return *got, nil
}

func (r *Repository) DeleteTask(ctx context.Context, id, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, ownerID)
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
