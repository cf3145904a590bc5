// Package memory is an in-process repository used by tests and by
// TODOAPI_DB_DSN=memory. It honours the same owner-scoping contract as the
// SQL backends.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"todoapi/internal/server/repository"
	"todoapi/internal/shared/models"
)

var (
	// ErrDuplicateEmail mirrors the unique constraint on users.email.
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrInvalidWindow  = errors.New("negative limit or offset")
)

type taskKey struct{ id, ownerID string }

type Repository struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	tasks   map[taskKey]models.Task
}

func New() *Repository {
	return &Repository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		tasks:   make(map[taskKey]models.Task),
	}
}

func (r *Repository) Close() error { return nil }

// Users

func (r *Repository) CreateUser(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return models.User{}, ErrDuplicateEmail
	}
	r.users[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *Repository) FindUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *Repository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := r.users[id]
	return &u, nil
}

// Tasks

func (r *Repository) CreateTask(_ context.Context, t models.Task) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[taskKey{t.ID, t.OwnerID}] = copyTask(t)
	return copyTask(t), nil
}

func (r *Repository) FindTask(_ context.Context, id, ownerID string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[taskKey{id, ownerID}]
	if !ok {
		return nil, nil
	}
	t = copyTask(t)
	return &t, nil
}

func (r *Repository) ListTasks(_ context.Context, ownerID string, limit, offset int) ([]models.Task, error) {
	if limit < 0 || offset < 0 {
		return nil, ErrInvalidWindow
	}
	r.mu.RLock()
	var owned []models.Task
	for k, t := range r.tasks {
		if k.ownerID == ownerID {
			owned = append(owned, copyTask(t))
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID > owned[j].ID
	})
	if offset >= len(owned) {
		return []models.Task{}, nil
	}
	end := len(owned)
	if limit < end-offset {
		end = offset + limit
	}
	return owned[offset:end], nil
}

func (r *Repository) CountTasks(_ context.Context, ownerID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for k := range r.tasks {
		if k.ownerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *Repository) UpdateTask(_ context.Context, t models.Task) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := taskKey{t.ID, t.OwnerID}
	cur, ok := r.tasks[k]
	if !ok {
		return models.Task{}, repository.ErrNotFound
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Completed = t.Completed
	cur.UpdatedAt = t.UpdatedAt
	r.tasks[k] = copyTask(cur)
	return copyTask(cur), nil
}

func (r *Repository) DeleteTask(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, taskKey{id, ownerID})
	return nil
}

// copyTask detaches the description pointer from caller-owned memory.
func copyTask(t models.Task) models.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}
