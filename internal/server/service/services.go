package service

import (
	"context"
	"time"

	"todoapi/internal/server/config"
	"todoapi/internal/server/token"
	"todoapi/internal/shared/models"
	"todoapi/internal/shared/passhash"
)

// UserStore persists user accounts. Lookups return (nil, nil) when no row exists.
type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TaskStore persists tasks. Every read and write is scoped by owner in a
// single predicate; FindTask returns (nil, nil) for a task that is absent or
// belongs to someone else.
type TaskStore interface {
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	FindTask(ctx context.Context, id, ownerID string) (*models.Task, error)
	ListTasks(ctx context.Context, ownerID string, limit, offset int) ([]models.Task, error)
	CountTasks(ctx context.Context, ownerID string) (int64, error)
	UpdateTask(ctx context.Context, t models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id, ownerID string) error
}

type Repository interface {
	UserStore
	TaskStore
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, digest string) (bool, error)
}

type Services struct {
	Auth  *AuthService
	Tasks *TasksService
}

func NewServices(repo Repository, cfg config.Config) *Services {
	cfg = cfg.WithDefaults()
	params := passhash.DefaultParams
	if cfg.PasswordAlgorithm != "" {
		params.Algorithm = cfg.PasswordAlgorithm
	}
	hasher := passhash.NewHasher(params, cfg.HashConcurrency)
	tokens := token.New([]byte(cfg.JWTSecret), cfg.AccessTTL, cfg.RefreshTTL)
	return &Services{
		Auth:  NewAuthService(repo, hasher, tokens),
		Tasks: NewTasksService(repo),
	}
}

type clock func() time.Time

// Option configures a service.
type Option func(*clock)

// WithClock replaces the clock used to stamp created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(c *clock) { *c = now }
}

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
