package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum number of characters in a trimmed task title.
const MaxTitleLength = 255

var (
	ErrTitleEmpty   = errors.New("title cannot be empty")
	ErrTitleTooLong = errors.New("title cannot be longer than 255 characters")
	ErrInvalidID    = errors.New("invalid identifier")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser builds a user with a fresh identifier. The stored row returned by
// the repository is authoritative for timestamps.
func NewUser(email, passwordHash string, now time.Time) User {
	return User{
		ID:           NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Title is a task title that has passed validation. The zero value is not valid.
type Title string

// NewTitle trims s and checks it is non-empty and at most MaxTitleLength characters.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrTitleEmpty
	}
	if utf8.RuneCountInString(s) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return Title(s), nil
}

func (t Title) String() string { return string(t) }

// NewID returns a random identifier.
func NewID() string { return uuid.NewString() }

// ParseID validates s as an identifier and returns it in canonical form.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Title       Title     `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask builds an incomplete task owned by ownerID.
func NewTask(ownerID string, title Title, description *string, now time.Time) Task {
	return Task{
		ID:          NewID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TaskPatch carries a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Apply merges the patch into t and stamps UpdatedAt. The title is validated
// before anything is modified, so on error t is left untouched.
func (p TaskPatch) Apply(t *Task, now time.Time) error {
	if p.Title != nil {
		title, err := NewTitle(*p.Title)
		if err != nil {
			return err
		}
		t.Title = title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = now
	return nil
}

type TaskPage struct {
	Todos   []Task `json:"todos"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}
