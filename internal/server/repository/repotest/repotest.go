// Package repotest is a contract suite shared by every repository backend.
package repotest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"todoapi/internal/server/repository"
	"todoapi/internal/server/service"
	"todoapi/internal/shared/models"
)

// Factory returns an empty repository for a single subtest.
type Factory func(t *testing.T) service.Repository

// Run exercises the owner-scoping and ordering contract against newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newRepo(t)) })
	t.Run("TaskOwnership", func(t *testing.T) { testTaskOwnership(t, newRepo(t)) })
	t.Run("TaskPagination", func(t *testing.T) { testTaskPagination(t, newRepo(t)) })
	t.Run("TaskUpdate", func(t *testing.T) { testTaskUpdate(t, newRepo(t)) })
	t.Run("TaskDelete", func(t *testing.T) { testTaskDelete(t, newRepo(t)) })
}

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, repo service.Repository, email string) models.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), models.NewUser(email+"-"+models.NewID(), "digest", base))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustTask(t *testing.T, repo service.Repository, ownerID, title string, at time.Time) models.Task {
	t.Helper()
	task, err := repo.CreateTask(context.Background(), models.NewTask(ownerID, models.Title(title), nil, at))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func testUsers(t *testing.T, repo service.Repository) {
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, models.NewUser("u-"+models.NewID()+"@example.com", "digest", base))
	if err != nil {
		t.Fatal(err)
	}
	byEmail, err := repo.FindUserByEmail(ctx, u.Email)
	if err != nil || byEmail == nil || byEmail.ID != u.ID || byEmail.PasswordHash != "digest" {
		t.Fatalf("find by email: %v %+v", err, byEmail)
	}
	byID, err := repo.FindUserByID(ctx, u.ID)
	if err != nil || byID == nil || byID.Email != u.Email {
		t.Fatalf("find by id: %v %+v", err, byID)
	}
	if !byID.CreatedAt.Equal(base) {
		t.Fatalf("created_at = %v, want %v", byID.CreatedAt, base)
	}

	missing, err := repo.FindUserByEmail(ctx, "nobody-"+models.NewID()+"@example.com")
	if err != nil || missing != nil {
		t.Fatalf("absent email must be (nil, nil), got %+v %v", missing, err)
	}
	missing, err = repo.FindUserByID(ctx, models.NewID())
	if err != nil || missing != nil {
		t.Fatalf("absent id must be (nil, nil), got %+v %v", missing, err)
	}

	dup := models.NewUser(u.Email, "other", base)
	if _, err := repo.CreateUser(ctx, dup); err == nil {
		t.Fatalf("duplicate email must be rejected by the store")
	}
}

func testTaskOwnership(t *testing.T, repo service.Repository) {
	ctx := context.Background()
	alice := mustUser(t, repo, "alice")
	bob := mustUser(t, repo, "bob")
	desc := "details"
	created, err := repo.CreateTask(ctx, models.NewTask(alice.ID, "write report", &desc, base))
	if err != nil {
		t.Fatal(err)
	}
	if created.Completed || created.Description == nil || *created.Description != desc {
		t.Fatalf("unexpected stored task: %+v", created)
	}

	got, err := repo.FindTask(ctx, created.ID, alice.ID)
	if err != nil || got == nil || got.Title != "write report" || got.OwnerID != alice.ID {
		t.Fatalf("owner lookup: %v %+v", err, got)
	}
	got, err = repo.FindTask(ctx, created.ID, bob.ID)
	if err != nil || got != nil {
		t.Fatalf("foreign lookup must be (nil, nil), got %+v %v", got, err)
	}
	if n, err := repo.CountTasks(ctx, bob.ID); err != nil || n != 0 {
		t.Fatalf("bob count = %d %v", n, err)
	}
	list, err := repo.ListTasks(ctx, bob.ID, 10, 0)
	if err != nil || len(list) != 0 {
		t.Fatalf("bob list = %d %v", len(list), err)
	}

	bobsCopy := created
	bobsCopy.OwnerID = bob.ID
	bobsCopy.Title = "hijacked"
	if _, err := repo.UpdateTask(ctx, bobsCopy); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign update must be ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTask(ctx, created.ID, bob.ID); err != nil {
		t.Fatalf("foreign delete: %v", err)
	}
	got, _ = repo.FindTask(ctx, created.ID, alice.ID)
	if got == nil || got.Title != "write report" {
		t.Fatalf("foreign writes must not touch alice's task: %+v", got)
	}
}

func testTaskPagination(t *testing.T, repo service.Repository) {
	ctx := context.Background()
	owner := mustUser(t, repo, "pager")
	other := mustUser(t, repo, "other")
	mustTask(t, repo, other.ID, "noise", base)
	var ids []string
	for i := 0; i < 5; i++ {
		task := mustTask(t, repo, owner.ID, "task", base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, task.ID)
	}

	total, err := repo.CountTasks(ctx, owner.ID)
	if err != nil || total != 5 {
		t.Fatalf("count = %d %v", total, err)
	}
	page, err := repo.ListTasks(ctx, owner.ID, 2, 0)
	if err != nil || len(page) != 2 {
		t.Fatalf("page 1: %d %v", len(page), err)
	}
	if page[0].ID != ids[4] || page[1].ID != ids[3] {
		t.Fatalf("page 1 must be newest first")
	}
	page, err = repo.ListTasks(ctx, owner.ID, 2, 4)
	if err != nil || len(page) != 1 || page[0].ID != ids[0] {
		t.Fatalf("page 3: %d %v", len(page), err)
	}
	page, err = repo.ListTasks(ctx, owner.ID, 2, 10)
	if err != nil || len(page) != 0 {
		t.Fatalf("past the end: %d %v", len(page), err)
	}
	page, err = repo.ListTasks(ctx, owner.ID, 100, math.MaxInt-50)
	if err != nil || len(page) != 0 {
		t.Fatalf("offset near the int limit: %d %v", len(page), err)
	}
}

func testTaskUpdate(t *testing.T, repo service.Repository) {
	ctx := context.Background()
	owner := mustUser(t, repo, "updater")
	task := mustTask(t, repo, owner.ID, "draft", base)

	desc := "now with notes"
	task.Title = "final"
	task.Description = &desc
	task.Completed = true
	task.UpdatedAt = base.Add(time.Hour)
	updated, err := repo.UpdateTask(ctx, task)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "final" || !updated.Completed || updated.Description == nil || *updated.Description != desc {
		t.Fatalf("update not applied: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(base.Add(time.Hour)) || !updated.CreatedAt.Equal(base) {
		t.Fatalf("timestamps: created %v updated %v", updated.CreatedAt, updated.UpdatedAt)
	}

	task.ID = models.NewID()
	if _, err := repo.UpdateTask(ctx, task); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing row must be ErrNotFound, got %v", err)
	}
}

func testTaskDelete(t *testing.T, repo service.Repository) {
	ctx := context.Background()
	owner := mustUser(t, repo, "deleter")
	keep := mustTask(t, repo, owner.ID, "keep", base)
	drop := mustTask(t, repo, owner.ID, "drop", base.Add(time.Second))

	if err := repo.DeleteTask(ctx, drop.ID, owner.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.FindTask(ctx, drop.ID, owner.ID); got != nil {
		t.Fatalf("deleted task still visible")
	}
	if got, _ := repo.FindTask(ctx, keep.ID, owner.ID); got == nil {
		t.Fatalf("delete removed the wrong row")
	}
	if n, _ := repo.CountTasks(ctx, owner.ID); n != 1 {
		t.Fatalf("count after delete = %d", n)
	}
}
