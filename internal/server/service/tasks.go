package service

import (
	"context"
	"errors"
	"math"

	"todoapi/internal/server/repository"
	"todoapi/internal/shared/models"
)

// Pagination bounds for List.
const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// TasksService implements owner-scoped CRUD over tasks. A task that belongs
// to another user is reported exactly like one that does not exist.
type TasksService struct {
	store TaskStore
	clock clock
}

func NewTasksService(store TaskStore, opts ...Option) *TasksService {
	s := &TasksService{store: store}
	for _, o := range opts {
		o(&s.clock)
	}
	return s
}

func (s *TasksService) Create(ctx context.Context, ownerID, title string, description *string) (models.Task, error) {
	t, err := models.NewTitle(title)
	if err != nil {
		return models.Task{}, validationError(err)
	}
	created, err := s.store.CreateTask(ctx, models.NewTask(ownerID, t, description, s.clock.now()))
	if err != nil {
		return models.Task{}, storageError("create todo", err)
	}
	return created, nil
}

func (s *TasksService) Get(ctx context.Context, ownerID, id string) (models.Task, error) {
	t, err := s.find(ctx, ownerID, id)
	if err != nil {
		return models.Task{}, err
	}
	return *t, nil
}

// PageQuery is a requested page window; nil fields were not supplied.
type PageQuery struct {
	Page    *int
	PerPage *int
}

// Normalize applies defaults and bounds: page defaults to 1 and is floored
// at 1, per_page defaults to 20 and is clamped to [1, 100].
func (q PageQuery) Normalize() (page, perPage int) {
	page, perPage = DefaultPage, DefaultPerPage
	if q.Page != nil {
		page = max(*q.Page, 1)
	}
	if q.PerPage != nil {
		perPage = min(max(*q.PerPage, 1), MaxPerPage)
	}
	return page, perPage
}

func (s *TasksService) List(ctx context.Context, ownerID string, q PageQuery) (models.TaskPage, error) {
	page, perPage := q.Normalize()
	var tasks []models.Task
	// A window starting past math.MaxInt is empty; skip the store.
	if page-1 <= math.MaxInt/perPage {
		var err error
		tasks, err = s.store.ListTasks(ctx, ownerID, perPage, (page-1)*perPage)
		if err != nil {
			return models.TaskPage{}, storageError("list todos", err)
		}
	}
	total, err := s.store.CountTasks(ctx, ownerID)
	if err != nil {
		return models.TaskPage{}, storageError("count todos", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return models.TaskPage{Todos: tasks, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *TasksService) Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (models.Task, error) {
	t, err := s.find(ctx, ownerID, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := patch.Apply(t, s.clock.now()); err != nil {
		return models.Task{}, validationError(err)
	}
	updated, err := s.store.UpdateTask(ctx, *t)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Task{}, errTaskNotFound
	}
	if err != nil {
		return models.Task{}, storageError("update todo", err)
	}
	return updated, nil
}

func (s *TasksService) Delete(ctx context.Context, ownerID, id string) error {
	t, err := s.find(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, t.ID, ownerID); err != nil {
		return storageError("delete todo", err)
	}
	return nil
}

// find loads a task by id and owner. Malformed ids never reach the store.
func (s *TasksService) find(ctx context.Context, ownerID, id string) (*models.Task, error) {
	id, err := models.ParseID(id)
	if err != nil {
		return nil, errTaskNotFound
	}
	t, err := s.store.FindTask(ctx, id, ownerID)
	if err != nil {
		return nil, storageError("find todo", err)
	}
	if t == nil {
		return nil, errTaskNotFound
	}
	return t, nil
}
