package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
)

type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]entity.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]entity.Task)}
}

func (r *TaskRepository) Create(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) ListByUser(_ context.Context, userID string) ([]entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Task, 0)
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TaskRepository) GetByID(_ context.Context, userID, id string) (*entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TaskRepository) Toggle(_ context.Context, userID, id string) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
	r.tasks[id] = t
	return &t, nil
}

func (r *TaskRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
