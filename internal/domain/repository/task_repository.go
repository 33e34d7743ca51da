package repository

import (
	"context"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
)

// TaskRepository stores tasks. Every read and write is scoped by the owning user id.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	ListByUser(ctx context.Context, userID string) ([]entity.Task, error)
	GetByID(ctx context.Context, userID, id string) (*entity.Task, error)
	Toggle(ctx context.Context, userID, id string) (*entity.Task, error)
	Delete(ctx context.Context, userID, id string) error
}
