package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
)

const taskColumns = `id, user_id, text, completed, priority, due_date, created_at, updated_at`

type TaskRepository struct {
	db DB
}

func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row, t *entity.Task) error {
	return row.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (user_id, text, completed, priority, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.Text, t.Completed, t.Priority, t.DueDate)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		var t entity.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*entity.Task, error) {
	t := &entity.Task{}
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err := scanTask(row, t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Toggle(ctx context.Context, userID, id string) (*entity.Task, error) {
	t := &entity.Task{}
	row := r.db.QueryRow(ctx, `
		UPDATE tasks
		SET completed = NOT completed, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns, id, userID)
	if err := scanTask(row, t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("toggle task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
