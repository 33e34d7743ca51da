package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
)

const (
	minTaskTextLen    = 3
	defaultSearchSize = 20
	maxSearchSize     = 50
)

// TaskSearcher mirrors tasks into a search index. Index failures never fail the write.
type TaskSearcher interface {
	Index(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, userID, q string, size int) ([]entity.Task, error)
}

type CreateTaskInput struct {
	Text     string
	Priority string
	DueDate  string
}

type TaskService struct {
	Repo   repository.TaskRepository
	Search TaskSearcher // optional
	Logger logrus.FieldLogger
}

func NewTaskService(repo repository.TaskRepository, search TaskSearcher, logger logrus.FieldLogger) *TaskService {
	return &TaskService{Repo: repo, Search: search, Logger: logger}
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]entity.Task, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*entity.Task, error) {
	if !validID(id) {
		return nil, ErrTaskNotFound
	}
	t, err := s.Repo.GetByID(ctx, userID, id)
	return t, notFound(err)
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*entity.Task, error) {
	text := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(text) < minTaskTextLen {
		return nil, invalid("task text too short", map[string]string{"text": "must be at least 3 characters long"})
	}
	due := strings.TrimSpace(in.DueDate)
	if due != "" {
		d, ok := parseDueDate(due)
		if !ok {
			return nil, invalid("invalid due date format", map[string]string{"dueDate": "must be a date"})
		}
		if d.Year() < 2000 || d.Year() > 2100 {
			return nil, invalid("invalid due date", map[string]string{"dueDate": "year must be between 2000 and 2100"})
		}
	}

	t := &entity.Task{
		UserID:   userID,
		Text:     text,
		Priority: strings.TrimSpace(in.Priority),
		DueDate:  due,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.index(ctx, t)
	return t, nil
}

// Toggle flips the completion flag in a single store write.
func (s *TaskService) Toggle(ctx context.Context, userID, id string) (*entity.Task, error) {
	if !validID(id) {
		return nil, ErrTaskNotFound
	}
	t, err := s.Repo.Toggle(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	s.index(ctx, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return ErrTaskNotFound
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return notFound(err)
	}
	if s.Search != nil {
		if err := s.Search.Delete(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("task_id", id).Warn("task index delete failed")
		}
	}
	return nil
}

// SearchTasks matches q against the user's task text. Without a search index,
// or when the index is unreachable, it filters the user's tasks in process.
func (s *TaskService) SearchTasks(ctx context.Context, userID, q string, size int) ([]entity.Task, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("search query is required", map[string]string{"q": "is required"})
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	if s.Search != nil {
		res, err := s.Search.Search(ctx, userID, q, size)
		if err == nil {
			return res, nil
		}
		s.Logger.WithError(err).Warn("task search index unavailable, falling back to store")
	}

	all, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	out := make([]entity.Task, 0)
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			out = append(out, t)
			if len(out) == size {
				break
			}
		}
	}
	return out, nil
}

func (s *TaskService) index(ctx context.Context, t *entity.Task) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, t); err != nil {
		s.Logger.WithError(err).WithField("task_id", t.ID).Warn("task index failed")
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
