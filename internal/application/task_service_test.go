package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/infrastructure/memory"
)

type fakeSearcher struct {
	indexed []string
	deleted []string
	hits    []entity.Task
	err     error
}

func (f *fakeSearcher) Index(_ context.Context, t *entity.Task) error {
	f.indexed = append(f.indexed, t.ID)
	return f.err
}

func (f *fakeSearcher) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeSearcher) Search(context.Context, string, string, int) ([]entity.Task, error) {
	return f.hits, f.err
}

func newTaskService(search TaskSearcher) *TaskService {
	logger, _ := test.NewNullLogger()
	return NewTaskService(memory.NewTaskRepository(), search, logger)
}

func TestTaskService_CreateValidation(t *testing.T) {
	svc := newTaskService(nil)
	ctx := context.Background()

	cases := map[string]CreateTaskInput{
		"short text":     {Text: "  ab "},
		"bad date":       {Text: "valid", DueDate: "someday"},
		"year too early": {Text: "valid", DueDate: "1999-12-31"},
		"year too late":  {Text: "valid", DueDate: "2101-01-01"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u1", in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	task, err := svc.Create(ctx, "u1", CreateTaskInput{Text: "  buy milk ", Priority: "high", DueDate: "2026-05-01"})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Text)
	assert.Equal(t, "u1", task.UserID)
	assert.False(t, task.Completed)
}

func TestTaskService_ScopedByOwner(t *testing.T) {
	search := &fakeSearcher{}
	svc := newTaskService(search)
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", CreateTaskInput{Text: "write report"})
	require.NoError(t, err)
	assert.Equal(t, []string{task.ID}, search.indexed)

	_, err = svc.Get(ctx, "u2", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.Toggle(ctx, "u2", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", task.ID), ErrTaskNotFound)

	toggled, err := svc.Toggle(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	toggled, err = svc.Toggle(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	require.NoError(t, svc.Delete(ctx, "u1", task.ID))
	assert.Equal(t, []string{task.ID}, search.deleted)
	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskService_NonUUIDIsNotFound(t *testing.T) {
	svc := newTaskService(nil)
	_, err := svc.Get(context.Background(), "u1", "not-an-id")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "u1", "123"), ErrTaskNotFound)
}

func TestTaskService_SearchFallsBackToStore(t *testing.T) {
	search := &fakeSearcher{err: errors.New("es down")}
	svc := newTaskService(search)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreateTaskInput{Text: "Buy Milk"})
	require.NoError(t, err, "index failure does not fail the write")
	_, _ = svc.Create(ctx, "u1", CreateTaskInput{Text: "walk dog"})
	_, _ = svc.Create(ctx, "u2", CreateTaskInput{Text: "milk the cow"})

	res, err := svc.SearchTasks(ctx, "u1", "milk", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Buy Milk", res[0].Text)

	_, err = svc.SearchTasks(ctx, "u1", "  ", 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTaskService_SearchUsesIndex(t *testing.T) {
	hit := entity.Task{ID: uuid.NewString(), UserID: "u1", Text: "from index"}
	svc := newTaskService(&fakeSearcher{hits: []entity.Task{hit}})

	res, err := svc.SearchTasks(context.Background(), "u1", "index", 5)
	require.NoError(t, err)
	assert.Equal(t, []entity.Task{hit}, res)
}
