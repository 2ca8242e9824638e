package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"taskchatgo/internal/models"
	"taskchatgo/internal/task"
)

type fakeTasks struct {
	createFn func(ctx context.Context, userID uuid.UUID, in task.CreateInput) (*models.Task, error)
	listFn   func(ctx context.Context, userID uuid.UUID, page, pageSize int) (*task.ListResult, error)
	updateFn func(ctx context.Context, userID, taskID uuid.UUID, in task.UpdateInput) (*models.Task, error)
	deleteFn func(ctx context.Context, userID, taskID uuid.UUID) error
}

func (f *fakeTasks) Create(ctx context.Context, userID uuid.UUID, in task.CreateInput) (*models.Task, error) {
	return f.createFn(ctx, userID, in)
}

func (f *fakeTasks) List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*task.ListResult, error) {
	return f.listFn(ctx, userID, page, pageSize)
}

func (f *fakeTasks) Update(ctx context.Context, userID, taskID uuid.UUID, in task.UpdateInput) (*models.Task, error) {
	return f.updateFn(ctx, userID, taskID, in)
}

func (f *fakeTasks) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	return f.deleteFn(ctx, userID, taskID)
}

func TestDispatchUnknownFunction(t *testing.T) {
	d := NewDispatcher(&fakeTasks{})
	userID := uuid.New()

	for _, rawArgs := range []string{"{}", `{"anything":"goes"}`, ""} {
		res := d.Dispatch(context.Background(), userID, "rename_task", rawArgs)
		if res.Success {
			t.Fatalf("expected failure for unknown function")
		}
		if res.Error != "Unknown function: rename_task" {
			t.Fatalf("unexpected error message: %q", res.Error)
		}
	}
}

func TestDispatchCreateTask(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()
	d := NewDispatcher(&fakeTasks{
		createFn: func(_ context.Context, gotUser uuid.UUID, in task.CreateInput) (*models.Task, error) {
			if gotUser != userID {
				t.Fatalf("wrong user id: %s", gotUser)
			}
			if in.Title != "Buy groceries" {
				t.Fatalf("wrong title: %q", in.Title)
			}
			return &models.Task{ID: taskID, UserID: gotUser, Title: in.Title}, nil
		},
	})

	res := d.Dispatch(context.Background(), userID, opCreateTask, `{"title":"Buy groceries"}`)
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Task == nil || res.Task.ID != taskID.String() || res.Task.Title != "Buy groceries" {
		t.Fatalf("unexpected task projection: %+v", res.Task)
	}
}

func TestDispatchListTasksPostFilter(t *testing.T) {
	userID := uuid.New()
	d := NewDispatcher(&fakeTasks{
		listFn: func(_ context.Context, _ uuid.UUID, page, pageSize int) (*task.ListResult, error) {
			if page != 1 {
				t.Fatalf("expected page 1, got %d", page)
			}
			if pageSize != 20 {
				t.Fatalf("expected page size 20, got %d", pageSize)
			}
			// Collaborator returns 25 tasks, 3 of them completed. The
			// filter runs after pagination.
			items := make([]*models.Task, 0, 25)
			for i := 0; i < 25; i++ {
				items = append(items, &models.Task{
					ID:          uuid.New(),
					Title:       fmt.Sprintf("task %d", i),
					IsCompleted: i < 3,
				})
			}
			return &task.ListResult{Items: items, Total: 25, Page: page, PageSize: pageSize}, nil
		},
	})

	res := d.Dispatch(context.Background(), userID, opListTasks, `{"completed":true,"limit":20}`)
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if len(res.Tasks) != 3 {
		t.Fatalf("expected 3 filtered tasks, got %d", len(res.Tasks))
	}
	if res.Total == nil || *res.Total != 3 {
		t.Fatalf("expected total 3, got %v", res.Total)
	}
}

func TestDispatchListTasksDefaultLimit(t *testing.T) {
	var gotPageSize int
	d := NewDispatcher(&fakeTasks{
		listFn: func(_ context.Context, _ uuid.UUID, _, pageSize int) (*task.ListResult, error) {
			gotPageSize = pageSize
			return &task.ListResult{Items: nil, Page: 1, PageSize: pageSize}, nil
		},
	})
	res := d.Dispatch(context.Background(), uuid.New(), opListTasks, `{}`)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if gotPageSize != 20 {
		t.Fatalf("expected default limit 20, got %d", gotPageSize)
	}
}

func TestDispatchUpdateTaskNotFound(t *testing.T) {
	d := NewDispatcher(&fakeTasks{
		updateFn: func(_ context.Context, _, _ uuid.UUID, _ task.UpdateInput) (*models.Task, error) {
			return nil, task.ErrNotFound
		},
	})
	args := fmt.Sprintf(`{"task_id":%q,"is_completed":true}`, uuid.New())
	res := d.Dispatch(context.Background(), uuid.New(), opUpdateTask, args)
	if res.Success {
		t.Fatalf("expected failure for missing task")
	}
	if res.Error != task.ErrNotFound.Error() {
		t.Fatalf("unexpected error: %q", res.Error)
	}
}

func TestDispatchInvalidTaskID(t *testing.T) {
	d := NewDispatcher(&fakeTasks{})
	for _, op := range []string{opUpdateTask, opDeleteTask} {
		res := d.Dispatch(context.Background(), uuid.New(), op, `{"task_id":"not-a-uuid"}`)
		if res.Success {
			t.Fatalf("%s: expected failure for malformed task_id", op)
		}
		if res.Error == "" {
			t.Fatalf("%s: expected error text", op)
		}
	}
}

func TestDispatchDeleteTask(t *testing.T) {
	taskID := uuid.New()
	var deleted uuid.UUID
	d := NewDispatcher(&fakeTasks{
		deleteFn: func(_ context.Context, _, id uuid.UUID) error {
			deleted = id
			return nil
		},
	})
	res := d.Dispatch(context.Background(), uuid.New(), opDeleteTask, fmt.Sprintf(`{"task_id":%q}`, taskID))
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if res.Message != "Task deleted successfully" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if deleted != taskID {
		t.Fatalf("deleted wrong task: %s", deleted)
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	d := NewDispatcher(&fakeTasks{})
	res := d.Dispatch(context.Background(), uuid.New(), opCreateTask, `{"title":`)
	if res.Success {
		t.Fatalf("expected failure for malformed JSON arguments")
	}
}
