package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"taskchatgo/internal/models"
	"taskchatgo/internal/task"
)

// TaskService is the task CRUD collaborator the dispatcher calls into.
// *task.Service satisfies it.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, in task.CreateInput) (*models.Task, error)
	List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*task.ListResult, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, in task.UpdateInput) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

// TaskView is the normalized task projection embedded in function results.
type TaskView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsCompleted bool   `json:"is_completed"`
}

// Result is the uniform outcome of one dispatched function call. It is
// data, never an error: collaborator failures are folded into the Error
// field at this boundary and the conversation continues.
type Result struct {
	Success bool       `json:"success"`
	Task    *TaskView  `json:"task,omitempty"`
	Tasks   []TaskView `json:"tasks,omitempty"`
	Total   *int       `json:"total,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Dispatcher translates model-issued function calls into task service
// calls.
type Dispatcher struct {
	tasks TaskService
}

// NewDispatcher builds a dispatcher over the task collaborator.
func NewDispatcher(tasks TaskService) *Dispatcher {
	return &Dispatcher{tasks: tasks}
}

const defaultListLimit = 20

type createArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type listArgs struct {
	Completed *bool `json:"completed"`
	Limit     int   `json:"limit"`
}

type updateArgs struct {
	TaskID      string  `json:"task_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

type deleteArgs struct {
	TaskID string `json:"task_id"`
}

// Dispatch executes one function call named by the model. rawArgs is the
// JSON-encoded argument string exactly as the model produced it.
func (d *Dispatcher) Dispatch(ctx context.Context, userID uuid.UUID, name, rawArgs string) *Result {
	var res *Result
	switch name {
	case opCreateTask:
		res = d.createTask(ctx, userID, rawArgs)
	case opListTasks:
		res = d.listTasks(ctx, userID, rawArgs)
	case opUpdateTask:
		res = d.updateTask(ctx, userID, rawArgs)
	case opDeleteTask:
		res = d.deleteTask(ctx, userID, rawArgs)
	default:
		res = &Result{Success: false, Error: fmt.Sprintf("Unknown function: %s", name)}
	}
	if !res.Success {
		log.Printf("dispatch %s for user %s failed: %s", name, userID, res.Error)
	}
	return res
}

func (d *Dispatcher) createTask(ctx context.Context, userID uuid.UUID, rawArgs string) *Result {
	var args createArgs
	if err := sonic.UnmarshalString(rawArgs, &args); err != nil {
		return failure(fmt.Errorf("parse arguments: %w", err))
	}
	t, err := d.tasks.Create(ctx, userID, task.CreateInput{
		Title:       args.Title,
		Description: args.Description,
	})
	if err != nil {
		return failure(err)
	}
	return &Result{Success: true, Task: viewOf(t)}
}

func (d *Dispatcher) listTasks(ctx context.Context, userID uuid.UUID, rawArgs string) *Result {
	var args listArgs
	if rawArgs != "" {
		if err := sonic.UnmarshalString(rawArgs, &args); err != nil {
			return failure(fmt.Errorf("parse arguments: %w", err))
		}
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	page, err := d.tasks.List(ctx, userID, 1, limit)
	if err != nil {
		return failure(err)
	}
	// The completed filter runs over the fetched page, not in storage; a
	// filtered page can therefore hold fewer than limit matches even when
	// more exist.
	views := make([]TaskView, 0, len(page.Items))
	for _, t := range page.Items {
		if args.Completed != nil && t.IsCompleted != *args.Completed {
			continue
		}
		views = append(views, *viewOf(t))
	}
	total := len(views)
	return &Result{Success: true, Tasks: views, Total: &total}
}

func (d *Dispatcher) updateTask(ctx context.Context, userID uuid.UUID, rawArgs string) *Result {
	var args updateArgs
	if err := sonic.UnmarshalString(rawArgs, &args); err != nil {
		return failure(fmt.Errorf("parse arguments: %w", err))
	}
	taskID, err := uuid.Parse(args.TaskID)
	if err != nil {
		return failure(fmt.Errorf("invalid task_id: %w", err))
	}
	t, err := d.tasks.Update(ctx, userID, taskID, task.UpdateInput{
		Title:       args.Title,
		Description: args.Description,
		IsCompleted: args.IsCompleted,
	})
	if err != nil {
		return failure(err)
	}
	return &Result{Success: true, Task: viewOf(t)}
}

func (d *Dispatcher) deleteTask(ctx context.Context, userID uuid.UUID, rawArgs string) *Result {
	var args deleteArgs
	if err := sonic.UnmarshalString(rawArgs, &args); err != nil {
		return failure(fmt.Errorf("parse arguments: %w", err))
	}
	taskID, err := uuid.Parse(args.TaskID)
	if err != nil {
		return failure(fmt.Errorf("invalid task_id: %w", err))
	}
	if err := d.tasks.Delete(ctx, userID, taskID); err != nil {
		return failure(err)
	}
	return &Result{Success: true, Message: "Task deleted successfully"}
}

func failure(err error) *Result {
	return &Result{Success: false, Error: err.Error()}
}

func viewOf(t *models.Task) *TaskView {
	return &TaskView{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
	}
}
