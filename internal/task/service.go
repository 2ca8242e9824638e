package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskchatgo/internal/models"
)

// ErrNotFound is returned when a task does not exist or belongs to another user.
var ErrNotFound = errors.New("task not found")

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxTitleLen     = 200
)

// CreateInput carries the fields accepted when creating a task.
type CreateInput struct {
	Title       string
	Description string
}

// UpdateInput carries the optional fields of a task update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// ListResult is one page of a user's tasks.
type ListResult struct {
	Items    []*models.Task `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Service provides task CRUD over the relational store.
type Service struct {
	db *sql.DB
}

// NewService builds a task service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Create inserts a new task for the user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.New("title is required")
	}
	if len(title) > maxTitleLen {
		return nil, fmt.Errorf("title must be at most %d characters", maxTitleLen)
	}
	now := time.Now().UTC()
	t := &models.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, is_completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.UserID.String(), t.Title, t.Description, t.IsCompleted, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// List returns one page of the user's tasks, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*ListResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = ?`, userID.String(),
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, is_completed, created_at, updated_at
		 FROM tasks WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID.String(), pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Task, 0, pageSize)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return &ListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get returns a single task owned by the user.
func (s *Service) Get(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, is_completed, created_at, updated_at
		 FROM tasks WHERE id = ? AND user_id = ?`,
		taskID.String(), userID.String(),
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update applies the supplied fields to an existing task.
func (s *Service) Update(ctx context.Context, userID, taskID uuid.UUID, in UpdateInput) (*models.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errors.New("title cannot be empty")
		}
		if len(title) > maxTitleLen {
			return nil, fmt.Errorf("title must be at most %d characters", maxTitleLen)
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsCompleted != nil {
		t.IsCompleted = *in.IsCompleted
	}
	t.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, is_completed = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, t.IsCompleted, t.UpdatedAt, taskID.String(), userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("task rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return t, nil
}

// Delete removes a task owned by the user.
func (s *Service) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		taskID.String(), userID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t      models.Task
		id     string
		userID string
	)
	if err := row.Scan(&id, &userID, &t.Title, &t.Description, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	parsedUser, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse task user id: %w", err)
	}
	t.ID = parsedID
	t.UserID = parsedUser
	return &t, nil
}
