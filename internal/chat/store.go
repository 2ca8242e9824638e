package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"taskchatgo/internal/models"
)

// Store is the durable, append-only log of chat turns. Rows are never
// updated; the only mutations are Append and Clear.
type Store struct {
	db *sql.DB
}

// NewStore builds a message store over the shared database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append persists one message and returns the stored record. Metadata is
// optional and only ever attached to assistant turns that dispatched a
// function.
func (s *Store) Append(ctx context.Context, userID uuid.UUID, role models.Role, content string, metadata map[string]any) (*models.ChatMessage, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user_id is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("content cannot be empty")
	}

	msg := &models.ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	var metaCol sql.NullString
	if len(metadata) > 0 {
		encoded, err := sonic.MarshalString(metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		metaCol = sql.NullString{String: encoded, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, message_metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID.String(), msg.UserID.String(), string(msg.Role), msg.Content, metaCol, msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// Recent returns up to limit of the user's most recent messages in
// chronological ascending order.
func (s *Store) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, message_metadata, created_at
		 FROM chat_messages WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var (
			m       models.ChatMessage
			id      string
			owner   string
			role    string
			metaCol sql.NullString
		)
		if err := rows.Scan(&id, &owner, &role, &m.Content, &metaCol, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse message id: %w", err)
		}
		if m.UserID, err = uuid.Parse(owner); err != nil {
			return nil, fmt.Errorf("parse message user id: %w", err)
		}
		m.Role = models.Role(role)
		if metaCol.Valid && metaCol.String != "" {
			if err := sonic.UnmarshalString(metaCol.String, &m.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	// Query is newest-first; callers always see oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Clear deletes every message belonging to the user and reports how many
// rows were removed. A concurrent Append can land after the delete; that
// race is accepted for this single-user interactive workload.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE user_id = ?`, userID.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("clear messages: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear rows affected: %w", err)
	}
	return count, nil
}
