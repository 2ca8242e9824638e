package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat turn. Messages are constructed only
// through chat.Store, which is the boundary enforcing this type.

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one stored turn in a user's conversation. Rows are
// immutable once written; the only mutations the store offers are append
// and clear.
type ChatMessage struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"message_metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
