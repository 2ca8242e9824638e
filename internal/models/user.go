package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns tasks and a chat history.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
