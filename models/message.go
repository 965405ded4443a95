package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // 'user' または 'assistant'
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
