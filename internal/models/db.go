package models

import (
	"time"
)

// Message roles. The streaming path only ever writes these two; "system"
// prompts exist transiently inside the provider request and are never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents an authenticated user. Identity comes from the Google
// OAuth payload (the `sub` claim), so IDs are opaque strings, not UUIDs.
type User struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	Picture     string    `json:"picture,omitempty" db:"picture"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	LastLoginAt time.Time `json:"lastLoginAt" db:"last_login_at"`
}

// Chat is a single conversation. UpdatedAt is the sort key for the chat
// list (descending, most recently active first) and is bumped whenever a
// message is appended.
type Chat struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"userId" db:"owner_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Message is one entry in a chat. Messages are immutable once written; the
// assistant message is only ever persisted after its stream has finished.
type Message struct {
	ID        string    `json:"id" db:"id"`
	ChatID    string    `json:"chatId" db:"chat_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
