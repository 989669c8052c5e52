package store

import (
	"context"

	"chatstream-backend/internal/models"
)

// DefaultChatTitle is used when a chat is created without a title.
const DefaultChatTitle = "New conversation"

// Store defines the interface for persistence operations.
// This allows for mocking in tests and switching between backends
// (Postgres, Redis, in-memory).
//
// Contract notes:
//   - ListChats does not guarantee order; callers re-sort by UpdatedAt.
//   - ListMessages returns messages ascending by Timestamp.
//   - AppendMessage generates the message ID and Timestamp and bumps the
//     parent chat's UpdatedAt to the same instant.
//   - DeleteChat cascades to the chat's messages and is idempotent:
//     deleting a nonexistent chat is not an error.
type Store interface {
	UpsertUser(ctx context.Context, user *models.User) error

	ListChats(ctx context.Context, ownerID string) ([]models.Chat, error)
	CreateChat(ctx context.Context, ownerID, title string) (*models.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error

	AppendMessage(ctx context.Context, chatID, role, content string) (*models.Message, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
}
