package services

import (
	"context"
	"fmt"
	"sort"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/store"
)

// ChatService handles chat CRUD business logic.
type ChatService struct {
	store store.Store
}

func NewChatService(store store.Store) *ChatService {
	return &ChatService{store: store}
}

// ListChats returns the caller's chats, most recently active first. The
// store does not guarantee order, so the sort happens here.
func (s *ChatService) ListChats(ctx context.Context, ownerID string) (*models.ListChatsResponse, error) {
	chats, err := s.store.ListChats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats from store: %w", err)
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})

	return &models.ListChatsResponse{Chats: chats}, nil
}

// CreateChat creates a new chat for the caller. An empty title gets the
// store's default placeholder.
func (s *ChatService) CreateChat(ctx context.Context, ownerID, title string) (*models.Chat, error) {
	chat, err := s.store.CreateChat(ctx, ownerID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat in store: %w", err)
	}
	return chat, nil
}

// DeleteChat removes a chat and its messages. Unknown IDs are a no-op.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	if err := s.store.DeleteChat(ctx, chatID); err != nil {
		return fmt.Errorf("failed to delete chat from store: %w", err)
	}
	return nil
}

// ListMessages returns a chat's messages in ascending timestamp order.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) (*models.ListMessagesResponse, error) {
	msgs, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages from store: %w", err)
	}
	return &models.ListMessagesResponse{Messages: msgs}, nil
}
