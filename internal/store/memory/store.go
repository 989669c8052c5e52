package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/store"

	"github.com/google/uuid"
)

// Compile-time check to ensure MemoryStore implements store.Store
var _ store.Store = (*MemoryStore)(nil)

// MemoryStore is the default persistence backend when neither Postgres nor
// Redis is configured. Everything lives in process memory and is lost on
// restart, which is acceptable for the development/degraded mode it serves.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	chats    map[string]*models.Chat
	messages map[string][]models.Message // keyed by chat ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		chats:    make(map[string]*models.Chat),
		messages: make(map[string][]models.Message),
	}
}

func (s *MemoryStore) UpsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = now
	}
	user.LastLoginAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) ListChats(_ context.Context, ownerID string) ([]models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chats := make([]models.Chat, 0)
	for _, chat := range s.chats {
		if chat.OwnerID == ownerID {
			chats = append(chats, *chat)
		}
	}
	return chats, nil
}

func (s *MemoryStore) CreateChat(_ context.Context, ownerID, title string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title == "" {
		title = store.DefaultChatTitle
	}
	now := time.Now().UTC()
	chat := &models.Chat{
		ID:        fmt.Sprintf("chat_%s", uuid.NewString()),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.chats[chat.ID] = chat

	copied := *chat
	return &copied, nil
}

func (s *MemoryStore) DeleteChat(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Unknown IDs are a no-op, not an error.
	delete(s.chats, chatID)
	delete(s.messages, chatID)
	return nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, chatID, role, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.Message{
		ID:        fmt.Sprintf("msg_%s", uuid.NewString()),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.messages[chatID] = append(s.messages[chatID], msg)

	if chat, ok := s.chats[chatID]; ok {
		chat.UpdatedAt = msg.Timestamp
	}
	return &msg, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]models.Message, len(s.messages[chatID]))
	copy(msgs, s.messages[chatID])

	// Append order already matches timestamp order; the stable sort keeps
	// messages written within the same clock tick in insertion order.
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}
