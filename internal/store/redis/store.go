package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Compile-time check to ensure RedisStore implements store.Store
var _ store.Store = (*RedisStore)(nil)

// RedisStore keeps every record as a JSON value:
//
//	user_<id>          -> models.User
//	chat_<id>          -> models.Chat
//	chat_messages_<id> -> []models.Message (ascending, append-only)
//	user_chats_<owner> -> []string of chat IDs
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) UpsertUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	key := userKey(user.ID)

	existing, err := getJSON[models.User](ctx, s.rdb, key)
	switch {
	case err == nil:
		user.CreatedAt = existing.CreatedAt
	case errors.Is(err, redis.Nil):
		user.CreatedAt = now
	default:
		return fmt.Errorf("failed to get user %s: %w", user.ID, err)
	}
	user.LastLoginAt = now

	if err := setJSON(ctx, s.rdb, key, user); err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}

func (s *RedisStore) ListChats(ctx context.Context, ownerID string) ([]models.Chat, error) {
	ids, err := s.ownerChatIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	chats := make([]models.Chat, 0, len(ids))
	for _, id := range ids {
		chat, err := getJSON[models.Chat](ctx, s.rdb, chatKey(id))
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Index entry outlived the chat record; skip it.
				continue
			}
			return nil, fmt.Errorf("failed to get chat %s: %w", id, err)
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func (s *RedisStore) CreateChat(ctx context.Context, ownerID, title string) (*models.Chat, error) {
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

	if err := setJSON(ctx, s.rdb, chatKey(chat.ID), chat); err != nil {
		return nil, fmt.Errorf("failed to save chat %s: %w", chat.ID, err)
	}

	ids, err := s.ownerChatIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids = append(ids, chat.ID)
	if err := setJSON(ctx, s.rdb, ownerChatsKey(ownerID), ids); err != nil {
		return nil, fmt.Errorf("failed to save chat index for owner %s: %w", ownerID, err)
	}

	return chat, nil
}

func (s *RedisStore) DeleteChat(ctx context.Context, chatID string) error {
	chat, err := getJSON[models.Chat](ctx, s.rdb, chatKey(chatID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Already gone; deletion is idempotent.
			return nil
		}
		return fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}

	if err := s.rdb.Del(ctx, chatKey(chatID), messagesKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete chat %s: %w", chatID, err)
	}

	ids, err := s.ownerChatIDs(ctx, chat.OwnerID)
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != chatID {
			remaining = append(remaining, id)
		}
	}
	if err := setJSON(ctx, s.rdb, ownerChatsKey(chat.OwnerID), remaining); err != nil {
		return fmt.Errorf("failed to update chat index for owner %s: %w", chat.OwnerID, err)
	}
	return nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, chatID, role, content string) (*models.Message, error) {
	msg := models.Message{
		ID:        fmt.Sprintf("msg_%s", uuid.NewString()),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	msgs, err := s.chatMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, msg)
	if err := setJSON(ctx, s.rdb, messagesKey(chatID), msgs); err != nil {
		return nil, fmt.Errorf("failed to save messages for chat %s: %w", chatID, err)
	}

	chat, err := getJSON[models.Chat](ctx, s.rdb, chatKey(chatID))
	if err == nil {
		chat.UpdatedAt = msg.Timestamp
		if err := setJSON(ctx, s.rdb, chatKey(chatID), chat); err != nil {
			return nil, fmt.Errorf("failed to bump chat %s: %w", chatID, err)
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}

	return &msg, nil
}

func (s *RedisStore) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	return s.chatMessages(ctx, chatID)
}

func (s *RedisStore) ownerChatIDs(ctx context.Context, ownerID string) ([]string, error) {
	ids, err := getJSON[[]string](ctx, s.rdb, ownerChatsKey(ownerID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get chat index for owner %s: %w", ownerID, err)
	}
	return ids, nil
}

func (s *RedisStore) chatMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	msgs, err := getJSON[[]models.Message](ctx, s.rdb, messagesKey(chatID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Message{}, nil
		}
		return nil, fmt.Errorf("failed to get messages for chat %s: %w", chatID, err)
	}
	return msgs, nil
}

func getJSON[T any](ctx context.Context, rdb *redis.Client, key string) (T, error) {
	var out T
	raw, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return out, nil
}

func setJSON(ctx context.Context, rdb *redis.Client, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return rdb.Set(ctx, key, raw, 0).Err()
}

func userKey(id string) string {
	return fmt.Sprintf("user_%s", id)
}

func chatKey(id string) string {
	return fmt.Sprintf("chat_%s", id)
}

func messagesKey(id string) string {
	return fmt.Sprintf("chat_messages_%s", id)
}

func ownerChatsKey(id string) string {
	return fmt.Sprintf("user_chats_%s", id)
}
