package memory

import (
	"context"
	"testing"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChatDefaults(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	chat, err := s.CreateChat(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, store.DefaultChatTitle, chat.Title)
	assert.Equal(t, "user-1", chat.OwnerID)
	assert.NotEmpty(t, chat.ID)
	assert.False(t, chat.UpdatedAt.IsZero())

	named, err := s.CreateChat(ctx, "user-1", "Trip planning")
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", named.Title)
	assert.NotEqual(t, chat.ID, named.ID)
}

func TestListChatsFiltersByOwner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.CreateChat(ctx, "user-1", "mine")
	require.NoError(t, err)
	_, err = s.CreateChat(ctx, "user-2", "theirs")
	require.NoError(t, err)

	chats, err := s.ListChats(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "mine", chats[0].Title)
}

func TestAppendMessageBumpsUpdatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	chat, err := s.CreateChat(ctx, "user-1", "")
	require.NoError(t, err)

	msg, err := s.AppendMessage(ctx, chat.ID, models.RoleUser, "hello")
	require.NoError(t, err)
	assert.Equal(t, chat.ID, msg.ChatID)
	assert.NotEmpty(t, msg.ID)

	chats, err := s.ListChats(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, msg.Timestamp, chats[0].UpdatedAt)
	assert.False(t, chats[0].UpdatedAt.Before(chat.UpdatedAt))
}

func TestListMessagesAscendingOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	chat, err := s.CreateChat(ctx, "user-1", "")
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, chat.ID, models.RoleUser, "hello")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, chat.ID, models.RoleAssistant, "Hi there")
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.False(t, msgs[1].Timestamp.Before(msgs[0].Timestamp))
}

func TestDeleteChatCascadesAndIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	chat, err := s.CreateChat(ctx, "user-1", "")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, chat.ID, models.RoleUser, "hello")
	require.NoError(t, err)

	require.NoError(t, s.DeleteChat(ctx, chat.ID))

	chats, err := s.ListChats(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, chats)

	msgs, err := s.ListMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// Second delete, and deleting an ID that never existed, are no-ops.
	require.NoError(t, s.DeleteChat(ctx, chat.ID))
	require.NoError(t, s.DeleteChat(ctx, "no-such-chat"))
}

func TestUpsertUserKeepsCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := &models.User{ID: "u1", Email: "a@example.com", Name: "A"}
	require.NoError(t, s.UpsertUser(ctx, first))
	created := first.CreatedAt
	require.False(t, created.IsZero())

	second := &models.User{ID: "u1", Email: "a@example.com", Name: "A renamed"}
	require.NoError(t, s.UpsertUser(ctx, second))
	assert.Equal(t, created, second.CreatedAt)
	assert.False(t, second.LastLoginAt.Before(created))
}
