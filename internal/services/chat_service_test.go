package services

import (
	"context"
	"testing"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/store"
	"chatstream-backend/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListChatsSortedByRecency(t *testing.T) {
	mem := memory.NewMemoryStore()
	svc := NewChatService(mem)
	ctx := context.Background()

	first, err := svc.CreateChat(ctx, "user-1", "first")
	require.NoError(t, err)
	second, err := svc.CreateChat(ctx, "user-1", "second")
	require.NoError(t, err)

	// Touch the older chat so it becomes the most recent.
	_, err = mem.AppendMessage(ctx, first.ID, models.RoleUser, "ping")
	require.NoError(t, err)

	resp, err := svc.ListChats(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, resp.Chats, 2)
	assert.Equal(t, first.ID, resp.Chats[0].ID)
	assert.Equal(t, second.ID, resp.Chats[1].ID)
}

func TestCreateChatDefaultTitle(t *testing.T) {
	svc := NewChatService(memory.NewMemoryStore())

	chat, err := svc.CreateChat(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, store.DefaultChatTitle, chat.Title)
}

func TestDeleteChatIdempotent(t *testing.T) {
	svc := NewChatService(memory.NewMemoryStore())
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "user-1", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteChat(ctx, chat.ID))
	require.NoError(t, svc.DeleteChat(ctx, chat.ID))
	require.NoError(t, svc.DeleteChat(ctx, "never-existed"))
}
