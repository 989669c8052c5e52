package services

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/provider"
	"chatstream-backend/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider yields a fixed fragment sequence.
type scriptedProvider struct {
	fragments []string
}

func (p *scriptedProvider) Complete(context.Context, string, string) provider.Stream {
	return &scriptedStream{fragments: p.fragments}
}

func (p *scriptedProvider) CompleteOnce(context.Context, string, string) (string, int) {
	return strings.Join(p.fragments, ""), len(p.fragments)
}

type scriptedStream struct {
	fragments []string
	next      int
}

func (s *scriptedStream) Recv() (string, error) {
	if s.next >= len(s.fragments) {
		return "", io.EOF
	}
	frag := s.fragments[s.next]
	s.next++
	return frag, nil
}

func (s *scriptedStream) Close() {}

// appendFailStore wraps the memory store with failing AppendMessage.
type appendFailStore struct {
	*memory.MemoryStore
}

func (s *appendFailStore) AppendMessage(context.Context, string, string, string) (*models.Message, error) {
	return nil, errors.New("append failed")
}

func frames(t *testing.T, body string) []string {
	t.Helper()
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			out = append(out, strings.TrimPrefix(line, "data: "))
		}
	}
	return out
}

func TestStreamTurnForwardsFragmentsInOrder(t *testing.T) {
	mem := memory.NewMemoryStore()
	svc := NewStreamService(mem, &scriptedProvider{fragments: []string{"Hi", " there"}})

	rec := httptest.NewRecorder()
	svc.StreamTurn(context.Background(), rec, "user-1", models.StreamRequest{Message: "hello", ChatID: "c1"})

	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	got := frames(t, rec.Body.String())
	require.Equal(t, []string{
		`{"content":"Hi"}`,
		`{"content":" there"}`,
		`{"done":true}`,
	}, got)
}

func TestStreamTurnPersistsBothMessages(t *testing.T) {
	mem := memory.NewMemoryStore()
	svc := NewStreamService(mem, &scriptedProvider{fragments: []string{"Hi", " there"}})

	rec := httptest.NewRecorder()
	svc.StreamTurn(context.Background(), rec, "user-1", models.StreamRequest{Message: "hello", ChatID: "c1"})

	msgs, err := mem.ListMessages(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hi there", msgs[1].Content)
	// Within a turn, the user message precedes the assistant message.
	assert.False(t, msgs[1].Timestamp.Before(msgs[0].Timestamp))
}

func TestStreamTurnSubstitutesDefaultChat(t *testing.T) {
	mem := memory.NewMemoryStore()
	svc := NewStreamService(mem, &scriptedProvider{fragments: []string{"ok"}})

	rec := httptest.NewRecorder()
	svc.StreamTurn(context.Background(), rec, "user-1", models.StreamRequest{Message: "hello"})

	msgs, err := mem.ListMessages(context.Background(), DefaultChatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestStreamTurnSurvivesPersistenceFailure(t *testing.T) {
	failing := &appendFailStore{MemoryStore: memory.NewMemoryStore()}
	svc := NewStreamService(failing, &scriptedProvider{fragments: []string{"Hi", " there"}})

	rec := httptest.NewRecorder()
	svc.StreamTurn(context.Background(), rec, "user-1", models.StreamRequest{Message: "hello", ChatID: "c1"})

	// The client still gets every fragment and the terminal signal.
	got := frames(t, rec.Body.String())
	require.Equal(t, []string{
		`{"content":"Hi"}`,
		`{"content":" there"}`,
		`{"done":true}`,
	}, got)
}

func TestStreamTurnEmptyProviderSequence(t *testing.T) {
	mem := memory.NewMemoryStore()
	svc := NewStreamService(mem, &scriptedProvider{fragments: nil})

	rec := httptest.NewRecorder()
	svc.StreamTurn(context.Background(), rec, "user-1", models.StreamRequest{Message: "hello", ChatID: "c1"})

	got := frames(t, rec.Body.String())
	require.Equal(t, []string{`{"done":true}`}, got)

	// The assistant message is persisted even when empty; the turn resolved.
	msgs, err := mem.ListMessages(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "", msgs[1].Content)
}
