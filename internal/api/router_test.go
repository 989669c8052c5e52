package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatstream-backend/internal/auth"
	"chatstream-backend/internal/config"
	"chatstream-backend/internal/handlers"
	"chatstream-backend/internal/models"
	"chatstream-backend/internal/provider"
	"chatstream-backend/internal/services"
	"chatstream-backend/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		JWTSecret: testSecret,
		ClientURL: "http://localhost:5173",
	}

	mem := memory.NewMemoryStore()
	mock := provider.NewMockProvider(0)

	chatService := services.NewChatService(mem)
	streamService := services.NewStreamService(mem, mock)
	evalService := services.NewEvalService(services.NewMemoryEvalStore(), mock)

	router := NewRouter(RouterDependencies{
		ChatHandlers: handlers.NewChatHandlers(chatService, streamService),
		EvalHandlers: handlers.NewEvalHandlers(evalService),
		Config:       cfg,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.MockToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStreamEndpointEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/chat/stream", `{"message":"hello","chatId":"c1"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var content strings.Builder
	var done bool
	for _, line := range strings.Split(string(raw), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event models.StreamEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		if event.Done {
			done = true
			break
		}
		content.WriteString(event.Content)
	}

	assert.True(t, done)
	assert.Equal(t, `Mock response to: "hello"`, content.String())

	// Both sides of the turn landed in the transcript.
	resp = doJSON(t, srv, http.MethodGet, "/api/chat/c1/messages", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed models.ListMessagesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Messages, 2)
	assert.Equal(t, models.RoleUser, listed.Messages[0].Role)
	assert.Equal(t, "hello", listed.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, listed.Messages[1].Role)
	assert.Equal(t, `Mock response to: "hello"`, listed.Messages[1].Content)
}

func TestChatLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/chat", `{"title":"My chat"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created models.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.NotNil(t, created.Chat)
	assert.Equal(t, "My chat", created.Chat.Title)
	assert.Equal(t, auth.MockIdentity.UserID, created.Chat.OwnerID)

	resp = doJSON(t, srv, http.MethodGet, "/api/chat", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed models.ListChatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed.Chats, 1)
	assert.Equal(t, created.Chat.ID, listed.Chats[0].ID)

	resp = doJSON(t, srv, http.MethodDelete, "/api/chat/"+created.Chat.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted models.DeleteChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&deleted))
	resp.Body.Close()
	assert.True(t, deleted.Success)

	resp = doJSON(t, srv, http.MethodGet, "/api/chat", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed = models.ListChatsResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	assert.Empty(t, listed.Chats)
}

func TestAPIRejectsUnauthenticated(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/chat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEvalCompareAndRateOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/eval/compare",
		`{"userMessage":"hello","promptA":"Be formal.","promptB":"Be casual."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result models.EvalResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	require.NotEmpty(t, result.ID)

	resp = doJSON(t, srv, http.MethodPost, "/api/eval/rate",
		`{"resultId":"`+result.ID+`","rating":"A"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, srv, http.MethodGet, "/api/eval/results", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results models.ListEvalResultsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	resp.Body.Close()
	require.Len(t, results.Results, 1)
	assert.Equal(t, "A", results.Results[0].Rating)
}
