// Package chatclient is the client-side counterpart of the turn stream: it
// issues turn requests, decodes the relay's framed output incrementally, and
// keeps an in-memory chat list and message list consistent with what the
// server has (or would have) persisted.
//
// A Client is driven from a single goroutine, mirroring a UI event loop; it
// is not safe for concurrent use.
package chatclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"chatstream-backend/internal/models"

	"github.com/google/uuid"
)

// FallbackReply is typed out locally, character by character, when the turn
// request cannot reach the server at all. It mirrors the server's own
// masking policy: a network-edge failure and a provider failure look the
// same to the user.
const FallbackReply = "This is a mock streaming response. The server will provide real responses when configured properly."

// MockGreeting seeds the message view when the message list cannot be
// loaded.
const MockGreeting = "Hello! How can I help you today?"

const defaultTypingDelay = 30 * time.Millisecond

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTypingDelay sets the per-character delay of the local fallback typing
// effect.
func WithTypingDelay(d time.Duration) Option {
	return func(c *Client) { c.typingDelay = d }
}

// WithFragmentHandler registers a hook invoked for every fragment applied to
// the in-flight assistant message, in arrival order. This is what drives a
// visible typing effect.
func WithFragmentHandler(fn func(fragment string)) Option {
	return func(c *Client) { c.onFragment = fn }
}

// Client holds the chat-list and message-list state for one signed-in user.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	typingDelay time.Duration
	onFragment  func(string)

	chats      []models.Chat
	messages   []models.Message
	activeChat string
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		httpClient:  http.DefaultClient,
		typingDelay: defaultTypingDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chats returns the chat list, most recently active first.
func (c *Client) Chats() []models.Chat {
	out := make([]models.Chat, len(c.chats))
	copy(out, c.chats)
	return out
}

// Messages returns the open conversation in ascending timestamp order.
func (c *Client) Messages() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// ActiveChat returns the ID of the open conversation, or "" if none.
func (c *Client) ActiveChat() string {
	return c.activeChat
}

// LoadChats fetches the caller's chats, sorts them most-recent-first and
// activates the first one. If the server is unreachable it degrades to a
// single placeholder chat so there is always something to render.
func (c *Client) LoadChats(ctx context.Context) error {
	var payload models.ListChatsResponse
	if err := c.getJSON(ctx, "/api/chat", &payload); err != nil {
		c.chats = []models.Chat{mockChat()}
		c.activeChat = c.chats[0].ID
		return nil
	}

	chats := payload.Chats
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	c.chats = chats
	if len(chats) > 0 {
		c.activeChat = chats[0].ID
	} else {
		c.activeChat = ""
	}
	return nil
}

// SelectChat switches the open conversation and loads its messages,
// degrading to the mock greeting when the load fails.
func (c *Client) SelectChat(ctx context.Context, chatID string) {
	c.activeChat = chatID
	c.messages = nil
	if chatID == "" {
		return
	}

	var payload models.ListMessagesResponse
	if err := c.getJSON(ctx, "/api/chat/"+chatID+"/messages", &payload); err != nil {
		c.messages = []models.Message{{
			ID:        "1",
			ChatID:    chatID,
			Role:      models.RoleAssistant,
			Content:   MockGreeting,
			Timestamp: time.Now(),
		}}
		return
	}
	c.messages = payload.Messages
}

// NewChat creates a chat server-side and activates it, falling back to a
// purely local chat when the server is unreachable.
func (c *Client) NewChat(ctx context.Context, title string) models.Chat {
	body, _ := json.Marshal(models.CreateChatRequest{Title: title})

	var payload models.ChatResponse
	err := c.postJSON(ctx, "/api/chat", body, &payload)
	var chat models.Chat
	if err != nil || payload.Chat == nil {
		now := time.Now()
		chat = models.Chat{
			ID:        fmt.Sprintf("local_%d", now.UnixMilli()),
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}
	} else {
		chat = *payload.Chat
	}

	c.chats = append([]models.Chat{chat}, c.chats...)
	c.activeChat = chat.ID
	c.messages = nil
	return chat
}

// DeleteChat removes a chat server-side and prunes local state, switching
// the active conversation to the next remaining chat.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/chat/"+chatID, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete chat returned status %d", resp.StatusCode)
	}

	remaining := make([]models.Chat, 0, len(c.chats))
	for _, chat := range c.chats {
		if chat.ID != chatID {
			remaining = append(remaining, chat)
		}
	}
	c.chats = remaining

	if c.activeChat == chatID {
		if len(remaining) > 0 {
			c.SelectChat(ctx, remaining[0].ID)
		} else {
			c.activeChat = ""
			c.messages = nil
		}
	}
	return nil
}

// SendMessage runs one turn against the active chat. The user message is
// appended optimistically before any network confirmation; there is no
// rollback path. Fragments are applied to a placeholder assistant message in
// exact arrival order, and on completion the owning chat moves to the front
// of the chat list with a refreshed timestamp.
//
// Any failure to open the stream degrades to a locally-typed fallback reply;
// SendMessage itself never reports an error.
func (c *Client) SendMessage(ctx context.Context, content string) {
	if c.activeChat == "" {
		return
	}
	chatID := c.activeChat

	c.messages = append(c.messages, models.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	})

	body, _ := json.Marshal(models.StreamRequest{Message: content, ChatID: chatID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/stream", bytes.NewReader(body))
	if err != nil {
		c.typeFallback(chatID)
		return
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.typeFallback(chatID)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.typeFallback(chatID)
		return
	}

	assistantIdx := c.appendPlaceholder(chatID)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event models.StreamEvent
		if err := json.Unmarshal([]byte(line[len("data: "):]), &event); err != nil {
			// Ignore malformed frames.
			continue
		}
		if event.Done {
			break
		}
		if event.Content != "" {
			c.applyFragment(assistantIdx, event.Content)
		}
	}
	// A read error mid-stream just ends fragment delivery; whatever content
	// arrived stays on screen, consistent with the no-visible-failure stance.

	c.bumpChatOrder(chatID)
}

// typeFallback simulates the stream locally: a placeholder assistant message
// filled one character at a time with a fixed delay, then the usual
// chat-list reorder. Indistinguishable from a degraded server response.
func (c *Client) typeFallback(chatID string) {
	assistantIdx := c.appendPlaceholder(chatID)
	for _, r := range FallbackReply {
		c.applyFragment(assistantIdx, string(r))
		if c.typingDelay > 0 {
			time.Sleep(c.typingDelay)
		}
	}
	c.bumpChatOrder(chatID)
}

// appendPlaceholder adds the empty assistant message that fragments
// accumulate into, returning its index.
func (c *Client) appendPlaceholder(chatID string) int {
	c.messages = append(c.messages, models.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Role:      models.RoleAssistant,
		Content:   "",
		Timestamp: time.Now(),
	})
	return len(c.messages) - 1
}

// applyFragment appends one fragment to the in-flight assistant message.
// Pure append: fragments are never reordered or coalesced.
func (c *Client) applyFragment(idx int, fragment string) {
	c.messages[idx].Content += fragment
	if c.onFragment != nil {
		c.onFragment(fragment)
	}
}

// bumpChatOrder moves the chat to the front of the list with a refreshed
// timestamp, preserving the relative order of the others.
func (c *Client) bumpChatOrder(chatID string) {
	for i, chat := range c.chats {
		if chat.ID != chatID {
			continue
		}
		chat.UpdatedAt = time.Now()
		c.chats = append(c.chats[:i], c.chats[i+1:]...)
		c.chats = append([]models.Chat{chat}, c.chats...)
		return
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func mockChat() models.Chat {
	now := time.Now()
	return models.Chat{
		ID:        "mock_chat_1",
		Title:     "Sample conversation",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
