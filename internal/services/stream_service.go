package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/provider"
	"chatstream-backend/internal/store"
)

// DefaultChatID is substituted when a turn request arrives without a target
// chat. A missing chat is tolerated, not rejected.
const DefaultChatID = "default-chat"

// StreamService is the stream relay: it orchestrates one chat turn, from the
// parsed request to the persisted assistant message.
//
// A turn proceeds through four phases: the user's message is persisted
// (failures logged and swallowed), the provider's fragment sequence is
// forwarded to the client one frame at a time, the terminal frame is written,
// and the accumulated assistant text is persisted (again logged and
// swallowed on failure). Nothing in this path retries and no error is ever
// surfaced to the client as a failure.
type StreamService struct {
	store    store.Store
	provider provider.Provider
}

func NewStreamService(store store.Store, provider provider.Provider) *StreamService {
	return &StreamService{store: store, provider: provider}
}

// StreamTurn runs a single turn, writing framed events directly to w.
// The response body is a sequence of `data: <JSON>\n\n` frames over a plain
// text body; each fragment is flushed before the next is requested, so
// delivery order is exactly production order.
func (s *StreamService) StreamTurn(ctx context.Context, w http.ResponseWriter, ownerID string, req models.StreamRequest) {
	chatID := req.ChatID
	if chatID == "" {
		chatID = DefaultChatID
	}
	log.Printf("[StreamService] Turn started: owner=%s chat=%s", ownerID, chatID)

	// Persist the user's message. Availability over durability: a broken
	// store must not block the answer.
	if _, err := s.store.AppendMessage(ctx, chatID, models.RoleUser, req.Message); err != nil {
		log.Printf("WARN [StreamService] Failed to persist user message, continuing: %v", err)
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, canFlush := w.(http.Flusher)

	stream := s.provider.Complete(ctx, "", req.Message)
	defer stream.Close()

	var assistant strings.Builder
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The provider contract masks upstream failures, so any other
			// error here means the sequence ended; treat it as terminal.
			log.Printf("WARN [StreamService] Unexpected stream error, closing turn: %v", err)
			break
		}

		assistant.WriteString(frag)
		if writeErr := writeFrame(w, models.StreamEvent{Content: frag}); writeErr != nil {
			// Client went away mid-stream. Keep draining the provider so the
			// turn still resolves and the assistant message gets persisted.
			log.Printf("WARN [StreamService] Failed to write fragment frame: %v", writeErr)
			continue
		}
		if canFlush {
			flusher.Flush()
		}
	}

	if err := writeFrame(w, models.StreamEvent{Done: true}); err != nil {
		log.Printf("WARN [StreamService] Failed to write terminal frame: %v", err)
	}
	if canFlush {
		flusher.Flush()
	}

	// Persist the assembled assistant message; only the final content is
	// written, never the intermediate accumulator states.
	if _, err := s.store.AppendMessage(ctx, chatID, models.RoleAssistant, assistant.String()); err != nil {
		log.Printf("WARN [StreamService] Failed to persist assistant message: %v", err)
	}

	log.Printf("[StreamService] Turn complete: chat=%s assistant_len=%d", chatID, assistant.Len())
}

// writeFrame serializes one event as a `data: <JSON>` frame followed by a
// blank line.
func writeFrame(w io.Writer, event models.StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stream event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write stream frame: %w", err)
	}
	return nil
}
