package handlers

import (
	"encoding/json"
	"net/http"

	"chatstream-backend/internal/auth"
	"chatstream-backend/internal/models"
	"chatstream-backend/internal/services"
	"chatstream-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

// ChatHandlers handles HTTP requests related to chats and the turn stream.
type ChatHandlers struct {
	chatService   *services.ChatService
	streamService *services.StreamService
}

func NewChatHandlers(chatService *services.ChatService, streamService *services.StreamService) *ChatHandlers {
	return &ChatHandlers{
		chatService:   chatService,
		streamService: streamService,
	}
}

// HandleStream handles POST /api/chat/stream: one chat turn, answered as a
// framed fragment stream.
func (h *ChatHandlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.StreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Everything past this point streams; errors inside the turn are masked
	// by the relay, never reported here.
	h.streamService.StreamTurn(r.Context(), w, identity.UserID, req)
}

// HandleListChats handles GET /api/chat.
func (h *ChatHandlers) HandleListChats(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), identity.UserID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to get chats")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, chats)
}

// HandleCreateChat handles POST /api/chat.
func (h *ChatHandlers) HandleCreateChat(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chat, err := h.chatService.CreateChat(r.Context(), identity.UserID, req.Title)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to create chat")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.ChatResponse{Chat: chat})
}

// HandleDeleteChat handles DELETE /api/chat/{chatID}. Deleting an unknown
// chat still reports success.
func (h *ChatHandlers) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	if err := h.chatService.DeleteChat(r.Context(), chatID); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to delete chat")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.DeleteChatResponse{Success: true})
}

// HandleListMessages handles GET /api/chat/{chatID}/messages.
func (h *ChatHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	messages, err := h.chatService.ListMessages(r.Context(), chatID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to get messages")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, messages)
}
