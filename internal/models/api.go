package models

import (
	"time"
)

// --- Common ---

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// --- Streaming ---

// StreamRequest is the body of POST /api/chat/stream. A missing ChatID is
// tolerated: the relay substitutes a default identifier instead of rejecting.
type StreamRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId"`
}

// StreamEvent is one frame of the relay's response body, serialized as
// `data: <JSON>\n\n`. Exactly one of Content / Done is set: fragment frames
// carry Content, the terminal frame carries Done.
type StreamEvent struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
}

// --- Chat CRUD ---

// CreateChatRequest is the body of POST /api/chat. Title is optional and
// defaults server-side.
type CreateChatRequest struct {
	Title string `json:"title"`
}

type ChatResponse struct {
	Chat *Chat `json:"chat"`
}

type ListChatsResponse struct {
	Chats []Chat `json:"chats"`
}

type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}

type DeleteChatResponse struct {
	Success bool `json:"success"`
}

// --- Auth ---

// AuthenticatedUser is the public subset of User embedded in the login
// redirect back to the client.
type AuthenticatedUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// --- Eval harness ---

// CompareRequest is the body of POST /api/eval/compare.
type CompareRequest struct {
	UserMessage string `json:"userMessage"`
	PromptA     string `json:"promptA"`
	PromptB     string `json:"promptB"`
}

// RateRequest is the body of POST /api/eval/rate. Rating must be "A" or "B".
type RateRequest struct {
	ResultID string `json:"resultId"`
	Rating   string `json:"rating"`
}

// EvalResult is one stored prompt comparison.
type EvalResult struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserMessage string    `json:"userMessage"`
	PromptA     string    `json:"promptA"`
	PromptB     string    `json:"promptB"`
	ResponseA   string    `json:"responseA"`
	ResponseB   string    `json:"responseB"`
	LatencyAMs  int64     `json:"latencyA"`
	LatencyBMs  int64     `json:"latencyB"`
	TokensA     int       `json:"tokensA"`
	TokensB     int       `json:"tokensB"`
	Rating      string    `json:"rating,omitempty"` // "A", "B" or empty
	Timestamp   time.Time `json:"timestamp"`
}

type RateResponse struct {
	Success bool   `json:"success"`
	Rating  string `json:"rating"`
}

type ListEvalResultsResponse struct {
	Results []EvalResult `json:"results"`
}
