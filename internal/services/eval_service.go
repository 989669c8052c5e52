package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"chatstream-backend/internal/models"
	"chatstream-backend/internal/provider"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
)

var (
	ErrEvalResultNotFound = errors.New("eval result not found")
	ErrEvalNotOwner       = errors.New("not authorized to rate this result")
	ErrInvalidRating      = errors.New("rating must be A or B")
)

// EvalStore persists prompt-comparison results. It is injected into the
// service (initialized at process start, no explicit teardown) rather than
// living as a process-wide map.
type EvalStore interface {
	Save(result models.EvalResult)
	Get(id string) (models.EvalResult, bool)
	ListByUser(userID string) []models.EvalResult
}

// MemoryEvalStore is the in-process EvalStore implementation.
type MemoryEvalStore struct {
	mu      sync.RWMutex
	results map[string]models.EvalResult
}

func NewMemoryEvalStore() *MemoryEvalStore {
	return &MemoryEvalStore{results: make(map[string]models.EvalResult)}
}

func (s *MemoryEvalStore) Save(result models.EvalResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = result
}

func (s *MemoryEvalStore) Get(id string) (models.EvalResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	return result, ok
}

func (s *MemoryEvalStore) ListByUser(userID string) []models.EvalResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]models.EvalResult, 0)
	for _, result := range s.results {
		if result.UserID == userID {
			results = append(results, result)
		}
	}
	return results
}

// EvalService runs side-by-side prompt comparisons against the Completion
// Provider and records user ratings of the outcomes.
type EvalService struct {
	store    EvalStore
	provider provider.Provider
}

func NewEvalService(store EvalStore, provider provider.Provider) *EvalService {
	return &EvalService{store: store, provider: provider}
}

// Compare runs the user message against both prompts in parallel and stores
// the timed result.
func (s *EvalService) Compare(ctx context.Context, userID string, req models.CompareRequest) (*models.EvalResult, error) {
	if req.UserMessage == "" || req.PromptA == "" || req.PromptB == "" {
		return nil, fmt.Errorf("userMessage, promptA and promptB are all required")
	}

	var (
		responseA, responseB string
		tokensA, tokensB     int
		latencyA, latencyB   time.Duration
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		responseA, tokensA, latencyA = s.timedCompletion(ctx, req.PromptA, req.UserMessage)
	})
	wg.Go(func() {
		responseB, tokensB, latencyB = s.timedCompletion(ctx, req.PromptB, req.UserMessage)
	})
	wg.Wait()

	result := models.EvalResult{
		ID:          uuid.NewString(),
		UserID:      userID,
		UserMessage: req.UserMessage,
		PromptA:     req.PromptA,
		PromptB:     req.PromptB,
		ResponseA:   responseA,
		ResponseB:   responseB,
		LatencyAMs:  latencyA.Milliseconds(),
		LatencyBMs:  latencyB.Milliseconds(),
		TokensA:     tokensA,
		TokensB:     tokensB,
		Timestamp:   time.Now().UTC(),
	}
	s.store.Save(result)

	return &result, nil
}

// Rate records an A/B preference on a stored result. Only the result's owner
// may rate it.
func (s *EvalService) Rate(_ context.Context, userID string, req models.RateRequest) (*models.EvalResult, error) {
	if req.Rating != "A" && req.Rating != "B" {
		return nil, ErrInvalidRating
	}

	result, ok := s.store.Get(req.ResultID)
	if !ok {
		return nil, ErrEvalResultNotFound
	}
	if result.UserID != userID {
		return nil, ErrEvalNotOwner
	}

	result.Rating = req.Rating
	s.store.Save(result)
	return &result, nil
}

// Results returns the caller's comparisons, newest first.
func (s *EvalService) Results(_ context.Context, userID string) *models.ListEvalResultsResponse {
	results := s.store.ListByUser(userID)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})
	return &models.ListEvalResultsResponse{Results: results}
}

func (s *EvalService) timedCompletion(ctx context.Context, prompt, userMessage string) (string, int, time.Duration) {
	start := time.Now()
	text, tokens := s.provider.CompleteOnce(ctx, prompt, userMessage)
	return text, tokens, time.Since(start)
}
