package provider

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Compile-time check to ensure MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)

// MockProvider is used when no upstream credentials are configured. It emits
// a fixed sentence one character at a time with a small fixed delay, so the
// client-visible behavior (a typing effect followed by a terminal signal) is
// indistinguishable from a live provider.
type MockProvider struct {
	delay time.Duration
}

func NewMockProvider(delay time.Duration) *MockProvider {
	return &MockProvider{delay: delay}
}

func (p *MockProvider) Complete(_ context.Context, _ string, userContent string) Stream {
	return newMockStream(fmt.Sprintf("Mock response to: %q", userContent), p.delay)
}

func (p *MockProvider) CompleteOnce(_ context.Context, systemPrompt, userContent string) (string, int) {
	return mockOnceResponse(systemPrompt, userContent)
}

// mockOnceResponse is shared with the live provider's degraded path.
func mockOnceResponse(systemPrompt, userContent string) (string, int) {
	prompt := systemPrompt
	if runes := []rune(prompt); len(runes) > 50 {
		prompt = string(runes[:50]) + "..."
	}
	text := fmt.Sprintf("Mock response for: %q with prompt: %q", userContent, prompt)
	return text, rand.Intn(100) + 20
}

// mockStream emits one character per Recv with a fixed inter-fragment delay.
type mockStream struct {
	fragments []string
	next      int
	delay     time.Duration
}

// newMockStream splits text into per-character fragments. Splitting on runes
// keeps multi-byte characters intact in the wire frames.
func newMockStream(text string, delay time.Duration) *mockStream {
	runes := []rune(text)
	fragments := make([]string, 0, len(runes))
	for _, r := range runes {
		fragments = append(fragments, string(r))
	}
	return &mockStream{fragments: fragments, delay: delay}
}

func (s *mockStream) Recv() (string, error) {
	if s.next >= len(s.fragments) {
		return "", io.EOF
	}
	if s.next > 0 && s.delay > 0 {
		time.Sleep(s.delay)
	}
	frag := s.fragments[s.next]
	s.next++
	return frag, nil
}

func (s *mockStream) Close() {
	s.next = len(s.fragments)
}
