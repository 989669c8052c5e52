// Package provider wraps the upstream text-completion API behind a contract
// that can never fail outright: callers always receive a complete, finite
// fragment sequence, degraded to deterministic mock content when the upstream
// is unconfigured or erroring. This masking keeps the relay/consumer protocol
// uniform regardless of provider health.
package provider

import (
	"context"
)

// Stream is a lazy, finite, non-restartable sequence of assistant text
// fragments. Recv returns io.EOF after the final fragment; end-of-sequence
// alone signals completion, there is no error fragment.
type Stream interface {
	Recv() (string, error)
	Close()
}

// Provider produces completions for a single user message.
type Provider interface {
	// Complete returns the fragment stream for one turn. Implementations
	// must not fail: upstream errors degrade to mock fragments.
	Complete(ctx context.Context, systemPrompt, userContent string) Stream

	// CompleteOnce returns a one-shot completion and the upstream token
	// count, degrading to mock content on error. Used by the eval harness.
	CompleteOnce(ctx context.Context, systemPrompt, userContent string) (string, int)
}

// Collect drains a stream and returns the concatenated fragments. Intended
// for one-shot callers and tests; the relay consumes fragments one at a time.
func Collect(s Stream) string {
	defer s.Close()
	var out string
	for {
		frag, err := s.Recv()
		if err != nil {
			return out
		}
		out += frag
	}
}
