package provider

import (
	"context"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCompleteYieldsFiniteDeterministicSequence(t *testing.T) {
	p := NewMockProvider(0)

	stream := p.Complete(context.Background(), "", "hello")
	defer stream.Close()

	var fragments []string
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		fragments = append(fragments, frag)
	}

	require.NotEmpty(t, fragments)
	// Character-at-a-time emission.
	for _, frag := range fragments {
		assert.Len(t, []rune(frag), 1)
	}

	var got string
	for _, frag := range fragments {
		got += frag
	}
	assert.Equal(t, `Mock response to: "hello"`, got)

	// The sequence is exhausted, not restartable.
	_, err := stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestMockCompleteIsReproducible(t *testing.T) {
	p := NewMockProvider(0)

	first := Collect(p.Complete(context.Background(), "", "same input"))
	second := Collect(p.Complete(context.Background(), "", "same input"))
	assert.Equal(t, first, second)
}

func TestMockCompleteOnce(t *testing.T) {
	p := NewMockProvider(0)

	text, tokens := p.CompleteOnce(context.Background(), "You are terse.", "hi")
	assert.Contains(t, text, `"hi"`)
	assert.Contains(t, text, "You are terse.")
	assert.Greater(t, tokens, 0)
}

func TestMockCompleteOnceTruncatesLongPrompt(t *testing.T) {
	p := NewMockProvider(0)

	longPrompt := ""
	for i := 0; i < 10; i++ {
		longPrompt += "0123456789"
	}
	text, _ := p.CompleteOnce(context.Background(), longPrompt, "hi")
	assert.Contains(t, text, "...")
	assert.NotContains(t, text, longPrompt)
}

func TestMockCompleteOnceTruncationKeepsRunesIntact(t *testing.T) {
	p := NewMockProvider(0)

	prompt := strings.Repeat("日", 60)
	text, _ := p.CompleteOnce(context.Background(), prompt, "hi")

	assert.True(t, utf8.ValidString(text))
	assert.Contains(t, text, strings.Repeat("日", 50)+"...")
	assert.NotContains(t, text, strings.Repeat("日", 51))
}
