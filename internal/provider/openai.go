package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Compile-time check to ensure OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider streams completions from the OpenAI chat API. Any upstream
// failure, at open time or mid-stream, degrades to mock fragments so the
// caller still observes a complete, finite sequence.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	mockDelay time.Duration
}

func NewOpenAIProvider(apiKey, model, baseURL string, mockDelay time.Duration) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		mockDelay: mockDelay,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userContent string) Stream {
	req := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: chatMessages(systemPrompt, userContent),
		Stream:   true,
	}

	upstream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		log.Printf("WARN [OpenAIProvider] Failed to open completion stream, using mock: %v", err)
		return p.fallbackStream(userContent)
	}

	return &openaiStream{provider: p, upstream: upstream, userContent: userContent}
}

func (p *OpenAIProvider) CompleteOnce(ctx context.Context, systemPrompt, userContent string) (string, int) {
	req := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  chatMessages(systemPrompt, userContent),
		MaxTokens: 200,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("WARN [OpenAIProvider] One-shot completion failed, using mock: %v", err)
		return mockOnceResponse(systemPrompt, userContent)
	}
	return resp.Choices[0].Message.Content, resp.Usage.TotalTokens
}

func (p *OpenAIProvider) fallbackStream(userContent string) Stream {
	return newMockStream(fmt.Sprintf("[Mock fallback] Response to: %q", userContent), p.mockDelay)
}

func chatMessages(systemPrompt, userContent string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userContent,
	})
}

// openaiStream adapts the go-openai stream. On a mid-stream error it switches
// to mock fragments instead of surfacing the failure; once switched, the
// upstream is never consulted again (the sequence is not restartable).
type openaiStream struct {
	provider    *OpenAIProvider
	upstream    *openai.ChatCompletionStream
	userContent string
	fallback    Stream
}

func (s *openaiStream) Recv() (string, error) {
	if s.fallback != nil {
		return s.fallback.Recv()
	}

	for {
		resp, err := s.upstream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			log.Printf("WARN [OpenAIProvider] Stream error, switching to mock: %v", err)
			s.upstream.Close()
			s.fallback = s.provider.fallbackStream(s.userContent)
			return s.fallback.Recv()
		}
		if len(resp.Choices) == 0 {
			continue
		}
		// Skip empty deltas (role-only chunks) so the relay never frames
		// an empty fragment.
		if content := resp.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *openaiStream) Close() {
	if s.fallback != nil {
		s.fallback.Close()
		return
	}
	s.upstream.Close()
}
