package openai

import (
	"context"
	"errors"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sprsantander/padron/internal/domain"
	"github.com/sprsantander/padron/internal/metrics"
)

// Completer is a completion provider using the OpenAI-compatible chat API
// (e.g. Groq or OpenAI itself, selected by base URL).
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	provider    string
	configured  bool
	logger      *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Provider    string
	Logger      *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider. A missing
// API key yields an unavailable completer; the chat path degrades to an
// explanatory message instead of failing at startup.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Completer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		provider:    cfg.Provider,
		configured:  cfg.APIKey != "",
		logger:      cfg.Logger,
	}
}

// Available implements domain.Completer.
func (c *Completer) Available() bool {
	return c.configured
}

// Complete implements the non-streaming variant of domain.Completer.
func (c *Completer) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, c.request(messages))

	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "sync", "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, "api_error").Inc()
		return "", parseAPIError("completion", err, domain.ErrCompletionProvider)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "sync", "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, c.model, "sync").Observe(duration.Seconds())

	if len(resp.Choices) == 0 {
		return "", errors.Join(domain.ErrCompletionProvider, errors.New("empty completion response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream implements the streaming variant of domain.Completer.
func (c *Completer) Stream(ctx context.Context, messages []domain.Message) (domain.CompletionStream, error) {
	req := c.request(messages)
	req.Stream = true

	start := time.Now()

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "stream", "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, "api_error").Inc()
		return nil, parseAPIError("completion", err, domain.ErrCompletionProvider)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "stream", "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, c.model, "stream").Observe(time.Since(start).Seconds())

	return &chatStream{inner: stream, provider: c.provider, model: c.model}, nil
}

func (c *Completer) request(messages []domain.Message) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{
			Role:    roleFor(m.Role),
			Content: m.Content,
		}
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temperature,
	}
}

func roleFor(r domain.Role) string {
	switch r {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// chatStream adapts the provider stream to domain.CompletionStream.
type chatStream struct {
	inner    *openai.ChatCompletionStream
	provider string
	model    string
}

// Recv returns the next text chunk. io.EOF signals normal termination; any
// other error is wrapped with the completion sentinel.
func (s *chatStream) Recv() (string, error) {
	resp, err := s.inner.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		metrics.CompletionErrorsTotal.WithLabelValues(s.provider, s.model, "stream_error").Inc()
		return "", parseAPIError("completion stream", err, domain.ErrCompletionProvider)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	chunk := resp.Choices[0].Delta.Content
	if chunk != "" {
		metrics.CompletionChunksTotal.WithLabelValues(s.provider, s.model).Inc()
	}
	return chunk, nil
}

// Close releases the underlying stream.
func (s *chatStream) Close() error {
	return s.inner.Close()
}
