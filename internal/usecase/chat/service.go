// Package chat relays completion provider output to callers, grounding each
// answer in retrieved registry context. Every failure degrades to a
// user-visible text response; nothing here is fatal.
package chat

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/sprsantander/padron/internal/domain"
)

// Caller-safe degradation texts. Provider internals never reach the caller.
const (
	msgNoCredential = "⚠️ El asistente no está disponible: falta configurar la credencial del proveedor de respuestas."
	msgStreamError  = "\n[Error del motor de IA: no fue posible completar la respuesta. Intenta de nuevo más tarde.]"
)

// Service answers affiliation questions over the registry.
type Service struct {
	retriever Retriever
	assembler Assembler
	completer domain.Completer
	topK      int
	logger    *zap.Logger
}

// New creates a chat service. topK bounds the retrieved context set.
func New(retriever Retriever, assembler Assembler, completer domain.Completer, topK int, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		assembler: assembler,
		completer: completer,
		topK:      topK,
		logger:    logger,
	}
}

// Stream answers the conversation incrementally. The returned channel always
// closes: after the provider's final chunk, after exactly one diagnostic chunk
// on abnormal termination, or after a single explanatory chunk when the
// provider is not configured. Cancelling ctx stops provider reads.
func (s *Service) Stream(ctx context.Context, history []domain.Message) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		if !s.completer.Available() {
			s.logger.Warn("Completion provider not configured, short-circuiting chat")
			emit(ctx, out, msgNoCredential)
			return
		}

		messages := s.prepare(ctx, history)

		stream, err := s.completer.Stream(ctx, messages)
		if err != nil {
			s.logger.Error("Failed to start completion stream", zap.Error(err))
			emit(ctx, out, msgStreamError)
			return
		}
		defer func() { _ = stream.Close() }()

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				s.logger.Error("Completion stream aborted", zap.Error(err))
				emit(ctx, out, msgStreamError)
				return
			}
			if chunk == "" {
				continue
			}
			if !emit(ctx, out, chunk) {
				return
			}
		}
	}()

	return out
}

// Complete is the non-streaming variant: the same pipeline collapsed to one
// synchronous call. Provider failures surface as diagnostic text, not errors.
func (s *Service) Complete(ctx context.Context, history []domain.Message) domain.Message {
	if !s.completer.Available() {
		s.logger.Warn("Completion provider not configured, short-circuiting chat")
		return domain.Message{Role: domain.RoleAssistant, Content: msgNoCredential}
	}

	messages := s.prepare(ctx, history)

	text, err := s.completer.Complete(ctx, messages)
	if err != nil {
		s.logger.Error("Completion failed", zap.Error(err))
		return domain.Message{Role: domain.RoleAssistant, Content: msgStreamError}
	}

	return domain.Message{Role: domain.RoleAssistant, Content: text}
}

// prepare retrieves context for the last user message and assembles the
// request. Retrieval failure degrades to an empty context block: the policy
// then steers the model to the not-found/contact branch.
func (s *Service) prepare(ctx context.Context, history []domain.Message) []domain.Message {
	var matches []domain.Match

	if query := lastUserContent(history); query != "" {
		var err error
		matches, err = s.retriever.Retrieve(ctx, query, s.topK)
		if err != nil {
			s.logger.Warn("Retrieval failed, answering with empty context", zap.Error(err))
			matches = nil
		}
	}

	return s.assembler.Assemble(matches, history)
}

func lastUserContent(history []domain.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != domain.RoleAssistant {
			return history[i].Content
		}
	}
	return ""
}

// emit sends a chunk unless the caller went away. Reports whether the send
// happened.
func emit(ctx context.Context, out chan<- string, chunk string) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
