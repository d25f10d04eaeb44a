package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sprsantander/padron/internal/domain"
	healthuc "github.com/sprsantander/padron/internal/usecase/health"
)

// chatService answers conversations, streaming or not.
type chatService interface {
	Stream(ctx context.Context, history []domain.Message) <-chan string
	Complete(ctx context.Context, history []domain.Message) domain.Message
}

// registryService administers the roster.
type registryService interface {
	List(ctx context.Context) ([]domain.Record, error)
	Save(ctx context.Context, rec domain.Record) (domain.Record, error)
	Delete(ctx context.Context, id string) error
}

// healthService reports component health.
type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the chat and registry HTTP API.
type Server struct {
	chat          chatService
	registry      registryService
	health        healthService
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat chatService,
	registry registryService,
	health healthService,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:     chat,
		registry: registry,
		health:   health,
		apiKeys:  apiKeys,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidation),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrCompletionProvider, http.StatusBadGateway, codeCompletionProvider),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeInternal),
	}
	return s
}

// Routes mounts all endpoints on the router. The registry admin surface sits
// behind bearer auth; chat, health and metrics are open.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/chat", s.handleChatStream)
	r.Post("/api/chat/message", s.handleChatMessage)

	r.Route("/api/registry", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(s.apiKeys))
		r.Get("/", s.handleRegistryList)
		r.Post("/", s.handleRegistrySave)
		r.Delete("/{id}", s.handleRegistryDelete)
	})
}

// handleChatStream handles POST /api/chat: an incrementally delivered
// text/plain body, flushed chunk by chunk.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	history, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	for chunk := range s.chat.Stream(r.Context(), history) {
		if _, err := w.Write([]byte(chunk)); err != nil {
			// Caller went away; request context cancellation stops the stream.
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// handleChatMessage handles POST /api/chat/message: the non-streaming variant.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	history, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	msg := s.chat.Complete(r.Context(), history)
	writeJSON(w, http.StatusOK, messageToDTO(msg))
}

// handleRegistryList handles GET /api/registry.
func (s *Server) handleRegistryList(w http.ResponseWriter, r *http.Request) {
	records, err := s.registry.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]recordDTO, len(records))
	for i, rec := range records {
		items[i] = recordToDTO(rec)
	}
	writeJSON(w, http.StatusOK, items)
}

// handleRegistrySave handles POST /api/registry: create (no id) or update.
func (s *Server) handleRegistrySave(w http.ResponseWriter, r *http.Request) {
	var dto recordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created := dto.ID == ""
	saved, err := s.registry.Save(r.Context(), dto.toDomain())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, recordToDTO(saved))
}

// handleRegistryDelete handles DELETE /api/registry/{id}.
func (s *Server) handleRegistryDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.registry.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToDTO(report))
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrRecordNotFound,
		domain.ErrIndexUnavailable,
		domain.ErrEmbeddingProvider,
		domain.ErrCompletionProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// decodeChatRequest parses the {messages: [...]} body shared by both chat
// endpoints. Writes the error response itself on failure.
func decodeChatRequest(w http.ResponseWriter, r *http.Request) ([]domain.Message, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, codeValidation, "messages must not be empty")
		return nil, false
	}

	history := make([]domain.Message, len(req.Messages))
	for i, m := range req.Messages {
		history[i] = m.toDomain()
	}
	return history, true
}
