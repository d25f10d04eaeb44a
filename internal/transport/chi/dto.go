package chi

import (
	"encoding/json"
	"net/http"

	"github.com/sprsantander/padron/internal/domain"
	healthuc "github.com/sprsantander/padron/internal/usecase/health"
)

// errorCode identifies an error class in API responses.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidation         errorCode = "validation_failed"
	codeUnauthorized       errorCode = "unauthorized"
	codeRecordNotFound     errorCode = "record_not_found"
	codeEmbeddingProvider  errorCode = "embedding_provider_error"
	codeCompletionProvider errorCode = "completion_provider_error"
	codeInternal           errorCode = "internal_error"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// chatRequest is the body of both chat endpoints.
type chatRequest struct {
	Messages []messageDTO `json:"messages"`
}

// messageDTO is a single conversation message on the wire.
type messageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (m messageDTO) toDomain() domain.Message {
	return domain.Message{
		Role:    domain.Role(m.Role),
		Content: m.Content,
	}
}

func messageToDTO(m domain.Message) messageDTO {
	return messageDTO{
		Role:    string(m.Role),
		Content: m.Content,
	}
}

// recordDTO is a registry record on the wire.
type recordDTO struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
	Registry  string `json:"registry,omitempty"`
	City      string `json:"city,omitempty"`
	Office    string `json:"office,omitempty"`
	Status    string `json:"status,omitempty"`
}

func (d recordDTO) toDomain() domain.Record {
	return domain.Record{
		ID:        d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
		Registry:  d.Registry,
		City:      d.City,
		Office:    d.Office,
		Status:    domain.Status(d.Status),
	}
}

func recordToDTO(rec domain.Record) recordDTO {
	return recordDTO{
		ID:        rec.ID,
		Name:      rec.Name,
		Specialty: rec.Specialty,
		Registry:  rec.Registry,
		City:      rec.City,
		Office:    rec.Office,
		Status:    string(rec.Status),
	}
}

// healthDTO is the health report on the wire.
type healthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthToDTO(r healthuc.Report) healthDTO {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return healthDTO{Status: string(r.Status), Checks: checks}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
