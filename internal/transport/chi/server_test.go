package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sprsantander/padron/internal/domain"
	healthuc "github.com/sprsantander/padron/internal/usecase/health"
)

// --- Mocks ---

type mockChat struct {
	chunks      []string
	completeMsg domain.Message
	lastHistory []domain.Message
}

func (m *mockChat) Stream(_ context.Context, history []domain.Message) <-chan string {
	m.lastHistory = history
	out := make(chan string)
	go func() {
		defer close(out)
		for _, c := range m.chunks {
			out <- c
		}
	}()
	return out
}

func (m *mockChat) Complete(_ context.Context, history []domain.Message) domain.Message {
	m.lastHistory = history
	return m.completeMsg
}

type mockRegistry struct {
	records []domain.Record
	listErr error
	saveErr error
	delErr  error
	deleted string
}

func (m *mockRegistry) List(_ context.Context) ([]domain.Record, error) {
	return m.records, m.listErr
}

func (m *mockRegistry) Save(_ context.Context, rec domain.Record) (domain.Record, error) {
	if m.saveErr != nil {
		return domain.Record{}, m.saveErr
	}
	if rec.ID == "" {
		rec.ID = "10"
	}
	return rec, nil
}

func (m *mockRegistry) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.delErr
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report {
	return m.report
}

func newTestRouter(chat *mockChat, reg *mockRegistry, health *mockHealth) http.Handler {
	if health == nil {
		health = &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}}
	}
	s := NewServer(chat, reg, health, nil, zap.NewNop())
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// --- Tests ---

func TestChatStream_DeliversChunks(t *testing.T) {
	chat := &mockChat{chunks: []string{"Hola, ", "la doctora figura."}}
	router := newTestRouter(chat, &mockRegistry{}, nil)

	body := `{"messages": [{"role": "user", "content": "¿Ana Pérez?"}]}`
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("unexpected cache control %q", cc)
	}
	if got := rr.Body.String(); got != "Hola, la doctora figura." {
		t.Errorf("unexpected body %q", got)
	}
	if len(chat.lastHistory) != 1 || chat.lastHistory[0].Content != "¿Ana Pérez?" {
		t.Errorf("history not forwarded: %+v", chat.lastHistory)
	}
}

func TestChatStream_RejectsEmptyHistory(t *testing.T) {
	router := newTestRouter(&mockChat{}, &mockRegistry{}, nil)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages": []}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestChatStream_RejectsInvalidBody(t *testing.T) {
	router := newTestRouter(&mockChat{}, &mockRegistry{}, nil)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestChatMessage_ReturnsJSON(t *testing.T) {
	chat := &mockChat{completeMsg: domain.Message{Role: domain.RoleAssistant, Content: "Sí figura."}}
	router := newTestRouter(chat, &mockRegistry{}, nil)

	body := `{"messages": [{"role": "user", "content": "hola"}]}`
	req := httptest.NewRequest("POST", "/api/chat/message", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	var msg messageDTO
	if err := json.NewDecoder(rr.Body).Decode(&msg); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if msg.Role != "assistant" || msg.Content != "Sí figura." {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestRegistryList(t *testing.T) {
	reg := &mockRegistry{records: []domain.Record{
		{ID: "1", Name: "Ana Pérez", Status: domain.StatusActive},
	}}
	router := newTestRouter(&mockChat{}, reg, nil)

	req := httptest.NewRequest("GET", "/api/registry/", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	var items []recordDTO
	if err := json.NewDecoder(rr.Body).Decode(&items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Ana Pérez" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestRegistrySave_CreateReturns201(t *testing.T) {
	router := newTestRouter(&mockChat{}, &mockRegistry{}, nil)

	body := `{"name": "Nuevo Médico", "status": "active"}`
	req := httptest.NewRequest("POST", "/api/registry/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusCreated)
	}
	var rec recordDTO
	if err := json.NewDecoder(rr.Body).Decode(&rec); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected assigned id in response")
	}
}

func TestRegistrySave_UpdateReturns200(t *testing.T) {
	router := newTestRouter(&mockChat{}, &mockRegistry{}, nil)

	body := `{"id": "1", "name": "Ana Pérez", "city": "Floridablanca"}`
	req := httptest.NewRequest("POST", "/api/registry/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRegistryDelete(t *testing.T) {
	reg := &mockRegistry{}
	router := newTestRouter(&mockChat{}, reg, nil)

	req := httptest.NewRequest("DELETE", "/api/registry/7", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if reg.deleted != "7" {
		t.Errorf("expected delete of record 7, got %q", reg.deleted)
	}
}

func TestRegistryDelete_NotFound(t *testing.T) {
	reg := &mockRegistry{delErr: domain.ErrRecordNotFound}
	router := newTestRouter(&mockChat{}, reg, nil)

	req := httptest.NewRequest("DELETE", "/api/registry/404", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusNotFound)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeRecordNotFound {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeRecordNotFound)
	}
}

func TestRegistrySave_ValidationFailureMapsTo400(t *testing.T) {
	reg := &mockRegistry{saveErr: domain.ErrValidation}
	router := newTestRouter(&mockChat{}, reg, nil)

	body := `{"name": ""}`
	req := httptest.NewRequest("POST", "/api/registry/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeValidation {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeValidation)
	}
}

func TestRegistrySave_EmbeddingFailureMapsTo502(t *testing.T) {
	reg := &mockRegistry{saveErr: domain.ErrEmbeddingProvider}
	router := newTestRouter(&mockChat{}, reg, nil)

	body := `{"name": "x"}`
	req := httptest.NewRequest("POST", "/api/registry/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

func TestHealth_Healthy(t *testing.T) {
	router := newTestRouter(&mockChat{}, &mockRegistry{}, nil)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	var dto healthDTO
	if err := json.NewDecoder(rr.Body).Decode(&dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.Status != "ok" {
		t.Errorf("unexpected status %q", dto.Status)
	}
}

func TestHealth_Degraded(t *testing.T) {
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			"database":   healthuc.CheckOK,
			"completion": healthuc.CheckError,
		},
	}}
	router := newTestRouter(&mockChat{}, &mockRegistry{}, health)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
