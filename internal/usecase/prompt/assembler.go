// Package prompt assembles completion requests from retrieved context,
// conversation history, and the disclosure policy. The transform is pure and
// stateless.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sprsantander/padron/internal/domain"
)

// Config holds prompt assembly settings.
type Config struct {
	// ContactPhone is the fixed contact fallback quoted verbatim in the policy.
	ContactPhone string
	// HistoryMaxChars caps each history message; the most recent content of an
	// over-long message is preserved.
	HistoryMaxChars int
}

// Assembler builds the ordered message list sent to the completion provider.
type Assembler struct {
	cfg Config
}

// New creates a prompt assembler.
func New(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Assemble combines retrieved matches and conversation history into a single
// ordered message list: the instruction message first, then the (possibly
// truncated) history in original order.
func (a *Assembler) Assemble(matches []domain.Match, history []domain.Message) []domain.Message {
	messages := make([]domain.Message, 0, len(history)+1)
	messages = append(messages, domain.Message{
		Role:    domain.RoleSystem,
		Content: a.systemPrompt(matches),
	})

	for _, m := range history {
		role := m.Role
		if role != domain.RoleAssistant {
			role = domain.RoleUser
		}
		messages = append(messages, domain.Message{
			Role:    role,
			Content: truncate(m.Content, a.cfg.HistoryMaxChars),
		})
	}

	return messages
}

// systemPrompt encodes the disclosure policy: ground exclusively on the
// context block, confirm specific lookups, never enumerate the roster, and
// fall back to the contact line when there is no match.
func (a *Assembler) systemPrompt(matches []domain.Match) string {
	var b strings.Builder

	b.WriteString("Eres un asistente experto y profesional de la Sociedad de Pediatría Regional Santander. ")
	b.WriteString("Tu tono es médico, amable y formal.\n")
	b.WriteString("Usa EXCLUSIVAMENTE la siguiente información del padrón para responder consultas:\n")
	b.WriteString(contextBlock(matches))
	b.WriteString("\nREGLAS:\n")
	b.WriteString("1. Si encuentras coincidencia, confirma los datos (Nombre, Especialidad, Registro).\n")
	fmt.Fprintf(&b, "2. Si no figura, indícalo cortésmente y sugiere contactar al %s.\n", a.cfg.ContactPhone)
	b.WriteString("3. Nunca entregues el listado completo del padrón ni enumeres afiliados; solo confirma consultas puntuales.\n")
	b.WriteString("4. No inventes médicos ni información fuera de la lista provista.\n")
	b.WriteString("5. Responde siempre en español y de forma breve.\n")

	return b.String()
}

// contextBlock serializes only the grounding fields of each match. Internal
// fields (id, status) are excluded.
func contextBlock(matches []domain.Match) string {
	if len(matches) == 0 {
		return "(sin registros relacionados)\n"
	}

	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "- nombre=%s, especialidad=%s, registro=%s, ciudad=%s, consultorio=%s\n",
			m.Record.Name, m.Record.Specialty, m.Record.Registry, m.Record.City, m.Record.Office)
	}
	return b.String()
}

// truncate caps s at limit runes, keeping the trailing (most recent) content
// and marking the cut with a leading ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	const marker = "…"
	kept := runes[len(runes)-limit+1:]
	return marker + string(kept)
}
