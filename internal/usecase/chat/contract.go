package chat

import (
	"context"

	"github.com/sprsantander/padron/internal/domain"
)

// Retriever returns the ranked context set for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.Match, error)
}

// Assembler builds the completion message list.
type Assembler interface {
	Assemble(matches []domain.Match, history []domain.Message) []domain.Message
}
