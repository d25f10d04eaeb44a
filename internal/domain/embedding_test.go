package domain

import (
	"context"
	"errors"
	"testing"
)

type captureEmbedder struct {
	lastText string
	err      error
}

func (c *captureEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	c.lastText = text
	if c.err != nil {
		return EmbeddingResult{}, c.err
	}
	return EmbeddingResult{Embedding: []float32{1, 2}, TotalTokens: 5}, nil
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &captureEmbedder{}
	emb := NewInstructionEmbedder(inner, "search_query: ")

	res, err := emb.Embed(context.Background(), "ana perez")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if inner.lastText != "search_query: ana perez" {
		t.Errorf("expected instruction prefix, got %q", inner.lastText)
	}
	if len(res.Embedding) != 2 || res.TotalTokens != 5 {
		t.Errorf("result must pass through unchanged: %+v", res)
	}
}

func TestInstructionEmbedder_AsymmetricFraming(t *testing.T) {
	inner := &captureEmbedder{}
	doc := NewInstructionEmbedder(inner, "search_document: ")
	query := NewInstructionEmbedder(inner, "search_query: ")

	_, _ = doc.Embed(context.Background(), "same text")
	docText := inner.lastText
	_, _ = query.Embed(context.Background(), "same text")

	if docText == inner.lastText {
		t.Error("document and query framing must produce different embed inputs")
	}
}

func TestInstructionEmbedder_PropagatesError(t *testing.T) {
	inner := &captureEmbedder{err: ErrEmbeddingProvider}
	emb := NewInstructionEmbedder(inner, "search_query: ")

	_, err := emb.Embed(context.Background(), "x")
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
