package domain

import "context"

// Completer is the completion provider contract. Pipeline code must not branch
// on provider identity; variant backends are selected by configuration.
type Completer interface {
	// Available reports whether the provider is configured (credential present).
	Available() bool
	// Complete returns the full generated text in one call.
	Complete(ctx context.Context, messages []Message) (string, error)
	// Stream starts an incremental completion.
	Stream(ctx context.Context, messages []Message) (CompletionStream, error)
}

// CompletionStream yields generated text chunks. Recv returns io.EOF when the
// stream ends normally. The stream is finite and not restartable.
type CompletionStream interface {
	Recv() (string, error)
	Close() error
}
