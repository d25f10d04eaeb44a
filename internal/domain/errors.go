package domain

import "errors"

var (
	// ErrRecordNotFound signals a missing registry record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrIndexUnavailable signals that no index generation exists yet.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrValidation signals a rejected record payload.
	ErrValidation = errors.New("validation failed")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrCompletionProvider signals a completion provider failure.
	ErrCompletionProvider = errors.New("completion provider error")
)
