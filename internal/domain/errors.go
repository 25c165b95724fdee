package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank or whitespace-only search query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrMissingCandidateID signals a retrieval hit without a stable identifier.
	ErrMissingCandidateID = errors.New("candidate missing identifier")
	// ErrInvalidKey signals a malformed musical key.
	ErrInvalidKey = errors.New("invalid musical key")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRerankUnavailable signals that no rerank stage could serve the request.
	ErrRerankUnavailable = errors.New("rerank unavailable")
	// ErrGeneratorUnavailable signals that the reply generator is not configured.
	ErrGeneratorUnavailable = errors.New("reply generator unavailable")
	// ErrKeywordSearchNotSupported signals that the backend lacks full-text ranking.
	ErrKeywordSearchNotSupported = errors.New("keyword search not supported by backend")
)
