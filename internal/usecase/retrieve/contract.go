package retrieve

import (
	"context"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/repository/respcache"
)

// SongReader defines the storage contract for the retrieval adapters.
// All methods are read-only.
type SongReader interface {
	// FindByTitle returns sheets whose title fields contain term as a substring.
	FindByTitle(ctx context.Context, term string, limit int) ([]domain.Candidate, error)

	// FindByRecognizedText returns sheets whose OCR text contains term.
	FindByRecognizedText(ctx context.Context, term string, limit int) ([]domain.Candidate, error)

	// SearchKeyword runs full-text ranking over titles and recognized text.
	// Returns domain.ErrKeywordSearchNotSupported when the store lacks the feature.
	SearchKeyword(ctx context.Context, terms string, limit int) ([]domain.Candidate, error)

	// SearchSemantic runs vector search, keeping hits at or above minSimilarity.
	SearchSemantic(ctx context.Context, vector []float32, minSimilarity float64, limit int) ([]domain.Candidate, error)

	// Aliases returns the alias table: alternate title -> canonical title.
	Aliases(ctx context.Context) (map[string]string, error)

	// FindByTitles returns sheets whose canonical title matches one of titles.
	FindByTitles(ctx context.Context, titles []string, limit int) ([]domain.Candidate, error)

	// CandidatePool returns a bounded pool for in-process matching.
	CandidatePool(ctx context.Context, limit int) ([]domain.Candidate, error)

	// FindByKey returns sheets available in the given musical key.
	FindByKey(ctx context.Context, key string, limit int) ([]domain.Candidate, error)
}

// Embedder vectorizes query text. Used only by the semantic adapter.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Classifier parses a raw query into an intent.
type Classifier interface {
	Classify(query string) domain.QueryIntent
}

// Reranker reorders the top fused slice. Implementations never fail the
// request; with no usable stage they return the identity order.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) []int
}

// ResponseCache is the time-boxed output cache.
type ResponseCache interface {
	Get(ctx context.Context, key respcache.Key) (domain.SearchOutput, bool)
	Set(ctx context.Context, key respcache.Key, out domain.SearchOutput)
}
