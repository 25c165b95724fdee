package db

import (
	"context"
	"time"
)

// Store is the database facade over the song sheet store. Consumers depend on
// the narrow sub-interfaces, not on Store itself.
type Store interface {
	Pinger
	KVStore
	HashStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations with expiry, used by the
// response and embedding caches.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// HashStore provides hash reads, used for the alias table.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// KNNQuery describes a vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery describes a BM25 full-text search.
type TextQuery struct {
	IndexName    string
	Query        string
	TopK         int
	ReturnFields []string
}

// SearchEntry is one row returned by FT.SEARCH.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is an FT.SEARCH result page.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchBM25(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*SearchResult, error)
}
