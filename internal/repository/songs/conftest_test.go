package songs

import (
	"context"
	"testing"

	"github.com/worshipdeck/sheetsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn  func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchBM25Fn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchListFn func(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	hGetAllFn    func(ctx context.Context, key string) (map[string]string, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchBM25Fn != nil {
		return m.searchBM25Fn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, query, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hGetAllFn != nil {
		return m.hGetAllFn(ctx, key)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "idx:sheets", "sheetsearch:", "sheetsearch:aliases")
	return repo, ms
}

func entry(key string, fields map[string]string) db.SearchEntry {
	return db.SearchEntry{Key: key, Fields: fields}
}

func sheetFields(title, keys, filename string) map[string]string {
	return map[string]string{
		fieldTitle:    title,
		fieldKeys:     keys,
		fieldFilename: filename,
		fieldPage:     "1",
	}
}
