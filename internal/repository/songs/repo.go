// Package songs is the read-only query surface over the sheet store that the
// retrieval adapters use. All methods are reads; ingestion writes the data
// elsewhere.
package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/worshipdeck/sheetsearch/internal/db"
	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/domain/musickey"
)

// Store is the consumer interface for the songs repository.
type Store interface {
	db.Searcher
	db.HashStore
}

// Repo queries song sheets and the alias table.
type Repo struct {
	store     Store
	index     string
	keyPrefix string
	aliasKey  string
}

// New creates a songs repository.
func New(store Store, index, keyPrefix, aliasKey string) *Repo {
	return &Repo{store: store, index: index, keyPrefix: keyPrefix, aliasKey: aliasKey}
}

// FindByTitle returns sheets whose title fields contain term as a substring.
func (r *Repo) FindByTitle(ctx context.Context, term string, limit int) ([]domain.Candidate, error) {
	query := db.AnyInfixQuery([]string{fieldTitle, fieldTitleAlt}, term)
	res, err := r.store.SearchList(ctx, r.index, query, 0, limit, returnFields)
	if err != nil {
		return nil, fmt.Errorf("find by title: %w", err)
	}
	return candidatesFromEntries(res.Entries, r.keyPrefix), nil
}

// FindByRecognizedText returns sheets whose OCR text contains term.
func (r *Repo) FindByRecognizedText(ctx context.Context, term string, limit int) ([]domain.Candidate, error) {
	query := db.InfixQuery(fieldRecognizedText, term)
	res, err := r.store.SearchList(ctx, r.index, query, 0, limit, returnFields)
	if err != nil {
		return nil, fmt.Errorf("find by recognized text: %w", err)
	}
	return candidatesFromEntries(res.Entries, r.keyPrefix), nil
}

// SearchKeyword runs BM25 full-text ranking over titles and recognized text.
// Returns domain.ErrKeywordSearchNotSupported when the store lacks the feature.
func (r *Repo) SearchKeyword(ctx context.Context, terms string, limit int) ([]domain.Candidate, error) {
	res, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.index,
		Query:        db.EscapeQuery(terms),
		TopK:         limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrSearchUnsupported) || errors.Is(err, db.ErrIndexNotFound) {
			return nil, domain.ErrKeywordSearchNotSupported
		}
		return nil, fmt.Errorf("search keyword: %w", err)
	}
	return candidatesFromEntries(res.Entries, r.keyPrefix), nil
}

// SearchSemantic runs KNN vector search and keeps hits at or above minSimilarity.
func (r *Repo) SearchSemantic(
	ctx context.Context, vector []float32, minSimilarity float64, limit int,
) ([]domain.Candidate, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.index,
		Vector:       vector,
		K:            limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search semantic: %w", err)
	}

	out := make([]domain.Candidate, 0, len(res.Entries))
	for _, e := range res.Entries {
		if e.Score < minSimilarity {
			continue
		}
		c, cerr := candidateFromEntry(e, r.keyPrefix)
		if cerr != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Aliases returns the full alias table: alternate title → canonical title.
func (r *Repo) Aliases(ctx context.Context) (map[string]string, error) {
	m, err := r.store.HGetAll(ctx, r.aliasKey)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	return m, nil
}

// FindByTitles returns sheets whose canonical title exactly matches one of titles.
func (r *Repo) FindByTitles(ctx context.Context, titles []string, limit int) ([]domain.Candidate, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	parts := make([]string, len(titles))
	for i, t := range titles {
		parts[i] = fmt.Sprintf("@%s:(%s)", fieldTitle, db.EscapeQuery(t))
	}
	query := "(" + strings.Join(parts, " | ") + ")"

	res, err := r.store.SearchList(ctx, r.index, query, 0, limit, returnFields)
	if err != nil {
		return nil, fmt.Errorf("find by titles: %w", err)
	}
	return candidatesFromEntries(res.Entries, r.keyPrefix), nil
}

// CandidatePool returns a bounded pool of sheets for in-process
// normalized-text and fuzzy matching.
func (r *Repo) CandidatePool(ctx context.Context, limit int) ([]domain.Candidate, error) {
	res, err := r.store.SearchList(ctx, r.index, db.MatchAll(), 0, limit, returnFields)
	if err != nil {
		return nil, fmt.Errorf("candidate pool: %w", err)
	}
	return candidatesFromEntries(res.Entries, r.keyPrefix), nil
}

// FindByKey returns sheets available in the given musical key.
func (r *Repo) FindByKey(ctx context.Context, key string, limit int) ([]domain.Candidate, error) {
	k := musickey.Normalize(key)
	if k == "" {
		return nil, domain.ErrInvalidKey
	}

	res, err := r.store.SearchList(ctx, r.index, db.TagQuery(fieldKeyTags, k), 0, limit, returnFields)
	if err != nil {
		return nil, fmt.Errorf("find by key: %w", err)
	}
	return candidatesFromEntries(res.Entries, r.keyPrefix), nil
}
