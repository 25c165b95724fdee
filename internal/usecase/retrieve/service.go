// Package retrieve runs the search pipeline: classify, fan out over the
// retrieval adapters, fuse by reciprocal rank, rerank, group, and assemble
// the caller-facing output.
package retrieve

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/domain/matchkind"
	"github.com/worshipdeck/sheetsearch/internal/domain/musickey"
	"github.com/worshipdeck/sheetsearch/internal/logger"
	"github.com/worshipdeck/sheetsearch/internal/metrics"
	"github.com/worshipdeck/sheetsearch/internal/repository/respcache"
	"github.com/worshipdeck/sheetsearch/internal/usecase/grouping"
)

// Options bound the pipeline's fan-out and filtering.
type Options struct {
	// AdapterLimit caps each adapter's result list.
	AdapterLimit int
	// PoolLimit bounds the candidate pool for in-process matching.
	PoolLimit int
	// FuzzyMinSimilarity is the similarity floor for the fuzzy adapter.
	FuzzyMinSimilarity float64
	// VectorMinSimilarity is the cosine-similarity floor for the semantic adapter.
	VectorMinSimilarity float64
	// AdapterTimeout bounds each adapter call.
	AdapterTimeout time.Duration
	// RerankTopN is the fused-list slice handed to the reranker.
	RerankTopN int
	// DisplayCount is the default result count when the query requests none.
	DisplayCount int
}

// Service is the search pipeline.
type Service struct {
	songs      SongReader
	classifier Classifier
	embedder   Embedder      // nil disables the semantic adapter
	reranker   Reranker      // nil keeps the fused order
	cache      ResponseCache // nil disables output caching
	opts       Options
}

// New creates the search service. embedder, reranker, and cache may be nil.
func New(
	songs SongReader, classifier Classifier,
	embedder Embedder, reranker Reranker, cache ResponseCache,
	opts Options,
) *Service {
	return &Service{
		songs:      songs,
		classifier: classifier,
		embedder:   embedder,
		reranker:   reranker,
		cache:      cache,
		opts:       opts,
	}
}

// Search runs the full pipeline for one query. limit overrides the requested
// result count when positive.
func (s *Service) Search(ctx context.Context, query string, limit int) (domain.SearchOutput, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchOutput{}, domain.ErrEmptyQuery
	}

	intent := s.classifier.Classify(query)

	if limit <= 0 {
		limit = intent.Count()
	}
	if limit <= 0 {
		limit = s.opts.DisplayCount
	}
	if limit > domain.MaxRequestedCount {
		limit = domain.MaxRequestedCount
	}

	cacheKey := respcache.Key{Query: query, Key: intent.Key(), Limit: limit}
	if s.cache != nil {
		if out, ok := s.cache.Get(ctx, cacheKey); ok {
			return out, nil
		}
	}

	var (
		out domain.SearchOutput
		err error
	)
	switch intent.Kind() {
	case domain.IntentKeyList:
		out, err = s.searchByKey(ctx, &intent, limit)
	case domain.IntentSpecificSong:
		out, err = s.searchSong(ctx, &intent, limit)
	default:
		// Nothing left to search with after filler stripping; accept all
		// within the pool bound.
		out, err = s.browseAll(ctx, &intent, limit)
	}
	if err != nil {
		return domain.SearchOutput{}, err
	}

	metrics.SearchOutcomeTotal.WithLabelValues(string(out.Outcome)).Inc()
	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, out)
	}
	return out, nil
}

// SongsInKey lists songs available in the given musical key, grouped and
// deduplicated like any other result list.
func (s *Service) SongsInKey(ctx context.Context, key string, limit int) (domain.SearchOutput, error) {
	k := musickey.Normalize(key)
	if !musickey.IsValid(k) {
		return domain.SearchOutput{}, domain.ErrInvalidKey
	}
	if limit <= 0 {
		limit = s.opts.DisplayCount
	}
	if limit > domain.MaxRequestedCount {
		limit = domain.MaxRequestedCount
	}

	intent := domain.NewQueryIntent(domain.IntentKeyList, k, limit, "")
	out, err := s.searchByKey(ctx, &intent, limit)
	if err != nil {
		return domain.SearchOutput{}, err
	}
	metrics.SearchOutcomeTotal.WithLabelValues(string(out.Outcome)).Inc()
	return out, nil
}

// searchByKey serves key-list intents with a single tag query, no fan-out.
func (s *Service) searchByKey(ctx context.Context, intent *domain.QueryIntent, limit int) (domain.SearchOutput, error) {
	cands, err := s.songs.FindByKey(ctx, intent.Key(), s.opts.PoolLimit)
	if err != nil {
		return domain.SearchOutput{}, err
	}

	ranked := make([]domain.RankedCandidate, len(cands))
	for i, c := range cands {
		ranked[i] = domain.RankedCandidate{Candidate: c, Score: 1.0 / float64(rrfK+i+1)}
	}

	groups, err := grouping.Group(ranked, intent.Key(), limit)
	if err != nil {
		return domain.SearchOutput{}, err
	}
	if len(groups) == 0 {
		return domain.SearchOutput{Outcome: domain.OutcomeZeroResults}, nil
	}
	return domain.SearchOutput{Outcome: domain.OutcomeOK, Songs: groups}, nil
}

// browseAll serves queries left without search terms by filler stripping.
// A bounded pool scan stands in for the adapter fan-out.
func (s *Service) browseAll(ctx context.Context, intent *domain.QueryIntent, limit int) (domain.SearchOutput, error) {
	cands, err := s.songs.CandidatePool(ctx, s.opts.PoolLimit)
	if err != nil {
		return domain.SearchOutput{}, err
	}

	ranked := make([]domain.RankedCandidate, len(cands))
	for i, c := range cands {
		ranked[i] = domain.RankedCandidate{Candidate: c, Score: 1.0 / float64(rrfK+i+1)}
	}

	groups, err := grouping.Group(ranked, intent.Key(), limit)
	if err != nil {
		return domain.SearchOutput{}, err
	}
	if len(groups) == 0 {
		return domain.SearchOutput{Outcome: domain.OutcomeZeroResults}, nil
	}
	return domain.SearchOutput{Outcome: domain.OutcomeOK, Songs: groups}, nil
}

// searchSong fans out over the retrieval adapters, waits for all of them, and
// fuses their lists. The OCR fallback list only participates when every other
// adapter came back empty.
func (s *Service) searchSong(ctx context.Context, intent *domain.QueryIntent, limit int) (domain.SearchOutput, error) {
	terms := intent.Terms()
	kinds := matchkind.All()

	slot := make(map[matchkind.Kind]int, len(kinds))
	for i, k := range kinds {
		slot[k] = i
	}
	lists := make([][]domain.Candidate, len(kinds))

	embCh := make(chan []float32, 1)

	g, gctx := errgroup.WithContext(ctx)

	if s.embedder != nil {
		// Computed opportunistically in parallel with the text adapters.
		g.Go(func() error {
			ectx, cancel := context.WithTimeout(gctx, s.opts.AdapterTimeout)
			defer cancel()
			res, err := s.embedder.Embed(ectx, terms)
			if err != nil {
				logger.FromContext(ctx).Warn("query embedding failed, skipping semantic adapter",
					zap.Error(err))
				embCh <- nil
				return nil
			}
			embCh <- res.Embedding
			return nil
		})
	} else {
		embCh <- nil
	}

	g.Go(func() error {
		lists[slot[matchkind.Exact]] = s.runAdapter(gctx, matchkind.Exact,
			func(ctx context.Context) ([]domain.Candidate, error) {
				return s.songs.FindByTitle(ctx, terms, s.opts.AdapterLimit)
			})
		return nil
	})

	g.Go(func() error {
		lists[slot[matchkind.Keyword]] = s.runAdapter(gctx, matchkind.Keyword,
			func(ctx context.Context) ([]domain.Candidate, error) {
				return s.songs.SearchKeyword(ctx, terms, s.opts.AdapterLimit)
			})
		return nil
	})

	g.Go(func() error {
		lists[slot[matchkind.Alias]] = s.runAdapter(gctx, matchkind.Alias,
			func(ctx context.Context) ([]domain.Candidate, error) {
				return s.aliasLookup(ctx, terms, s.opts.AdapterLimit)
			})
		return nil
	})

	g.Go(func() error {
		// One pool fetch feeds both in-process adapters.
		var pool []domain.Candidate
		lists[slot[matchkind.Normalized]] = s.runAdapter(gctx, matchkind.Normalized,
			func(ctx context.Context) ([]domain.Candidate, error) {
				var err error
				pool, err = s.songs.CandidatePool(ctx, s.opts.PoolLimit)
				if err != nil {
					return nil, err
				}
				return matchNormalized(pool, terms, s.opts.AdapterLimit), nil
			})
		lists[slot[matchkind.Fuzzy]] = s.runAdapter(gctx, matchkind.Fuzzy,
			func(context.Context) ([]domain.Candidate, error) {
				return matchFuzzy(pool, terms, s.opts.FuzzyMinSimilarity, s.opts.AdapterLimit), nil
			})
		return nil
	})

	g.Go(func() error {
		vec := <-embCh
		if vec == nil {
			return nil
		}
		lists[slot[matchkind.Vector]] = s.runAdapter(gctx, matchkind.Vector,
			func(ctx context.Context) ([]domain.Candidate, error) {
				return s.songs.SearchSemantic(ctx, vec, s.opts.VectorMinSimilarity, s.opts.AdapterLimit)
			})
		return nil
	})

	g.Go(func() error {
		lists[slot[matchkind.Recognized]] = s.runAdapter(gctx, matchkind.Recognized,
			func(ctx context.Context) ([]domain.Candidate, error) {
				return s.songs.FindByRecognizedText(ctx, terms, s.opts.AdapterLimit)
			})
		return nil
	})

	_ = g.Wait() // adapters recover their own failures

	othersEmpty := true
	for _, k := range kinds {
		if k == matchkind.Recognized {
			continue
		}
		if len(lists[slot[k]]) > 0 {
			othersEmpty = false
			break
		}
	}
	if !othersEmpty {
		// OCR text is noisy; it is a last resort, not a rank booster.
		lists[slot[matchkind.Recognized]] = nil
	}

	ranked := fuse(lists, kinds)
	if len(ranked) == 0 {
		return domain.SearchOutput{Outcome: domain.OutcomeZeroResults}, nil
	}

	ranked = s.applyRerank(ctx, terms, ranked)

	groups, err := grouping.Group(ranked, intent.Key(), limit)
	if err != nil {
		return domain.SearchOutput{}, err
	}
	if len(groups) == 0 {
		return domain.SearchOutput{Outcome: domain.OutcomeZeroResults}, nil
	}

	if len(groups) == 1 && len(groups[0].Keys) >= 2 && !intent.HasKey() {
		return domain.SearchOutput{
			Outcome: domain.OutcomeNeedsKeySelection,
			Songs:   groups,
			Keys:    groups[0].Keys,
		}, nil
	}

	return domain.SearchOutput{Outcome: domain.OutcomeOK, Songs: groups}, nil
}

// applyRerank hands the top fused slice to the reranker and splices its order
// back in. Candidates beyond the slice keep their fused order.
func (s *Service) applyRerank(ctx context.Context, query string, ranked []domain.RankedCandidate) []domain.RankedCandidate {
	if s.reranker == nil || len(ranked) < 2 {
		return ranked
	}

	topN := s.opts.RerankTopN
	if topN <= 0 || topN > len(ranked) {
		topN = len(ranked)
	}
	top := ranked[:topN]

	docs := make([]string, len(top))
	for i := range top {
		docs[i] = rerankDoc(&top[i].Candidate)
	}

	indices := s.reranker.Rerank(ctx, query, docs, topN)

	reordered := make([]domain.RankedCandidate, 0, len(ranked))
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(top) {
			continue
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		reordered = append(reordered, top[idx])
	}
	for i := range top {
		if _, ok := seen[i]; !ok {
			reordered = append(reordered, top[i])
		}
	}
	final := append(reordered, ranked[topN:]...)

	// Rebuild rank-derived scores so the rerank order survives downstream
	// score-based sorting.
	for i := range final {
		final[i].Score = 1.0 / float64(rrfK+i+1)
	}
	return final
}

// rerankDoc is the text blob a rerank stage scores for one candidate.
func rerankDoc(c *domain.Candidate) string {
	if c.TitleAlt() != "" && c.TitleAlt() != c.Title() {
		return c.Title() + " / " + c.TitleAlt()
	}
	return c.Title()
}
