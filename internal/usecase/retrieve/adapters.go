package retrieve

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/domain/matchkind"
	"github.com/worshipdeck/sheetsearch/internal/logger"
	"github.com/worshipdeck/sheetsearch/internal/metrics"
	"github.com/worshipdeck/sheetsearch/internal/songtext"
)

// runAdapter executes one retrieval adapter under its own timeout. Failures
// degrade to an empty list; they never abort the overall search.
func (s *Service) runAdapter(
	ctx context.Context, kind matchkind.Kind,
	fn func(ctx context.Context) ([]domain.Candidate, error),
) []domain.Candidate {
	actx, cancel := context.WithTimeout(ctx, s.opts.AdapterTimeout)
	defer cancel()

	start := time.Now()
	cands, err := fn(actx)
	metrics.AdapterDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, domain.ErrKeywordSearchNotSupported) {
			metrics.AdapterRequestsTotal.WithLabelValues(string(kind), "unsupported").Inc()
			return nil
		}
		metrics.AdapterRequestsTotal.WithLabelValues(string(kind), "error").Inc()
		logger.FromContext(ctx).Warn("retrieval adapter failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil
	}

	metrics.AdapterRequestsTotal.WithLabelValues(string(kind), "ok").Inc()
	metrics.AdapterHits.WithLabelValues(string(kind)).Observe(float64(len(cands)))

	if len(cands) > s.opts.AdapterLimit {
		cands = cands[:s.opts.AdapterLimit]
	}
	return cands
}

// aliasLookup bridges Korean/English title variants. Aliases whose normalized
// form contains (or is contained by) the normalized query select their
// canonical titles, which are then fetched exactly.
func (s *Service) aliasLookup(ctx context.Context, terms string, limit int) ([]domain.Candidate, error) {
	aliases, err := s.songs.Aliases(ctx)
	if err != nil {
		return nil, err
	}

	nq := songtext.Normalize(terms)
	if nq == "" {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var titles []string
	for alias, canonical := range aliases {
		na := songtext.Normalize(alias)
		if na == "" {
			continue
		}
		if !strings.Contains(na, nq) && !strings.Contains(nq, na) {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		titles = append(titles, canonical)
	}
	if len(titles) == 0 {
		return nil, nil
	}
	// Map iteration order is random; sort for a deterministic ranked list.
	sort.Strings(titles)

	return s.songs.FindByTitles(ctx, titles, limit)
}

// matchNormalized tests containment between the canonicalized query and each
// pool candidate's canonicalized titles, in either direction.
func matchNormalized(pool []domain.Candidate, terms string, limit int) []domain.Candidate {
	nq := songtext.Normalize(terms)
	if nq == "" {
		return nil
	}

	var out []domain.Candidate
	for _, c := range pool {
		if normalizedContains(c.Title(), nq) || normalizedContains(c.TitleAlt(), nq) {
			out = append(out, c)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func normalizedContains(title, nq string) bool {
	nt := songtext.Normalize(title)
	if nt == "" {
		return false
	}
	return strings.Contains(nt, nq) || strings.Contains(nq, nt)
}

// matchFuzzy ranks pool candidates by edit-distance similarity against the
// query, keeping those at or above minSimilarity.
func matchFuzzy(pool []domain.Candidate, terms string, minSimilarity float64, limit int) []domain.Candidate {
	type hit struct {
		cand domain.Candidate
		sim  float64
	}

	var hits []hit
	for _, c := range pool {
		sim := songtext.Similarity(terms, c.Title())
		if alt := songtext.Similarity(terms, c.TitleAlt()); alt > sim {
			sim = alt
		}
		if sim < minSimilarity {
			continue
		}
		hits = append(hits, hit{cand: c, sim: sim})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].sim > hits[j].sim })

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.Candidate, len(hits))
	for i, h := range hits {
		out[i] = h.cand
	}
	return out
}
