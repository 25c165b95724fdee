package retrieve

import (
	"sort"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/domain/matchkind"
)

// rrfK is the Reciprocal Rank Fusion damping constant (Cormack et al. 2009).
const rrfK = 60

// fuse merges per-adapter ranked lists via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) over the adapters that returned d, with
// rank 1-indexed within each adapter's own list. Ties are broken by discovery
// order, which is deterministic because lists arrive in fixed adapter order.
func fuse(lists [][]domain.Candidate, kinds []matchkind.Kind) []domain.RankedCandidate {
	type scored struct {
		ranked    domain.RankedCandidate
		discovery int
	}

	merged := make(map[string]*scored)
	var order []string

	for li, list := range lists {
		for rank, c := range list {
			s := 1.0 / float64(rrfK+rank+1)
			e, ok := merged[c.ID()]
			if !ok {
				e = &scored{
					ranked:    domain.RankedCandidate{Candidate: c},
					discovery: len(order),
				}
				merged[c.ID()] = e
				order = append(order, c.ID())
			}
			e.ranked.Score += s
			e.ranked.Kinds = append(e.ranked.Kinds, kinds[li])
		}
	}

	results := make([]*scored, 0, len(order))
	for _, id := range order {
		results = append(results, merged[id])
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ranked.Score != results[j].ranked.Score {
			return results[i].ranked.Score > results[j].ranked.Score
		}
		return results[i].discovery < results[j].discovery
	})

	out := make([]domain.RankedCandidate, len(results))
	for i, r := range results {
		out[i] = r.ranked
	}
	return out
}
