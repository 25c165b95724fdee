// Package grouping assembles ranked candidates into deduplicated song groups.
package grouping

import (
	"regexp"
	"sort"
	"strings"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/domain/musickey"
	"github.com/worshipdeck/sheetsearch/internal/songtext"
)

var (
	extensionRe  = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|pdf|tiff?)$`)
	trailingNRe  = regexp.MustCompile(`[\s_]*\(\d+\)$`)
	pageSuffixRe = regexp.MustCompile(`(?i)[\s_]+(?:page|p)\s*\.?\s*\d+$`)
	trailingNum  = regexp.MustCompile(`[\s_\-]+\d+$`)

	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	dedupTrailNumRe = regexp.MustCompile(`\d+$`)
)

// Group assembles ranked candidates into song groups, applies the optional key
// filter, sorts, deduplicates re-uploads of the same song, and truncates to
// limit. Candidate order carries the rank; earlier is better.
func Group(ranked []domain.RankedCandidate, filterKey string, limit int) ([]domain.SongGroup, error) {
	type bucket struct {
		title string
		pages []domain.Page
		score float64
	}

	buckets := make(map[string]*bucket)
	var keys []string

	for _, rc := range ranked {
		c := rc.Candidate
		if c.ID() == "" {
			return nil, domain.ErrMissingCandidateID
		}

		gk := groupKey(&c)
		b, ok := buckets[gk]
		if !ok {
			b = &bucket{title: c.Title()}
			buckets[gk] = b
			keys = append(keys, gk)
		}
		b.pages = append(b.pages, domain.Page{
			ID:       c.ID(),
			Filename: c.Filename(),
			ImageRef: c.ImageRef(),
			Key:      c.Key(),
			Score:    rc.Score,
		})
		if rc.Score > b.score {
			b.score = rc.Score
		}
	}

	groups := make([]domain.SongGroup, 0, len(buckets))
	for _, gk := range keys {
		b := buckets[gk]
		groups = append(groups, domain.SongGroup{
			Title: b.title,
			Keys:  distinctKeys(b.pages),
			Pages: b.pages,
			Score: b.score,
		})
	}

	if filterKey != "" {
		groups = applyKeyFilter(groups, filterKey)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].PageCount() != groups[j].PageCount() {
			return groups[i].PageCount() > groups[j].PageCount()
		}
		if groups[i].HasKey() != groups[j].HasKey() {
			return groups[i].HasKey()
		}
		return groups[i].Score > groups[j].Score
	})

	groups = dedupeByTitle(groups)

	for i := range groups {
		sort.SliceStable(groups[i].Pages, func(a, b int) bool {
			return groups[i].Pages[a].Filename < groups[i].Pages[b].Filename
		})
	}

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups, nil
}

// groupKey joins candidates that are pages of the same uploaded sheet. An
// explicit upload group identifier wins; otherwise the filename-derived base
// identifier is used.
func groupKey(c *domain.Candidate) string {
	if c.GroupID() != "" {
		return c.Title() + "::" + c.GroupID()
	}
	return c.Title() + "::" + baseIdentifier(c.Filename())
}

// baseIdentifier strips extensions (including accidental double extensions),
// "(n)" duplicates, and page-number suffixes from an upload filename.
func baseIdentifier(filename string) string {
	base := strings.TrimSpace(filename)
	for {
		stripped := extensionRe.ReplaceAllString(base, "")
		if stripped == base {
			break
		}
		base = stripped
	}
	base = trailingNRe.ReplaceAllString(base, "")
	base = pageSuffixRe.ReplaceAllString(base, "")
	base = trailingNum.ReplaceAllString(base, "")
	return strings.TrimSpace(base)
}

// applyKeyFilter keeps groups with at least one page in the requested key,
// restricted to those pages. When no group matches at all, the filter is a
// no-op so the user still sees something.
func applyKeyFilter(groups []domain.SongGroup, key string) []domain.SongGroup {
	var kept []domain.SongGroup
	for _, g := range groups {
		var pages []domain.Page
		for _, p := range g.Pages {
			if musickey.Contains(p.Key, key) {
				pages = append(pages, p)
			}
		}
		if len(pages) == 0 {
			continue
		}
		g.Pages = pages
		g.Keys = distinctKeys(pages)
		kept = append(kept, g)
	}
	if len(kept) == 0 {
		return groups
	}
	return kept
}

func distinctKeys(pages []domain.Page) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range pages {
		for _, k := range musickey.Split(p.Key) {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// dedupeByTitle keeps only the first (best-ranked) group per aggressively
// normalized title, removing inferior re-uploads of the same song. Keys from
// dropped duplicates are folded into the kept group so key selection still
// sees every key the song is available in.
func dedupeByTitle(groups []domain.SongGroup) []domain.SongGroup {
	seen := make(map[string]int, len(groups))
	kept := groups[:0]
	for _, g := range groups {
		norm := dedupeTitle(g.Title)
		if norm == "" {
			norm = songtext.Normalize(g.Title)
		}
		if i, ok := seen[norm]; ok {
			kept[i].Keys = unionKeys(kept[i].Keys, g.Keys)
			continue
		}
		seen[norm] = len(kept)
		kept = append(kept, g)
	}
	return kept
}

func unionKeys(base, extra []string) []string {
	have := make(map[string]struct{}, len(base))
	for _, k := range base {
		have[k] = struct{}{}
	}
	for _, k := range extra {
		if _, ok := have[k]; ok {
			continue
		}
		have[k] = struct{}{}
		base = append(base, k)
	}
	return base
}

// dedupeTitle normalizes a title for cross-group deduplication: parentheticals
// gone, standalone key tokens gone, trailing numbers gone, repeated words
// collapsed, first three significant tokens kept.
func dedupeTitle(title string) string {
	t := parentheticalRe.ReplaceAllString(title, " ")
	t = songtext.Clean(t)

	var tokens []string
	var prev string
	for _, tok := range strings.Fields(t) {
		if musickey.IsValid(musickey.Normalize(tok)) {
			continue
		}
		tok = dedupTrailNumRe.ReplaceAllString(tok, "")
		if tok == "" {
			continue
		}
		lower := strings.ToLower(tok)
		if lower == prev {
			continue
		}
		prev = lower
		tokens = append(tokens, lower)
		if len(tokens) == 3 {
			break
		}
	}

	return songtext.Normalize(strings.Join(tokens, ""))
}
