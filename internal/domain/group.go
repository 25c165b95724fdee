package domain

// Page is one sheet image belonging to a song group.
type Page struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	ImageRef string  `json:"image_ref,omitempty"`
	Key      string  `json:"key,omitempty"`
	Score    float64 `json:"score"`
}

// SongGroup is the logical, deduplicated representation of one song assembled
// from one or more page images. Built fresh per request, never persisted.
type SongGroup struct {
	Title string   `json:"title"`
	Keys  []string `json:"keys,omitempty"`
	// Pages are ordered by filename for stable page order.
	Pages []Page  `json:"pages"`
	Score float64 `json:"score"`
}

// PageCount returns the number of pages in the group.
func (g *SongGroup) PageCount() int { return len(g.Pages) }

// HasKey reports whether any page carries key metadata.
func (g *SongGroup) HasKey() bool { return len(g.Keys) > 0 }

// Outcome is the structured intent flag returned alongside the song list.
type Outcome string

// Outcome constants.
const (
	// OutcomeOK means an ordered song list is ready for rendering.
	OutcomeOK Outcome = "ok"
	// OutcomeZeroResults means no adapter produced a usable candidate.
	OutcomeZeroResults Outcome = "zero_results"
	// OutcomeNeedsKeySelection means exactly one song matched but it exists
	// in several keys and the user did not pick one.
	OutcomeNeedsKeySelection Outcome = "needs_key_selection"
)

// SearchOutput is the caller-facing result of one pipeline run.
type SearchOutput struct {
	Outcome Outcome     `json:"outcome"`
	Songs   []SongGroup `json:"songs"`
	// Keys lists the selectable keys when Outcome is OutcomeNeedsKeySelection.
	Keys []string `json:"keys,omitempty"`
}
