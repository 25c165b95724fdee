package domain

// IntentKind classifies what the user is asking for.
type IntentKind string

// Intent kind constants.
const (
	// IntentKeyList asks for N songs in a given musical key.
	IntentKeyList IntentKind = "key_list"
	// IntentSpecificSong asks for a particular song by title or lyrics.
	IntentSpecificSong IntentKind = "specific_song"
	// IntentAmbiguous is a query too vague to carry search terms.
	IntentAmbiguous IntentKind = "ambiguous"
)

// Requested result count bounds.
const (
	MinRequestedCount = 1
	MaxRequestedCount = 20
)

// QueryIntent is the classification of one raw query. Produced once per
// request; classification never fails.
type QueryIntent struct {
	kind  IntentKind
	key   string
	count int
	terms string
}

// NewQueryIntent creates a classification result. count 0 means "not
// requested"; non-zero counts are clamped to [MinRequestedCount, MaxRequestedCount].
func NewQueryIntent(kind IntentKind, key string, count int, terms string) QueryIntent {
	if count != 0 {
		if count < MinRequestedCount {
			count = MinRequestedCount
		}
		if count > MaxRequestedCount {
			count = MaxRequestedCount
		}
	}
	return QueryIntent{kind: kind, key: key, count: count, terms: terms}
}

// Kind returns the intent kind.
func (q *QueryIntent) Kind() IntentKind { return q.kind }

// Key returns the requested musical key ("" when none).
// For key-list intents it selects the list; for specific-song intents it
// filters the grouped results.
func (q *QueryIntent) Key() string { return q.key }

// Count returns the requested result count (0 when not requested).
func (q *QueryIntent) Count() int { return q.count }

// Terms returns the cleaned search terms after filler stripping.
func (q *QueryIntent) Terms() string { return q.terms }

// HasKey reports whether a key was requested.
func (q *QueryIntent) HasKey() bool { return q.key != "" }
