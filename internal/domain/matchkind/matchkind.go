// Package matchkind enumerates the retrieval strategies that can contribute
// a candidate. Consumers switching on Kind must handle every constant.
package matchkind

// Kind is the retrieval strategy that produced a hit.
type Kind string

// Match kind constants, one per retrieval adapter.
const (
	// Exact is a raw substring match on title fields.
	Exact Kind = "exact"
	// Keyword is an inverted-index full-text rank over titles and recognized text.
	Keyword Kind = "keyword"
	// Alias is a cross-language alias table lookup.
	Alias Kind = "alias"
	// Normalized is a match on canonicalized (NFKC, case-folded, de-spaced) titles.
	Normalized Kind = "normalized"
	// Fuzzy is an edit-distance similarity match above the similarity floor.
	Fuzzy Kind = "fuzzy"
	// Vector is a semantic embedding similarity match.
	Vector Kind = "vector"
	// Recognized is a substring match on OCR-recognized sheet text.
	Recognized Kind = "recognized"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	switch k {
	case Exact, Keyword, Alias, Normalized, Fuzzy, Vector, Recognized:
		return true
	}
	return false
}

// All returns every match kind in fixed adapter invocation order.
func All() []Kind {
	return []Kind{Exact, Keyword, Alias, Normalized, Fuzzy, Vector, Recognized}
}
