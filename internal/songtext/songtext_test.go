package songtext

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Holy Forever", "holyforever"},
		{"holy forever", "holyforever"},
		{"  Way   Maker ", "waymaker"},
		{"주 은혜임을", "주은혜임을"},
		{"ＡＢＣ", "abc"}, // fullwidth folds under NFKC
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Way   Maker ", "Way Maker"},
		{"주\t은혜임을\n", "주 은혜임을"},
		{"one", "one"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarityIdenticalAfterNormalization(t *testing.T) {
	if got := Similarity("Holy Forever", "holy forever"); got != 1.0 {
		t.Errorf("Similarity = %v, want 1.0", got)
	}
	if got := Similarity("주 은혜임을", "주은혜임을"); got != 1.0 {
		t.Errorf("Similarity = %v, want 1.0", got)
	}
}

func TestSimilarityContainment(t *testing.T) {
	if got := Similarity("Way Maker (Live)", "Way Maker"); got != 0.9 {
		t.Errorf("Similarity = %v, want 0.9 for substring containment", got)
	}
	// Symmetric.
	if got := Similarity("Way Maker", "Way Maker (Live)"); got != 0.9 {
		t.Errorf("Similarity = %v, want 0.9 for reversed containment", got)
	}
}

func TestSimilarityNoOverlap(t *testing.T) {
	if got := Similarity("abc", "xyz"); got != 0 {
		t.Errorf("Similarity = %v, want 0 for disjoint strings", got)
	}
	if got := Similarity("", "anything"); got != 0 {
		t.Errorf("Similarity = %v, want 0 for empty input", got)
	}
}

func TestSimilarityEditDistanceRatio(t *testing.T) {
	// "waymaker" vs "waymakor": one substitution over eight runes.
	got := Similarity("Way Maker", "Way Makor")
	want := 1.0 - 1.0/8.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}

	if a, b := Similarity("Oceans", "Ocean"), Similarity("Oceans", "Osean"); a <= b {
		t.Errorf("closer string should score higher: %v <= %v", a, b)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Hosanna", "Hosianna"},
		{"주 은혜임을", "주은혜"},
		{"Goodness of God", "Goodness"},
	}
	for _, p := range pairs {
		if a, b := Similarity(p[0], p[1]), Similarity(p[1], p[0]); a != b {
			t.Errorf("Similarity(%q, %q) = %v, reversed = %v", p[0], p[1], a, b)
		}
	}
}

func TestLevenshteinRuneBased(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"은혜", "은혜임을", 2},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
