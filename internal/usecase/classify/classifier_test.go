package classify

import (
	"testing"

	"github.com/worshipdeck/sheetsearch/internal/domain"
)

func TestClassifyKeyList(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		query string
		key   string
		count int
	}{
		{"korean key songs", "G키 찬양 찾아줘", "G", 0},
		{"korean chord list", "Em 코드 곡 리스트", "Em", 0},
		{"korean count", "D키 찬양 5개", "D", 5},
		{"english songs in key", "songs in C#", "C#", 0},
		{"english key songs", "A key songs", "A", 0},
		{"english top n", "top 3 songs in Bb", "Bb", 3},
		{"noun first", "찬양 리스트 F키로", "F", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := c.Classify(tt.query)
			if intent.Kind() != domain.IntentKeyList {
				t.Fatalf("kind = %s, want %s", intent.Kind(), domain.IntentKeyList)
			}
			if intent.Key() != tt.key {
				t.Errorf("key = %q, want %q", intent.Key(), tt.key)
			}
			if intent.Count() != tt.count {
				t.Errorf("count = %d, want %d", intent.Count(), tt.count)
			}
		})
	}
}

func TestClassifySpecificSong(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		query string
		terms string
		key   string
	}{
		{"korean title with filler", "주 은혜임을 찾아줘", "주 은혜임을", ""},
		{"english title with filler", "please find Amazing Grace", "Amazing Grace", ""},
		{"trailing filter key", "주 은혜임을 G키", "주 은혜임을", "G"},
		{"trailing filter key english", "Oceans D key", "Oceans", "D"},
		{"plain title", "위대하신 주", "위대하신 주", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := c.Classify(tt.query)
			if intent.Kind() != domain.IntentSpecificSong {
				t.Fatalf("kind = %s, want %s (terms %q)", intent.Kind(), domain.IntentSpecificSong, intent.Terms())
			}
			if intent.Terms() != tt.terms {
				t.Errorf("terms = %q, want %q", intent.Terms(), tt.terms)
			}
			if intent.Key() != tt.key {
				t.Errorf("key = %q, want %q", intent.Key(), tt.key)
			}
		})
	}
}

func TestClassifyAmbiguous(t *testing.T) {
	c := New()

	for _, query := range []string{"", "   ", "찾아줘", "please find"} {
		intent := c.Classify(query)
		if intent.Kind() != domain.IntentAmbiguous {
			t.Errorf("Classify(%q) kind = %s, want ambiguous (terms %q)",
				query, intent.Kind(), intent.Terms())
		}
	}
}

func TestClassifyDoesNotMisreadTitleAsKey(t *testing.T) {
	c := New()

	// "Amazing" starts with A but is not a key request.
	intent := c.Classify("Amazing Grace")
	if intent.Kind() != domain.IntentSpecificSong {
		t.Fatalf("kind = %s, want specific_song", intent.Kind())
	}
	if intent.HasKey() {
		t.Errorf("key = %q, want none", intent.Key())
	}
}

func TestClassifyCountClamped(t *testing.T) {
	c := New()

	intent := c.Classify("G키 찬양 100개")
	if intent.Count() != domain.MaxRequestedCount {
		t.Errorf("count = %d, want %d", intent.Count(), domain.MaxRequestedCount)
	}
}
