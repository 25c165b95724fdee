package retrieve

import (
	"math"
	"testing"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/domain/matchkind"
)

func cand(t *testing.T, id string) domain.Candidate {
	t.Helper()
	c, err := domain.NewCandidate(id, "title-"+id, "", "", "", "", id+".jpg", "", 0)
	if err != nil {
		t.Fatalf("NewCandidate: %v", err)
	}
	return c
}

func TestFuseDisjointLists(t *testing.T) {
	lists := [][]domain.Candidate{
		{cand(t, "a"), cand(t, "b")},
		{cand(t, "c"), cand(t, "d")},
	}

	ranked := fuse(lists, []matchkind.Kind{matchkind.Exact, matchkind.Keyword})
	if len(ranked) != 4 {
		t.Fatalf("got %d results, want 4", len(ranked))
	}

	// Equal rank-1 scores tie; discovery order decides.
	if ranked[0].Candidate.ID() != "a" || ranked[1].Candidate.ID() != "c" {
		t.Errorf("order = [%s %s], want rank-1 hits a then c",
			ranked[0].Candidate.ID(), ranked[1].Candidate.ID())
	}
}

func TestFuseCorroboratedCandidateWins(t *testing.T) {
	lists := [][]domain.Candidate{
		{cand(t, "a"), cand(t, "b"), cand(t, "c")},
		{cand(t, "b"), cand(t, "d"), cand(t, "a")},
	}

	ranked := fuse(lists, []matchkind.Kind{matchkind.Exact, matchkind.Keyword})
	if len(ranked) != 4 {
		t.Fatalf("got %d results, want 4", len(ranked))
	}

	// b: 1/62 + 1/61, a: 1/61 + 1/63 -> b first.
	if ranked[0].Candidate.ID() != "b" {
		t.Errorf("top = %s, want b", ranked[0].Candidate.ID())
	}

	wantB := 1.0/62 + 1.0/61
	if math.Abs(ranked[0].Score-wantB) > 1e-12 {
		t.Errorf("score(b) = %v, want %v", ranked[0].Score, wantB)
	}

	// Corroborated candidates outrank single-list ones.
	for _, rc := range ranked[2:] {
		if id := rc.Candidate.ID(); id != "c" && id != "d" {
			t.Errorf("single-list candidate expected in tail, got %s", id)
		}
	}
}

func TestFuseMonotonicBoosting(t *testing.T) {
	one := fuse([][]domain.Candidate{{cand(t, "a")}}, []matchkind.Kind{matchkind.Exact})
	two := fuse([][]domain.Candidate{{cand(t, "a")}, {cand(t, "a")}},
		[]matchkind.Kind{matchkind.Exact, matchkind.Fuzzy})

	if two[0].Score <= one[0].Score {
		t.Errorf("two-adapter score %v not greater than single-adapter %v",
			two[0].Score, one[0].Score)
	}
}

func TestFuseAdapterOrderIndependence(t *testing.T) {
	exact := []domain.Candidate{cand(t, "a"), cand(t, "b")}
	fuzzy := []domain.Candidate{cand(t, "b"), cand(t, "c")}

	ab := fuse([][]domain.Candidate{exact, fuzzy}, []matchkind.Kind{matchkind.Exact, matchkind.Fuzzy})
	ba := fuse([][]domain.Candidate{fuzzy, exact}, []matchkind.Kind{matchkind.Fuzzy, matchkind.Exact})

	if len(ab) != len(ba) {
		t.Fatalf("lengths differ: %d vs %d", len(ab), len(ba))
	}
	for i := range ab {
		if math.Abs(ab[i].Score-ba[i].Score) > 1e-12 {
			t.Errorf("position %d: scores differ: %v vs %v", i, ab[i].Score, ba[i].Score)
		}
	}
	// The corroborated candidate wins under either invocation order.
	if ab[0].Candidate.ID() != "b" || ba[0].Candidate.ID() != "b" {
		t.Errorf("top = %s / %s, want b in both", ab[0].Candidate.ID(), ba[0].Candidate.ID())
	}
}

func TestFuseAnnotatesContributingKinds(t *testing.T) {
	lists := [][]domain.Candidate{
		{cand(t, "a")},
		{cand(t, "a")},
		{cand(t, "b")},
	}
	kinds := []matchkind.Kind{matchkind.Exact, matchkind.Alias, matchkind.Fuzzy}

	ranked := fuse(lists, kinds)

	if !ranked[0].ContributedBy(matchkind.Exact) || !ranked[0].ContributedBy(matchkind.Alias) {
		t.Errorf("kinds(a) = %v, want exact+alias", ranked[0].Kinds)
	}
	if ranked[0].ContributedBy(matchkind.Fuzzy) {
		t.Errorf("kinds(a) = %v, fuzzy should not contribute", ranked[0].Kinds)
	}
	if !ranked[1].ContributedBy(matchkind.Fuzzy) {
		t.Errorf("kinds(b) = %v, want fuzzy", ranked[1].Kinds)
	}
}
