package grouping

import (
	"fmt"
	"testing"

	"github.com/worshipdeck/sheetsearch/internal/domain"
)

func ranked(t *testing.T, id, title, key, filename, groupID string, score float64) domain.RankedCandidate {
	t.Helper()
	c, err := domain.NewCandidate(id, title, "", key, "", "", filename, groupID, 0)
	if err != nil {
		t.Fatalf("NewCandidate: %v", err)
	}
	return domain.RankedCandidate{Candidate: c, Score: score}
}

func TestGroupMultiPageUpload(t *testing.T) {
	in := []domain.RankedCandidate{
		ranked(t, "3", "Song", "G", "Song_003.jpg", "", 0.031),
		ranked(t, "1", "Song", "G", "Song_001.jpg", "", 0.033),
		ranked(t, "2", "Song", "G", "Song_002.jpg", "", 0.032),
	}

	groups, err := Group(in, "", 10)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.PageCount() != 3 {
		t.Fatalf("page count = %d, want 3", g.PageCount())
	}
	for i, want := range []string{"Song_001.jpg", "Song_002.jpg", "Song_003.jpg"} {
		if g.Pages[i].Filename != want {
			t.Errorf("page %d = %q, want %q", i, g.Pages[i].Filename, want)
		}
	}
	if g.Score != 0.033 {
		t.Errorf("score = %v, want best page score 0.033", g.Score)
	}
}

func TestGroupDedupesReuploads(t *testing.T) {
	// Two uploads of the same title; the 3-page keyed upload must win even
	// though the single page scored higher.
	in := []domain.RankedCandidate{
		ranked(t, "solo", "위대하신주", "", "위대하신주.jpg", "", 0.05),
		ranked(t, "a1", "위대하신주", "G", "위대하신주 (1).jpg", "up-1", 0.03),
		ranked(t, "a2", "위대하신주", "G", "위대하신주 (2).jpg", "up-1", 0.03),
		ranked(t, "a3", "위대하신주", "G", "위대하신주 (3).jpg", "up-1", 0.03),
	}

	groups, err := Group(in, "", 10)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].PageCount() != 3 {
		t.Errorf("page count = %d, want 3-page upload kept", groups[0].PageCount())
	}
	if !groups[0].HasKey() {
		t.Error("kept group lost its key metadata")
	}
}

func TestGroupKeyFilter(t *testing.T) {
	in := []domain.RankedCandidate{
		ranked(t, "1", "Hosanna", "D, B", "hosanna.jpg", "", 0.04),
		ranked(t, "2", "Cornerstone", "A", "cornerstone.jpg", "", 0.05),
	}

	groups, err := Group(in, "D", 10)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want only the D,B group", len(groups))
	}
	if groups[0].Title != "Hosanna" {
		t.Errorf("kept %q, want Hosanna", groups[0].Title)
	}
}

func TestGroupKeyFilterFallsBackWhenNothingMatches(t *testing.T) {
	in := []domain.RankedCandidate{
		ranked(t, "1", "Cornerstone", "A", "cornerstone.jpg", "", 0.05),
	}

	groups, err := Group(in, "D", 10)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want filter to fall back to unfiltered", len(groups))
	}
}

func TestGroupTruncatesToLimit(t *testing.T) {
	titles := []string{
		"Goodness of God", "Build My Life", "Way Maker", "Living Hope",
		"Great Are You Lord", "What a Beautiful Name", "King of Kings", "Graves Into Gardens",
	}
	var in []domain.RankedCandidate
	for i, title := range titles {
		in = append(in, ranked(t, fmt.Sprintf("id-%d", i), title, "G",
			fmt.Sprintf("sheet%d_1.jpg", i), "", 0.05-float64(i)*0.001))
	}

	groups, err := Group(in, "", 5)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(groups) != 5 {
		t.Errorf("got %d groups, want 5", len(groups))
	}
}

func TestGroupMissingIDRejected(t *testing.T) {
	in := []domain.RankedCandidate{{Candidate: domain.Candidate{}, Score: 0.1}}

	if _, err := Group(in, "", 10); err != domain.ErrMissingCandidateID {
		t.Errorf("err = %v, want ErrMissingCandidateID", err)
	}
}

func TestBaseIdentifier(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Song_001.jpg", "Song"},
		{"sheet.jpg.jpg", "sheet"},
		{"praise (2).png", "praise"},
		{"hymn page 3.pdf", "hymn"},
		{"anthem_p.2.jpeg", "anthem"},
		{"plain.webp", "plain"},
	}
	for _, tt := range tests {
		if got := baseIdentifier(tt.in); got != tt.want {
			t.Errorf("baseIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedupeTitle(t *testing.T) {
	a := dedupeTitle("Holy Forever (live) G")
	b := dedupeTitle("Holy Holy Forever 2")
	if a != b {
		t.Errorf("dedupeTitle mismatch: %q vs %q", a, b)
	}
}
