package rerank

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type stubStage struct {
	name      string
	available bool
	indices   []int
	err       error
	calls     int
}

func (s *stubStage) Name() string    { return s.name }
func (s *stubStage) Available() bool { return s.available }

func (s *stubStage) Rerank(_ context.Context, _ string, _ []string, _ int) ([]int, error) {
	s.calls++
	return s.indices, s.err
}

func TestCascadeFirstAvailableStageWins(t *testing.T) {
	first := &stubStage{name: "first", available: true, indices: []int{2, 0, 1}}
	second := &stubStage{name: "second", available: true, indices: []int{0, 1, 2}}

	c := New([]Stage{first, second}, time.Second)

	got := c.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 3)
	if !reflect.DeepEqual(got, []int{2, 0, 1}) {
		t.Errorf("indices = %v, want [2 0 1]", got)
	}
	if second.calls != 0 {
		t.Errorf("second stage called %d times, want 0", second.calls)
	}
}

func TestCascadeFallsThroughOnError(t *testing.T) {
	failing := &stubStage{name: "failing", available: true, err: errors.New("boom")}
	backup := &stubStage{name: "backup", available: true, indices: []int{1, 0}}

	c := New([]Stage{failing, backup}, time.Second)

	got := c.Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	if !reflect.DeepEqual(got, []int{1, 0}) {
		t.Errorf("indices = %v, want [1 0]", got)
	}
}

func TestCascadeSkipsUnavailableStages(t *testing.T) {
	off := &stubStage{name: "off", available: false, indices: []int{1, 0}}

	c := New([]Stage{off}, time.Second)

	got := c.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 2)
	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("indices = %v, want identity [0 1]", got)
	}
	if off.calls != 0 {
		t.Errorf("unavailable stage called %d times, want 0", off.calls)
	}
}

func TestCascadeIdentityWhenEmpty(t *testing.T) {
	c := New(nil, 0)

	got := c.Rerank(context.Background(), "q", []string{"a", "b"}, 5)
	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("indices = %v, want [0 1]", got)
	}
}
