package glyph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassSortAndDedupe(t *testing.T) {
	c := Class{5, 1, 3, 1, 5}
	got := c.SortAndDedupe()
	want := Class{1, 3, 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SortAndDedupe mismatch (-want +got):\n%s", diff)
	}
	// receiver unmodified
	if c[0] != 5 {
		t.Fatalf("SortAndDedupe mutated receiver: %v", c)
	}
}

func TestClassKeyStable(t *testing.T) {
	a := Class{3, 1, 2}
	b := Class{1, 2, 3, 2}
	if a.Key() != b.Key() {
		t.Errorf("expected equal keys for equivalent classes, got %q vs %q", a.Key(), b.Key())
	}
}

func TestClassContains(t *testing.T) {
	c := Class{10, 20, 30}
	if !c.Contains(20) {
		t.Error("expected 20 to be contained")
	}
	if c.Contains(25) {
		t.Error("did not expect 25 to be contained")
	}
}
