package pca

import (
	"math"
	"testing"
)

func TestProjectSeparatesGroups(t *testing.T) {
	t.Parallel()

	genes := []string{"g1", "g2", "g3"}
	samples := []string{"c1", "c2", "t1", "t2"}
	// Two genes move strongly between the groups; one is flat.
	norm := [][]float64{
		{1, 1, 100, 100},
		{2, 2, 200, 200},
		{5, 5, 5, 5},
	}

	res, err := Project(genes, samples, norm)
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}

	var total float64
	for _, v := range res.Explained {
		if v < 0 {
			t.Fatalf("negative explained variance: %g", v)
		}
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("explained variance must sum to 1, got %g", total)
	}
	if res.Explained[0] < 0.95 {
		t.Fatalf("first component must dominate, got %g", res.Explained[0])
	}

	rows, _ := res.Scores.Dims()
	if rows != len(samples) {
		t.Fatalf("expected %d score rows, got %d", len(samples), rows)
	}

	// Replicates coincide on PC1; the groups are far apart.
	if d := math.Abs(res.Scores.At(0, 0) - res.Scores.At(1, 0)); d > 1e-8 {
		t.Fatalf("replicates differ on PC1 by %g", d)
	}
	if d := math.Abs(res.Scores.At(0, 0) - res.Scores.At(2, 0)); d < 1 {
		t.Fatalf("groups too close on PC1: %g", d)
	}
}

func TestProjectValidatesShape(t *testing.T) {
	t.Parallel()

	if _, err := Project(nil, nil, nil); err == nil {
		t.Fatal("empty matrix must be rejected")
	}
	if _, err := Project([]string{"g1"}, []string{"s1", "s2"}, [][]float64{{1}}); err == nil {
		t.Fatal("ragged row must be rejected")
	}
}

func TestTopLoadings(t *testing.T) {
	t.Parallel()

	genes := []string{"g1", "g2", "g3", "g4"}
	samples := []string{"c1", "c2", "t1", "t2"}
	norm := [][]float64{
		{1, 1, 500, 500},
		{400, 400, 1, 1},
		{10, 10, 10, 10},
		{9, 11, 10, 10},
	}

	res, err := Project(genes, samples, norm)
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}

	top, bottom := res.TopLoadings(0, 1)
	if len(top) != 1 || len(bottom) != 1 {
		t.Fatalf("expected 1 contribution each, got %d/%d", len(top), len(bottom))
	}
	// g1 and g2 move in opposite directions, so they sit at the two ends.
	ends := map[string]bool{top[0].GeneID: true, bottom[0].GeneID: true}
	if !ends["g1"] || !ends["g2"] {
		t.Fatalf("expected g1 and g2 at the extremes, got %v", ends)
	}

	if top, bottom := res.TopLoadings(99, 1); top != nil || bottom != nil {
		t.Fatal("out-of-range component must yield nil")
	}
}
