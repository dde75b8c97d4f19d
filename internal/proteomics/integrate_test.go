package proteomics

import (
	"math"
	"testing"

	"github.com/catherinechia/p4sbip/internal/de"
	"github.com/catherinechia/p4sbip/internal/domain"
)

func testTable() *de.Table {
	return &de.Table{Rows: []de.Row{
		{GeneID: "g1", Log2FC: 2.5, PValue: 0.001},
		{GeneID: "g2", Log2FC: -2, PValue: 0.5},
		{GeneID: "g3", Log2FC: math.Inf(1), PValue: math.NaN()},
	}}
}

func TestIntegrateJoinsByGene(t *testing.T) {
	t.Parallel()

	records := []domain.ProteomicsRecord{
		{GeneID: "g1", Protein: "P1", AvgRatio: 2.0, RatioCount: 3},
		{GeneID: "g2", Protein: "P2", AvgRatio: 1.5, RatioCount: 2},
		{GeneID: "orphan", Protein: "P3", AvgRatio: -1.2, RatioCount: 1},
	}

	out := Integrate(records, testTable(), 0.1, 1, 1)

	if out.Standalone != 3 {
		t.Fatalf("expected 3 standalone rows, got %d", out.Standalone)
	}
	if out.Unmatched != 1 {
		t.Fatalf("expected 1 unmatched row, got %d", out.Unmatched)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 joined rows, got %d", len(out.Rows))
	}
	for _, row := range out.Rows {
		if row.GeneID == "orphan" {
			t.Fatal("unmatched row leaked into the joined view")
		}
	}

	first := out.Rows[0]
	if first.GeneID != "g1" || first.Class != de.ClassUp || !first.Concordant {
		t.Fatalf("unexpected first row: %+v", first)
	}
	second := out.Rows[1]
	if second.Class != de.ClassNone || second.Concordant {
		t.Fatalf("unexpected second row: %+v", second)
	}

	if out.Concordant != 1 || out.Discordant != 1 {
		t.Fatalf("unexpected tallies: %d concordant, %d discordant", out.Concordant, out.Discordant)
	}
}

func TestConcordanceQuadrantRule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ratio, lfc float64
		want       bool
	}{
		{2, 2, true},
		{-2, -3, true},
		{2, -2, false},
		{0.5, 2, false},  // ratio inside the axis bound
		{2, 0.5, false},  // fold-change inside the axis bound
		{2, math.NaN(), false},
		{2, math.Inf(1), false},
	}
	for _, c := range cases {
		if got := concordant(c.ratio, c.lfc, 1); got != c.want {
			t.Fatalf("concordant(%g, %g): expected %v, got %v", c.ratio, c.lfc, c.want, got)
		}
	}
}
