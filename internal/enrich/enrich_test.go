package enrich

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/catherinechia/p4sbip/internal/domain"
)

func rankedEffects() map[string]float64 {
	effects := map[string]float64{}
	// Five strong genes, fifteen weak ones.
	for i := 0; i < 5; i++ {
		effects[fmt.Sprintf("hot%02d", i)] = 10 - float64(i)
	}
	for i := 0; i < 15; i++ {
		effects[fmt.Sprintf("cold%02d", i)] = 0.5 - float64(i)*0.01
	}
	return effects
}

func TestNewRankedList(t *testing.T) {
	t.Parallel()

	list := NewRankedList(map[string]float64{
		"a": 1, "b": 3, "c": math.NaN(), "d": 3, "e": math.Inf(-1),
	})
	if list.Dropped != 2 {
		t.Fatalf("expected 2 dropped genes, got %d", list.Dropped)
	}
	if !reflect.DeepEqual(list.Genes, []string{"b", "d", "a"}) {
		t.Fatalf("unexpected order: %v", list.Genes)
	}
	if !reflect.DeepEqual(list.Stats, []float64{3, 3, 1}) {
		t.Fatalf("unexpected stats: %v", list.Stats)
	}
}

func TestTranslateStats(t *testing.T) {
	t.Parallel()

	table := map[string]string{"a": "K1", "b": "K2"}
	translated, unmapped := TranslateStats(
		map[string]float64{"a": 1, "b": 2, "c": 3},
		func(id string) (string, bool) {
			v, ok := table[id]
			return v, ok
		})
	if unmapped != 1 {
		t.Fatalf("expected 1 unmapped gene, got %d", unmapped)
	}
	if translated["K1"] != 1 || translated["K2"] != 2 {
		t.Fatalf("unexpected translation: %v", translated)
	}
}

func TestRunScoresTopSet(t *testing.T) {
	t.Parallel()

	list := NewRankedList(rankedEffects())
	sets := []domain.GeneSet{
		{ID: "top", Description: "strong genes", Genes: []string{"hot00", "hot01", "hot02", "hot03", "hot04"}},
	}
	cfg := Config{MinSetSize: 2, MaxSetSize: 10, Permutations: 200, Seed: 1}

	summary, err := Run(list, sets, cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(summary.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(summary.Results))
	}

	res := summary.Results[0]
	if math.Abs(res.Score-1) > 1e-9 {
		t.Fatalf("a set occupying the top of the ranking must score 1, got %g", res.Score)
	}
	if res.Rank != 5 {
		t.Fatalf("expected peak rank 5, got %d", res.Rank)
	}
	if !(res.PValue < 0.05) {
		t.Fatalf("expected a small p-value, got %g", res.PValue)
	}
	if len(res.CoreGenes) != 5 {
		t.Fatalf("expected all 5 members in the leading edge, got %v", res.CoreGenes)
	}
	if res.SetSize != 5 {
		t.Fatalf("expected set size 5, got %d", res.SetSize)
	}
}

func TestRunSkipsIneligibleSets(t *testing.T) {
	t.Parallel()

	list := NewRankedList(rankedEffects())
	sets := []domain.GeneSet{
		{ID: "tiny", Genes: []string{"hot00"}},
		{ID: "absent", Genes: []string{"nope1", "nope2", "nope3"}},
		{ID: "ok", Genes: []string{"hot00", "hot01", "cold00"}},
	}
	cfg := Config{MinSetSize: 2, MaxSetSize: 10, Permutations: 50, Seed: 1}

	summary, err := Run(list, sets, cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.SkippedSize != 1 {
		t.Fatalf("expected 1 set skipped by size, got %d", summary.SkippedSize)
	}
	if summary.SkippedEmpty != 1 {
		t.Fatalf("expected 1 empty set, got %d", summary.SkippedEmpty)
	}
	if len(summary.Results) != 1 || summary.Results[0].SetID != "ok" {
		t.Fatalf("unexpected results: %v", summary.Results)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	list := NewRankedList(rankedEffects())
	sets := []domain.GeneSet{
		{ID: "s1", Genes: []string{"hot00", "hot01", "cold03"}},
		{ID: "s2", Genes: []string{"cold00", "cold01", "cold02"}},
	}
	cfg := Config{MinSetSize: 2, MaxSetSize: 10, Permutations: 100, Seed: 7}

	first, err := Run(list, sets, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Run(list, sets, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first.Results, second.Results) {
		t.Fatal("identical seeds must reproduce identical results")
	}
}

func TestRunValidatesInput(t *testing.T) {
	t.Parallel()

	if _, err := Run(RankedList{}, nil, Config{Permutations: 10}); err == nil {
		t.Fatal("empty ranked list must be rejected")
	}
	list := NewRankedList(map[string]float64{"a": 1})
	if _, err := Run(list, nil, Config{Permutations: 0}); err == nil {
		t.Fatal("zero permutations must be rejected")
	}
}

func TestBuildGOSets(t *testing.T) {
	t.Parallel()

	annotations := []domain.GOAnnotation{
		{TermID: "GO:0015979", TermName: "photosynthesis", GeneID: "psbA1"},
		{TermID: "GO:0015979", TermName: "photosynthesis", GeneID: "psbA2"},
		{TermID: "GO:0015979", TermName: "photosynthesis", GeneID: "psbA1"},
		{TermID: "GO:0006096", TermName: "glycolysis", GeneID: "unknownGene"},
	}
	table := map[string]string{"psbA1": "Synpcc7942_1592", "psbA2": "Synpcc7942_1593"}

	sets, unmapped, emptied := BuildGOSets(annotations, func(name string) (string, bool) {
		v, ok := table[name]
		return v, ok
	})
	if unmapped != 1 {
		t.Fatalf("expected 1 unmapped gene, got %d", unmapped)
	}
	// The glycolysis term loses its only member to translation and must be
	// counted as emptied, not dropped silently.
	if emptied != 1 {
		t.Fatalf("expected 1 emptied term, got %d", emptied)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 surviving set, got %d", len(sets))
	}
	set := sets[0]
	if set.ID != "GO:0015979" || set.Description != "photosynthesis" {
		t.Fatalf("unexpected set: %+v", set)
	}
	if !reflect.DeepEqual(set.Genes, []string{"Synpcc7942_1592", "Synpcc7942_1593"}) {
		t.Fatalf("unexpected members: %v", set.Genes)
	}
}
