// Package enrich implements the rank-based gene-set enrichment test. One
// parameterized routine serves every gene-set universe (KEGG pathways, GO
// terms); the universes differ only in how their sets are built and which
// identifier namespace they use.
package enrich

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/stats"
)

// RankedList is a descending ranking of genes by effect size, with no
// duplicates and no non-finite statistics.
type RankedList struct {
	Genes []string
	Stats []float64

	// Dropped counts genes excluded for a non-finite effect size.
	Dropped int
}

// NewRankedList filters non-finite effects and sorts the rest descending.
// Ties break on gene id so the ranking is deterministic.
func NewRankedList(effects map[string]float64) RankedList {
	list := RankedList{}
	for gene, stat := range effects {
		if math.IsNaN(stat) || math.IsInf(stat, 0) {
			list.Dropped++
			continue
		}
		list.Genes = append(list.Genes, gene)
		list.Stats = append(list.Stats, stat)
	}

	order := make([]int, len(list.Genes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if list.Stats[i] != list.Stats[j] {
			return list.Stats[i] > list.Stats[j]
		}
		return list.Genes[i] < list.Genes[j]
	})

	genes := make([]string, len(order))
	effectsOrdered := make([]float64, len(order))
	for k, i := range order {
		genes[k] = list.Genes[i]
		effectsOrdered[k] = list.Stats[i]
	}
	list.Genes = genes
	list.Stats = effectsOrdered
	return list
}

// TranslateStats rewrites the keys of an effect map into another identifier
// namespace. Genes the translation table does not cover are dropped and
// counted; the count must be surfaced, never swallowed.
func TranslateStats(effects map[string]float64, translate func(string) (string, bool)) (map[string]float64, int) {
	out := make(map[string]float64, len(effects))
	var unmapped int
	for gene, stat := range effects {
		id, ok := translate(gene)
		if !ok {
			unmapped++
			continue
		}
		out[id] = stat
	}
	return out, unmapped
}

// Config bounds and seeds one enrichment run.
type Config struct {
	MinSetSize   int
	MaxSetSize   int
	Permutations int
	Seed         int64
}

// Summary is the outcome over one gene-set universe.
type Summary struct {
	Results []domain.EnrichmentResult

	// SkippedSize counts sets outside the size bounds; SkippedEmpty those
	// with no gene left on the ranked list. Both are excluded from
	// testing, not scored as non-significant.
	SkippedSize  int
	SkippedEmpty int
}

// Run scores every eligible gene set against the ranked list: a weighted
// running-sum enrichment score, a permutation p-value (deterministic for a
// fixed seed), BH q-values across the tested sets, the peak rank and the
// leading-edge core genes.
func Run(list RankedList, sets []domain.GeneSet, cfg Config) (*Summary, error) {
	if len(list.Genes) == 0 {
		return nil, fmt.Errorf("enrich: empty ranked list")
	}
	if cfg.Permutations <= 0 {
		return nil, fmt.Errorf("enrich: permutations must be positive")
	}

	pos := make(map[string]int, len(list.Genes))
	for i, g := range list.Genes {
		pos[g] = i
	}
	absStats := make([]float64, len(list.Stats))
	for i, s := range list.Stats {
		absStats[i] = math.Abs(s)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	summary := &Summary{}

	for _, set := range sets {
		hits := memberPositions(set.Genes, pos)
		if len(hits) == 0 {
			summary.SkippedEmpty++
			continue
		}
		if len(hits) < cfg.MinSetSize || len(hits) > cfg.MaxSetSize {
			summary.SkippedSize++
			continue
		}

		score, peak := runningScore(absStats, hits)
		p := permutationP(rng, absStats, len(hits), score, cfg.Permutations)

		summary.Results = append(summary.Results, domain.EnrichmentResult{
			SetID:       set.ID,
			Description: set.Description,
			Score:       score,
			PValue:      p,
			Rank:        peak + 1,
			CoreGenes:   coreGenes(list.Genes, hits, score, peak),
			SetSize:     len(hits),
		})
	}

	ps := make([]float64, len(summary.Results))
	for i, r := range summary.Results {
		ps[i] = r.PValue
	}
	for i, q := range stats.BenjaminiHochberg(ps) {
		summary.Results[i].QValue = q
	}

	sort.SliceStable(summary.Results, func(a, b int) bool {
		return summary.Results[a].PValue < summary.Results[b].PValue
	})
	return summary, nil
}

// memberPositions resolves set members to ranked positions, deduplicated
// and sorted ascending.
func memberPositions(genes []string, pos map[string]int) []int {
	seen := map[int]bool{}
	var hits []int
	for _, g := range genes {
		if i, ok := pos[g]; ok && !seen[i] {
			seen[i] = true
			hits = append(hits, i)
		}
	}
	sort.Ints(hits)
	return hits
}

// runningScore walks the ranking, incrementing by weighted hit mass and
// decrementing by miss mass, and returns the signed maximum deviation and
// its position.
func runningScore(absStats []float64, hits []int) (score float64, peak int) {
	n := len(absStats)
	isHit := make([]bool, n)
	var hitMass float64
	for _, i := range hits {
		isHit[i] = true
		hitMass += absStats[i]
	}
	missStep := 1 / float64(n-len(hits))
	if n == len(hits) {
		missStep = 0
	}

	var running, maxDev float64
	for i := 0; i < n; i++ {
		if isHit[i] {
			if hitMass > 0 {
				running += absStats[i] / hitMass
			} else {
				running += 1 / float64(len(hits))
			}
		} else {
			running -= missStep
		}
		if math.Abs(running) > math.Abs(maxDev) {
			maxDev = running
			peak = i
		}
	}
	return maxDev, peak
}

// permutationP estimates the sign-matched null probability of a score at
// least as extreme by drawing random same-size sets from the ranking.
func permutationP(rng *rand.Rand, absStats []float64, size int, observed float64, permutations int) float64 {
	n := len(absStats)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	extreme := 0
	for p := 0; p < permutations; p++ {
		rng.Shuffle(n, func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		hits := append([]int{}, idx[:size]...)
		sort.Ints(hits)
		score, _ := runningScore(absStats, hits)
		if observed >= 0 && score >= observed {
			extreme++
		} else if observed < 0 && score <= observed {
			extreme++
		}
	}
	return float64(1+extreme) / float64(1+permutations)
}

// coreGenes returns the leading-edge subset driving the score: members up to
// the peak for positive scores, from the peak onward for negative ones.
func coreGenes(genes []string, hits []int, score float64, peak int) []string {
	var core []string
	for _, i := range hits {
		if score >= 0 && i <= peak {
			core = append(core, genes[i])
		}
		if score < 0 && i >= peak {
			core = append(core, genes[i])
		}
	}
	return core
}
