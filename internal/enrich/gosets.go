package enrich

import (
	"sort"

	"github.com/catherinechia/p4sbip/internal/domain"
)

// BuildGOSets groups the annotation table by GO term and translates member
// genes from the annotation's accession scheme into the ranked list's
// namespace. Genes without a cross-reference entry are dropped and counted.
// A term whose every member fails translation yields no set; such terms are
// counted as emptied, never silently excluded.
func BuildGOSets(annotations []domain.GOAnnotation, translate func(string) (string, bool)) (sets []domain.GeneSet, unmapped, emptied int) {
	type termSet struct {
		name  string
		genes map[string]bool
	}

	terms := map[string]*termSet{}
	for _, ann := range annotations {
		ts, ok := terms[ann.TermID]
		if !ok {
			ts = &termSet{name: ann.TermName, genes: map[string]bool{}}
			terms[ann.TermID] = ts
		}
		id, ok := translate(ann.GeneID)
		if !ok {
			unmapped++
			continue
		}
		ts.genes[id] = true
	}

	sets = make([]domain.GeneSet, 0, len(terms))
	for id, ts := range terms {
		if len(ts.genes) == 0 {
			emptied++
			continue
		}
		genes := make([]string, 0, len(ts.genes))
		for g := range ts.genes {
			genes = append(genes, g)
		}
		sort.Strings(genes)
		sets = append(sets, domain.GeneSet{ID: id, Description: ts.name, Genes: genes})
	}
	sort.Slice(sets, func(a, b int) bool { return sets[a].ID < sets[b].ID })
	return sets, unmapped, emptied
}
