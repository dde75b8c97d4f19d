package de

import "math"

// Class labels a gene under the dual-threshold rule.
type Class int

const (
	ClassNone Class = iota
	ClassUp
	ClassDown
)

// Classify applies the rule used for downstream gene-set construction:
// -log10(p) must exceed -log10(pCutoff) and the fold-change must clear
// lfcCutoff in magnitude. The rule tests the raw p-value, not the q- or
// s-value.
func Classify(log2FC, pValue, pCutoff, lfcCutoff float64) Class {
	if math.IsNaN(pValue) || !(-math.Log10(pValue) > -math.Log10(pCutoff)) {
		return ClassNone
	}
	switch {
	case log2FC >= lfcCutoff:
		return ClassUp
	case log2FC <= -lfcCutoff:
		return ClassDown
	}
	return ClassNone
}

// Significant returns the up- and downregulated filtered views of the table.
// The two views are disjoint for any threshold pair.
func (t *Table) Significant(pCutoff, lfcCutoff float64) (up, down []Row) {
	for _, row := range t.Rows {
		switch Classify(row.Log2FC, row.PValue, pCutoff, lfcCutoff) {
		case ClassUp:
			up = append(up, row)
		case ClassDown:
			down = append(down, row)
		}
	}
	return up, down
}
