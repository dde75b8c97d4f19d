// Package de fits the per-gene negative-binomial two-group contrast and
// derives p-, q- and s-values from it. The reference level is always the
// control group: a positive log2 fold-change means treatment > control.
package de

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/normalize"
	"github.com/catherinechia/p4sbip/internal/stats"
)

// ErrDesignMismatch marks a disagreement between the count matrix and the
// design table. It is fatal.
var ErrDesignMismatch = errors.New("count matrix and design disagree")

// minDispersion floors the moment estimate so the NB variance never
// degenerates below Poisson.
const minDispersion = 1e-8

// Model is a fitted two-group negative-binomial model.
type Model struct {
	genes   []string
	samples []string

	norm        [][]float64
	sizeFactors []float64
	control     []int
	treatment   []int

	meanControl   []float64
	meanTreatment []float64
	dispersions   []float64
}

// Row is the per-gene differential-expression record. Rows are values:
// downstream up/down subsets are filtered views over the same backing data.
type Row struct {
	GeneID     string
	BaseMean   float64
	Log2FC     float64
	StdErr     float64
	PValue     float64
	QValue     float64
	NormCounts []float64
}

// Table is the full contrast result in gene order.
type Table struct {
	Samples []string
	Rows    []Row

	// ExcludedPValues counts genes whose p-value is undefined or infinite
	// and therefore excluded from q-value estimation.
	ExcludedPValues int
}

// Fit validates the design against the matrix and estimates group means and
// per-gene dispersions from normalized counts. It fails with
// ErrDesignMismatch when sample sets disagree.
func Fit(m *domain.CountMatrix, design []domain.SampleDesign, factors *normalize.Factors) (*Model, error) {
	if len(design) != m.NumSamples() {
		return nil, fmt.Errorf("%w: %d design rows for %d samples", ErrDesignMismatch, len(design), m.NumSamples())
	}

	colFor := make(map[string]int, m.NumSamples())
	for j, s := range m.Samples {
		colFor[s] = j
	}

	model := &Model{
		genes:       m.Genes,
		samples:     m.Samples,
		sizeFactors: factors.PerSample,
	}
	for _, d := range design {
		j, ok := colFor[d.SequenceID]
		if !ok {
			return nil, fmt.Errorf("%w: design sample %s not in count matrix", ErrDesignMismatch, d.SequenceID)
		}
		switch d.Purpose {
		case domain.PurposeControl:
			model.control = append(model.control, j)
		case domain.PurposeTreatment:
			model.treatment = append(model.treatment, j)
		default:
			return nil, fmt.Errorf("%w: sample %s has purpose %q", ErrDesignMismatch, d.SequenceID, d.Purpose)
		}
	}
	if len(model.control) == 0 || len(model.treatment) == 0 {
		return nil, fmt.Errorf("%w: contrast needs both control and treatment samples", ErrDesignMismatch)
	}

	norm, err := normalize.Apply(m, factors)
	if err != nil {
		return nil, fmt.Errorf("normalize counts: %w", err)
	}
	model.norm = norm

	model.meanControl = make([]float64, m.NumGenes())
	model.meanTreatment = make([]float64, m.NumGenes())
	model.dispersions = make([]float64, m.NumGenes())
	for i := range norm {
		model.meanControl[i] = groupMean(norm[i], model.control)
		model.meanTreatment[i] = groupMean(norm[i], model.treatment)
		model.dispersions[i] = momentDispersion(norm[i], model.control, model.treatment)
	}

	return model, nil
}

// Contrast extracts the treatment-vs-control effect for every gene: Wald
// log2 fold-changes and p-values, with q-values computed globally over the
// finite p-value vector.
func (m *Model) Contrast() *Table {
	t := &Table{Samples: m.samples, Rows: make([]Row, len(m.genes))}

	normal := distuv.UnitNormal
	for i, gene := range m.genes {
		muC, muT := m.meanControl[i], m.meanTreatment[i]
		row := Row{
			GeneID:     gene,
			BaseMean:   stats.Mean(m.norm[i]),
			NormCounts: m.norm[i],
			Log2FC:     math.Log2(muT / muC),
			StdErr:     math.NaN(),
			PValue:     math.NaN(),
			QValue:     math.NaN(),
		}

		if muC > 0 && muT > 0 {
			se := m.waldStdErr(i)
			row.StdErr = se
			if se > 0 && !math.IsInf(se, 0) {
				z := row.Log2FC / se
				row.PValue = 2 * normal.Survival(math.Abs(z))
			}
		}
		t.Rows[i] = row
	}

	t.AdjustPValues()
	return t
}

// AdjustPValues recomputes q-values over the current p-value vector,
// excluding non-finite entries. It must be re-run whenever the p-value
// vector changes; carrying q-values across such a change is a bug.
func (t *Table) AdjustPValues() {
	ps := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		ps[i] = row.PValue
	}
	adj := stats.BenjaminiHochberg(ps)

	t.ExcludedPValues = 0
	for i := range t.Rows {
		t.Rows[i].QValue = adj[i]
		if math.IsNaN(adj[i]) {
			t.ExcludedPValues++
		}
	}
}

// waldStdErr is the delta-method standard error of the log2 fold-change
// under the NB variance mu + alpha*mu^2.
func (m *Model) waldStdErr(gene int) float64 {
	alpha := m.dispersions[gene]
	varLog2 := func(mean float64, cols []int) float64 {
		var v float64
		for _, j := range cols {
			mu := mean * m.sizeFactors[j]
			v += (mu + alpha*mu*mu) / (m.sizeFactors[j] * m.sizeFactors[j])
		}
		n := float64(len(cols))
		v /= n * n
		return v / (mean * mean * math.Ln2 * math.Ln2)
	}
	return math.Sqrt(varLog2(m.meanControl[gene], m.control) + varLog2(m.meanTreatment[gene], m.treatment))
}

func groupMean(row []float64, cols []int) float64 {
	var sum float64
	for _, j := range cols {
		sum += row[j]
	}
	return sum / float64(len(cols))
}

// momentDispersion is a pooled within-group method-of-moments estimate of
// the NB dispersion, floored at minDispersion.
func momentDispersion(row []float64, control, treatment []int) float64 {
	var ss float64
	var df int
	for _, group := range [][]int{control, treatment} {
		if len(group) < 2 {
			continue
		}
		mean := groupMean(row, group)
		for _, j := range group {
			d := row[j] - mean
			ss += d * d
		}
		df += len(group) - 1
	}
	if df == 0 {
		return minDispersion
	}
	variance := ss / float64(df)

	mu := groupMean(row, append(append([]int{}, control...), treatment...))
	if mu <= 0 {
		return minDispersion
	}
	alpha := (variance - mu) / (mu * mu)
	if alpha < minDispersion {
		return minDispersion
	}
	return alpha
}
