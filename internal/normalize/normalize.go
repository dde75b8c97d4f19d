// Package normalize computes per-sample size factors and normalized counts.
// Two interchangeable strategies are provided; downstream consumers see only
// the Factors they produce.
package normalize

import (
	"fmt"
	"math"

	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/stats"
)

// Factors is the outcome of one size-factor estimation.
type Factors struct {
	Strategy  string
	PerSample []float64

	// UndefinedRatios counts ratios excluded from the median because a
	// zero count made the pseudo-reference or the ratio non-finite. They
	// are excluded, not treated as zero.
	UndefinedRatios int
}

// Strategy estimates one size factor per sample from a count matrix.
type Strategy interface {
	Name() string
	SizeFactors(m *domain.CountMatrix) (*Factors, error)
}

// Registry maps strategy names to implementations so the active strategy is
// swappable from configuration without touching consumers.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy.
func (r *Registry) Register(s Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[s.Name()] = s
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if s, ok := r.strategies[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("normalization strategy %s is not registered", name)
}

// Apply divides every count by its sample's size factor. The result maps
// (gene row, sample column) to a positive normalized count whenever the raw
// count is positive.
func Apply(m *domain.CountMatrix, f *Factors) ([][]float64, error) {
	if len(f.PerSample) != m.NumSamples() {
		return nil, fmt.Errorf("size factors for %d samples, matrix has %d", len(f.PerSample), m.NumSamples())
	}
	for j, s := range f.PerSample {
		if !(s > 0) {
			return nil, fmt.Errorf("size factor for sample %s is not strictly positive (%g)", m.Samples[j], s)
		}
	}

	norm := make([][]float64, m.NumGenes())
	for i := range norm {
		row := make([]float64, m.NumSamples())
		raw := m.Row(i)
		for j := range row {
			row[j] = raw[j] / f.PerSample[j]
		}
		norm[i] = row
	}
	return norm, nil
}

// RLE is the library strategy: the relative-log-expression size factor of
// Anders and Huber, computed in log space over genes whose counts are
// positive in every sample.
type RLE struct{}

// Name identifies the strategy inside the registry.
func (RLE) Name() string { return "rle" }

// SizeFactors computes s_j = exp(median_i(log k_ij - mean_v log k_iv)).
func (RLE) SizeFactors(m *domain.CountMatrix) (*Factors, error) {
	n := m.NumSamples()
	if n == 0 || m.NumGenes() == 0 {
		return nil, fmt.Errorf("rle: empty count matrix")
	}

	logRef := make([]float64, 0, m.NumGenes())
	rows := make([]int, 0, m.NumGenes())
	var undefined int
	for i := 0; i < m.NumGenes(); i++ {
		gm := stats.GeometricMean(m.Row(i))
		if gm <= 0 {
			undefined += n
			continue
		}
		logRef = append(logRef, math.Log(gm))
		rows = append(rows, i)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rle: no gene has positive counts in all samples")
	}

	factors := make([]float64, n)
	diffs := make([]float64, len(rows))
	for j := 0; j < n; j++ {
		for k, i := range rows {
			diffs[k] = math.Log(m.Value(i, j)) - logRef[k]
		}
		factors[j] = math.Exp(stats.Median(diffs))
	}

	return &Factors{Strategy: "rle", PerSample: factors, UndefinedRatios: undefined}, nil
}

// MedianRatio is the manual cross-check strategy: an explicit median of
// count/pseudo-reference ratios, skipping undefined ratios instead of
// forcing them to zero.
type MedianRatio struct{}

// Name identifies the strategy inside the registry.
func (MedianRatio) Name() string { return "median-ratio" }

// SizeFactors computes a per-gene geometric-mean pseudo-reference, then the
// per-sample median of count/pseudo-reference ratios.
func (MedianRatio) SizeFactors(m *domain.CountMatrix) (*Factors, error) {
	n := m.NumSamples()
	if n == 0 || m.NumGenes() == 0 {
		return nil, fmt.Errorf("median-ratio: empty count matrix")
	}

	pseudoRef := make([]float64, m.NumGenes())
	for i := range pseudoRef {
		pseudoRef[i] = stats.GeometricMean(m.Row(i))
	}

	factors := make([]float64, n)
	var undefined int
	ratios := make([]float64, 0, m.NumGenes())
	for j := 0; j < n; j++ {
		ratios = ratios[:0]
		for i := 0; i < m.NumGenes(); i++ {
			if pseudoRef[i] == 0 {
				undefined++
				continue
			}
			r := m.Value(i, j) / pseudoRef[i]
			if math.IsNaN(r) || math.IsInf(r, 0) {
				undefined++
				continue
			}
			ratios = append(ratios, r)
		}
		if len(ratios) == 0 {
			return nil, fmt.Errorf("median-ratio: sample %s has no defined ratios", m.Samples[j])
		}
		factors[j] = stats.Median(ratios)
		if !(factors[j] > 0) {
			return nil, fmt.Errorf("median-ratio: sample %s yields non-positive size factor", m.Samples[j])
		}
	}

	return &Factors{Strategy: "median-ratio", PerSample: factors, UndefinedRatios: undefined}, nil
}
