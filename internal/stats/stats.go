// Package stats holds the small shared statistics helpers used by the
// normalization, differential-expression and enrichment stages.
package stats

import (
	"math"
	"sort"
)

// GeometricMean returns the geometric mean of v computed in log space.
// Any non-positive element makes the result zero, matching the
// median-of-ratios convention of dropping such pseudo-references.
func GeometricMean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		if x <= 0 {
			return 0
		}
		sum += math.Log(x)
	}
	return math.Exp(sum / float64(len(v)))
}

// Quantile returns the pth quantile of v by the R-7 method. v is copied
// before sorting.
func Quantile(v []float64, p float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	if p >= 1 {
		return s[len(s)-1]
	}
	h := float64(len(s)-1) * p
	i := int(h)
	if i >= len(s)-1 {
		return s[len(s)-1]
	}
	return s[i] + (h-math.Floor(h))*(s[i+1]-s[i])
}

// Median returns the R-7 median of v.
func Median(v []float64) float64 {
	return Quantile(v, 0.5)
}

// Mean returns the arithmetic mean of v, NaN for empty input.
func Mean(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// BenjaminiHochberg adjusts a vector of finite p-values for false discovery
// rate control. The caller must exclude non-finite p-values first; adjusting
// a vector that still carries them is a correctness bug, so they map to NaN
// here rather than being ranked.
func BenjaminiHochberg(p []float64) []float64 {
	n := len(p)
	adj := make([]float64, n)
	order := make([]int, 0, n)
	for i, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			adj[i] = math.NaN()
			continue
		}
		order = append(order, i)
	}
	sort.Slice(order, func(a, b int) bool { return p[order[a]] < p[order[b]] })

	m := float64(len(order))
	min := math.Inf(1)
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		q := p[i] * m / float64(k+1)
		if q < min {
			min = q
		}
		if min > 1 {
			adj[i] = 1
		} else {
			adj[i] = min
		}
	}
	return adj
}
