package de

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Method selects the fold-change shrinkage estimator. The two methods are
// reported side by side, never merged.
type Method string

const (
	// MethodNormal shrinks with a zero-centered normal prior whose scale
	// is estimated from the observed effect distribution.
	MethodNormal Method = "normal"

	// MethodAdaptiveT shrinks with a heavy-tailed t prior (one degree of
	// freedom) so large true effects escape the pull toward zero.
	MethodAdaptiveT Method = "adaptive-t"
)

// minPriorVar keeps the estimated prior scale away from a degenerate zero
// when nearly all observed effects are noise.
const minPriorVar = 1e-4

// ShrinkResult carries shrunk log2 fold-changes and s-values in the same
// gene order as the table it was derived from.
type ShrinkResult struct {
	Method     Method
	Genes      []string
	Log2FC     []float64
	SValue     []float64
	PriorScale float64
}

// Shrink applies empirical-Bayes shrinkage to the fitted fold-changes.
// Genes without a finite estimate or standard error keep NaN throughout.
func Shrink(t *Table, method Method) (*ShrinkResult, error) {
	switch method {
	case MethodNormal, MethodAdaptiveT:
	default:
		return nil, fmt.Errorf("unknown shrinkage method %q", method)
	}

	tau2 := estimatePriorVariance(t)
	res := &ShrinkResult{
		Method:     method,
		Genes:      make([]string, len(t.Rows)),
		Log2FC:     make([]float64, len(t.Rows)),
		SValue:     make([]float64, len(t.Rows)),
		PriorScale: math.Sqrt(tau2),
	}

	lfsr := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		res.Genes[i] = row.GeneID
		res.Log2FC[i] = math.NaN()
		res.SValue[i] = math.NaN()
		lfsr[i] = math.NaN()

		if !finite(row.Log2FC) || !finite(row.StdErr) || row.StdErr <= 0 {
			continue
		}

		var mode, postSD float64
		switch method {
		case MethodNormal:
			mode, postSD = normalPosterior(row.Log2FC, row.StdErr, tau2)
		case MethodAdaptiveT:
			mode, postSD = tPosterior(row.Log2FC, row.StdErr, tau2)
		}
		res.Log2FC[i] = mode
		lfsr[i] = distuv.UnitNormal.CDF(-math.Abs(mode) / postSD)
	}

	fillSValues(lfsr, res.SValue)
	return res, nil
}

// estimatePriorVariance is a method-of-moments estimate of the spread of
// true effects: the excess of observed effect variance over sampling noise.
func estimatePriorVariance(t *Table) float64 {
	var sumB2, sumSE2 float64
	var n int
	for _, row := range t.Rows {
		if !finite(row.Log2FC) || !finite(row.StdErr) {
			continue
		}
		sumB2 += row.Log2FC * row.Log2FC
		sumSE2 += row.StdErr * row.StdErr
		n++
	}
	if n == 0 {
		return minPriorVar
	}
	tau2 := (sumB2 - sumSE2) / float64(n)
	if tau2 < minPriorVar {
		return minPriorVar
	}
	return tau2
}

// normalPosterior is the closed-form posterior for a N(0, tau2) prior.
func normalPosterior(beta, se, tau2 float64) (mode, sd float64) {
	se2 := se * se
	mode = beta * tau2 / (tau2 + se2)
	sd = math.Sqrt(tau2 * se2 / (tau2 + se2))
	return mode, sd
}

// tPosterior finds the posterior mode under a t(1) prior with scale
// sqrt(tau2) by bisecting the score function between zero and the estimate,
// then derives a Laplace posterior standard deviation from the curvature.
func tPosterior(beta, se, tau2 float64) (mode, sd float64) {
	if beta == 0 {
		return 0, se
	}
	se2 := se * se
	score := func(b float64) float64 {
		return (beta-b)/se2 - 2*b/(tau2+b*b)
	}

	lo, hi := 0.0, beta
	if beta < 0 {
		lo, hi = beta, 0
	}
	for iter := 0; iter < 80; iter++ {
		mid := (lo + hi) / 2
		if score(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	mode = (lo + hi) / 2

	curv := 1/se2 + 2*(tau2-mode*mode)/((tau2+mode*mode)*(tau2+mode*mode))
	if curv <= 0 {
		return mode, se
	}
	return mode, math.Sqrt(1 / curv)
}

// fillSValues converts local false-sign rates to s-values: the mean lfsr of
// all genes at least as confidently signed as this one.
func fillSValues(lfsr, out []float64) {
	order := make([]int, 0, len(lfsr))
	for i, v := range lfsr {
		if !math.IsNaN(v) {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool { return lfsr[order[a]] < lfsr[order[b]] })

	var running float64
	for k, i := range order {
		running += lfsr[i]
		out[i] = running / float64(k+1)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
