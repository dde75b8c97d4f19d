// Package pca performs the quality-control projection: a centered principal
// component analysis of log-transformed normalized counts.
package pca

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Result holds scores, per-gene loadings and the explained-variance share of
// every component, ranked by decreasing variance.
type Result struct {
	Samples []string
	Genes   []string

	// Scores is samples x components, Loadings genes x components.
	Scores   *mat.Dense
	Loadings *mat.Dense

	Explained []float64
}

// Contribution pairs a gene with its loading on one component.
type Contribution struct {
	GeneID  string
	Loading float64
}

// Project runs a centered (not scaled) PCA over the sample x gene matrix of
// log2(x+1) transformed normalized counts. norm is gene-major, as produced
// by the normalizer; the projection is deterministic for a fixed input order.
func Project(genes, samples []string, norm [][]float64) (*Result, error) {
	nGenes, nSamples := len(genes), len(samples)
	if nGenes == 0 || nSamples == 0 {
		return nil, fmt.Errorf("pca: empty matrix")
	}

	// Samples are observations, genes are variables.
	x := mat.NewDense(nSamples, nGenes, nil)
	for i, row := range norm {
		if len(row) != nSamples {
			return nil, fmt.Errorf("pca: gene %s has %d values, want %d", genes[i], len(row), nSamples)
		}
		for j, v := range row {
			x.Set(j, i, math.Log2(v+1))
		}
	}

	for g := 0; g < nGenes; g++ {
		col := mat.Col(nil, g, x)
		var mean float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(nSamples)
		for s := 0; s < nSamples; s++ {
			x.Set(s, g, x.At(s, g)-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("pca: svd failed to converge")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)

	k := len(sigma)
	scores := mat.NewDense(nSamples, k, nil)
	for s := 0; s < nSamples; s++ {
		for c := 0; c < k; c++ {
			scores.Set(s, c, u.At(s, c)*sigma[c])
		}
	}

	var totalVar float64
	for _, s := range sigma {
		totalVar += s * s
	}
	explained := make([]float64, k)
	for c, s := range sigma {
		if totalVar > 0 {
			explained[c] = s * s / totalVar
		}
	}

	return &Result{
		Samples:   samples,
		Genes:     genes,
		Scores:    scores,
		Loadings:  &v,
		Explained: explained,
	}, nil
}

// TopLoadings returns the n genes with the highest and the n with the lowest
// loading on the given component, for the contribution diagnostic.
func (r *Result) TopLoadings(component, n int) (top, bottom []Contribution) {
	_, k := r.Loadings.Dims()
	if component < 0 || component >= k {
		return nil, nil
	}

	all := make([]Contribution, len(r.Genes))
	for i, gene := range r.Genes {
		all[i] = Contribution{GeneID: gene, Loading: r.Loadings.At(i, component)}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Loading > all[b].Loading })

	if n > len(all) {
		n = len(all)
	}
	top = append(top, all[:n]...)
	bottom = append(bottom, all[len(all)-n:]...)
	return top, bottom
}
