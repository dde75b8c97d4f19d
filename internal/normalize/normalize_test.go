package normalize

import (
	"math"
	"testing"

	"github.com/catherinechia/p4sbip/internal/domain"
)

func matrix(t *testing.T, records []domain.CountRecord, samples []string) *domain.CountMatrix {
	t.Helper()
	m, err := domain.NewCountMatrix(records, samples)
	if err != nil {
		t.Fatalf("build matrix: %v", err)
	}
	return m
}

func scaledMatrix(t *testing.T) *domain.CountMatrix {
	t.Helper()
	// s2 is an exact 2x resequencing of s1.
	return matrix(t, []domain.CountRecord{
		{GeneID: "g1", SequenceID: "s1", Count: 2}, {GeneID: "g1", SequenceID: "s2", Count: 4},
		{GeneID: "g2", SequenceID: "s1", Count: 4}, {GeneID: "g2", SequenceID: "s2", Count: 8},
		{GeneID: "g3", SequenceID: "s1", Count: 8}, {GeneID: "g3", SequenceID: "s2", Count: 16},
	}, []string{"s1", "s2"})
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(RLE{})
	r.Register(MedianRatio{})

	s, err := r.Resolve("rle")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.Name() != "rle" {
		t.Fatalf("unexpected strategy: %s", s.Name())
	}
	if _, err := r.Resolve("tmm"); err == nil {
		t.Fatal("unknown strategy must not resolve")
	}
}

func TestRLERecoversDepthRatio(t *testing.T) {
	t.Parallel()

	f, err := RLE{}.SizeFactors(scaledMatrix(t))
	if err != nil {
		t.Fatalf("SizeFactors returned error: %v", err)
	}
	if f.Strategy != "rle" {
		t.Fatalf("unexpected strategy name: %s", f.Strategy)
	}
	ratio := f.PerSample[1] / f.PerSample[0]
	if math.Abs(ratio-2) > 1e-9 {
		t.Fatalf("expected factor ratio 2, got %g", ratio)
	}
}

func TestStrategiesAgreeOnCleanData(t *testing.T) {
	t.Parallel()

	m := scaledMatrix(t)
	rle, err := RLE{}.SizeFactors(m)
	if err != nil {
		t.Fatalf("rle: %v", err)
	}
	check, err := MedianRatio{}.SizeFactors(m)
	if err != nil {
		t.Fatalf("median-ratio: %v", err)
	}
	for j := range rle.PerSample {
		if math.Abs(rle.PerSample[j]-check.PerSample[j]) > 1e-9 {
			t.Fatalf("sample %d: %g vs %g", j, rle.PerSample[j], check.PerSample[j])
		}
	}
}

func TestUndefinedRatiosCounted(t *testing.T) {
	t.Parallel()

	m := matrix(t, []domain.CountRecord{
		{GeneID: "g1", SequenceID: "s1", Count: 2}, {GeneID: "g1", SequenceID: "s2", Count: 4},
		{GeneID: "g2", SequenceID: "s1", Count: 4}, {GeneID: "g2", SequenceID: "s2", Count: 8},
		{GeneID: "g3", SequenceID: "s1", Count: 0}, {GeneID: "g3", SequenceID: "s2", Count: 5},
	}, []string{"s1", "s2"})

	rle, err := RLE{}.SizeFactors(m)
	if err != nil {
		t.Fatalf("rle: %v", err)
	}
	if rle.UndefinedRatios != 2 {
		t.Fatalf("rle: expected 2 undefined ratios, got %d", rle.UndefinedRatios)
	}

	check, err := MedianRatio{}.SizeFactors(m)
	if err != nil {
		t.Fatalf("median-ratio: %v", err)
	}
	if check.UndefinedRatios != 2 {
		t.Fatalf("median-ratio: expected 2 undefined ratios, got %d", check.UndefinedRatios)
	}
}

func TestApplyRoundTrip(t *testing.T) {
	t.Parallel()

	m := scaledMatrix(t)
	f, err := RLE{}.SizeFactors(m)
	if err != nil {
		t.Fatalf("SizeFactors returned error: %v", err)
	}

	norm, err := Apply(m, f)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	for i := 0; i < m.NumGenes(); i++ {
		for j := 0; j < m.NumSamples(); j++ {
			back := norm[i][j] * f.PerSample[j]
			if math.Abs(back-m.Value(i, j)) > 1e-9 {
				t.Fatalf("gene %d sample %d: %g does not round-trip to %g", i, j, back, m.Value(i, j))
			}
		}
	}

	// Depth-matched samples must agree after normalization.
	for i := 0; i < m.NumGenes(); i++ {
		if math.Abs(norm[i][0]-norm[i][1]) > 1e-9 {
			t.Fatalf("gene %d: normalized counts differ: %g vs %g", i, norm[i][0], norm[i][1])
		}
	}
}

func TestApplyRejectsNonPositiveFactors(t *testing.T) {
	t.Parallel()

	m := scaledMatrix(t)
	if _, err := Apply(m, &Factors{PerSample: []float64{1, 0}}); err == nil {
		t.Fatal("zero factor must be rejected")
	}
	if _, err := Apply(m, &Factors{PerSample: []float64{1}}); err == nil {
		t.Fatal("factor count mismatch must be rejected")
	}
}

func TestSizeFactorsSinglePositiveGene(t *testing.T) {
	t.Parallel()

	// Only g1 is positive in every sample, so each median runs over a
	// single ratio.
	m := matrix(t, []domain.CountRecord{
		{GeneID: "g1", SequenceID: "s1", Count: 10}, {GeneID: "g1", SequenceID: "s2", Count: 40},
		{GeneID: "g2", SequenceID: "s1", Count: 0}, {GeneID: "g2", SequenceID: "s2", Count: 7},
	}, []string{"s1", "s2"})

	rle, err := RLE{}.SizeFactors(m)
	if err != nil {
		t.Fatalf("rle: %v", err)
	}
	ratio := rle.PerSample[1] / rle.PerSample[0]
	if math.Abs(ratio-4) > 1e-9 {
		t.Fatalf("expected factor ratio 4, got %g", ratio)
	}

	check, err := MedianRatio{}.SizeFactors(m)
	if err != nil {
		t.Fatalf("median-ratio: %v", err)
	}
	for j := range rle.PerSample {
		if math.Abs(rle.PerSample[j]-check.PerSample[j]) > 1e-9 {
			t.Fatalf("sample %d: %g vs %g", j, rle.PerSample[j], check.PerSample[j])
		}
	}
}

func TestRLEFailsWithoutPositiveGenes(t *testing.T) {
	t.Parallel()

	m := matrix(t, []domain.CountRecord{
		{GeneID: "g1", SequenceID: "s1", Count: 0}, {GeneID: "g1", SequenceID: "s2", Count: 5},
	}, []string{"s1", "s2"})
	if _, err := (RLE{}).SizeFactors(m); err == nil {
		t.Fatal("expected error when no gene is positive everywhere")
	}
}
