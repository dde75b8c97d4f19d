package domain

import "fmt"

// CountRecord is one raw observation: reads assigned to a gene in one sequencing channel.
type CountRecord struct {
	GeneID     string
	SequenceID string
	Count      int
}

// SamplePurpose is the single experimental factor used in the contrast.
type SamplePurpose string

const (
	PurposeControl   SamplePurpose = "control"
	PurposeTreatment SamplePurpose = "treatment"
)

// SampleDesign describes one sequencing channel and its role in the experiment.
type SampleDesign struct {
	SequenceID string
	Channel    string
	Purpose    SamplePurpose
}

// CountMatrix is a rectangular gene x sample matrix assembled from count records.
// Every gene has exactly one value per sample.
type CountMatrix struct {
	Genes   []string
	Samples []string
	values  [][]float64
	geneIdx map[string]int
}

// NewCountMatrix assembles records into a rectangular matrix with the given sample
// order. It fails when a gene is missing a sample or appears twice for one.
func NewCountMatrix(records []CountRecord, samples []string) (*CountMatrix, error) {
	sampleIdx := make(map[string]int, len(samples))
	for i, s := range samples {
		sampleIdx[s] = i
	}

	m := &CountMatrix{Samples: samples, geneIdx: map[string]int{}}
	seen := map[string][]bool{}
	for _, rec := range records {
		j, ok := sampleIdx[rec.SequenceID]
		if !ok {
			return nil, fmt.Errorf("count for gene %s references unknown sample %s", rec.GeneID, rec.SequenceID)
		}
		i, ok := m.geneIdx[rec.GeneID]
		if !ok {
			i = len(m.Genes)
			m.geneIdx[rec.GeneID] = i
			m.Genes = append(m.Genes, rec.GeneID)
			m.values = append(m.values, make([]float64, len(samples)))
			seen[rec.GeneID] = make([]bool, len(samples))
		}
		if seen[rec.GeneID][j] {
			return nil, fmt.Errorf("duplicate count for gene %s sample %s", rec.GeneID, rec.SequenceID)
		}
		seen[rec.GeneID][j] = true
		m.values[i][j] = float64(rec.Count)
	}

	for gene, cells := range seen {
		for j, ok := range cells {
			if !ok {
				return nil, fmt.Errorf("gene %s has no count for sample %s", gene, samples[j])
			}
		}
	}

	return m, nil
}

// Row returns the count vector for gene row i, ordered as Samples.
func (m *CountMatrix) Row(i int) []float64 {
	return m.values[i]
}

// Value returns the count for gene row i and sample column j.
func (m *CountMatrix) Value(i, j int) float64 {
	return m.values[i][j]
}

// NumGenes reports the number of gene rows.
func (m *CountMatrix) NumGenes() int { return len(m.Genes) }

// NumSamples reports the number of sample columns.
func (m *CountMatrix) NumSamples() int { return len(m.Samples) }

// GeneRow resolves a gene id to its row index.
func (m *CountMatrix) GeneRow(gene string) (int, bool) {
	i, ok := m.geneIdx[gene]
	return i, ok
}
