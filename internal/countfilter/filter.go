// Package countfilter removes non-coding features and low-count genes before
// normalization.
package countfilter

import (
	"fmt"
	"strings"

	"github.com/catherinechia/p4sbip/internal/domain"
)

// Result carries the filtered matrix plus the side tables used by the
// coverage report.
type Result struct {
	Coding *domain.CountMatrix

	// NonCoding holds the rows partitioned out by the marker pattern. They
	// are only used for the coverage report, never analysed.
	NonCoding []domain.CountRecord

	// NonCodingShare is the fraction of total reads assigned to non-coding
	// features.
	NonCodingShare float64

	// DroppedLowCount is the number of genes removed by the low-count rule.
	DroppedLowCount int
}

// Apply partitions records whose gene id contains marker into the non-coding
// side table, assembles the remaining rows into a rectangular matrix and
// drops genes whose count is at or below threshold in every sample. A gene
// failing the threshold in only some samples is retained.
func Apply(records []domain.CountRecord, samples []string, marker string, threshold int) (*Result, error) {
	var coding []domain.CountRecord
	res := &Result{}

	var total, nonCodingReads float64
	for _, rec := range records {
		total += float64(rec.Count)
		if marker != "" && strings.Contains(rec.GeneID, marker) {
			res.NonCoding = append(res.NonCoding, rec)
			nonCodingReads += float64(rec.Count)
			continue
		}
		coding = append(coding, rec)
	}
	if total > 0 {
		res.NonCodingShare = nonCodingReads / total
	}

	m, err := domain.NewCountMatrix(coding, samples)
	if err != nil {
		return nil, fmt.Errorf("assemble count matrix: %w", err)
	}

	limit := float64(threshold)
	var kept []domain.CountRecord
	for i, gene := range m.Genes {
		row := m.Row(i)
		low := true
		for _, v := range row {
			if v > limit {
				low = false
				break
			}
		}
		if low {
			res.DroppedLowCount++
			continue
		}
		for j, sample := range samples {
			kept = append(kept, domain.CountRecord{GeneID: gene, SequenceID: sample, Count: int(row[j])})
		}
	}

	filtered, err := domain.NewCountMatrix(kept, samples)
	if err != nil {
		return nil, fmt.Errorf("assemble filtered matrix: %w", err)
	}
	res.Coding = filtered
	return res, nil
}
