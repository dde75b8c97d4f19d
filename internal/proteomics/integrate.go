// Package proteomics joins protein-level ratios to the transcriptomic
// differential-expression results.
package proteomics

import (
	"math"

	"github.com/catherinechia/p4sbip/internal/de"
	"github.com/catherinechia/p4sbip/internal/domain"
)

// IntegratedRow is one protein with its matched transcriptomic effect.
type IntegratedRow struct {
	GeneID     string
	Protein    string
	AvgRatio   float64
	RatioCount int

	Log2FC float64
	PValue float64
	Class  de.Class

	// Concordant annotates the correlation view: both measures share a
	// sign and clear the axis bound in magnitude. It never filters rows.
	Concordant bool
}

// Integration is the joined view plus the standalone distribution counters.
type Integration struct {
	Rows []IntegratedRow

	// Standalone is the full proteomics row count; Unmatched counts rows
	// without a transcriptomic counterpart. Unmatched rows stay in the
	// standalone distribution but are absent from Rows.
	Standalone int
	Unmatched  int

	Concordant int
	Discordant int
}

// Integrate inner-joins proteomics records to DE results by gene id and
// attaches the significance classification under the given thresholds.
func Integrate(records []domain.ProteomicsRecord, table *de.Table, pCutoff, lfcCutoff, axisBound float64) *Integration {
	byGene := make(map[string]de.Row, len(table.Rows))
	for _, row := range table.Rows {
		byGene[row.GeneID] = row
	}

	out := &Integration{Standalone: len(records)}
	for _, rec := range records {
		deRow, ok := byGene[rec.GeneID]
		if !ok {
			out.Unmatched++
			continue
		}

		row := IntegratedRow{
			GeneID:     rec.GeneID,
			Protein:    rec.Protein,
			AvgRatio:   rec.AvgRatio,
			RatioCount: rec.RatioCount,
			Log2FC:     deRow.Log2FC,
			PValue:     deRow.PValue,
			Class:      de.Classify(deRow.Log2FC, deRow.PValue, pCutoff, lfcCutoff),
			Concordant: concordant(rec.AvgRatio, deRow.Log2FC, axisBound),
		}
		if row.Concordant {
			out.Concordant++
		} else {
			out.Discordant++
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func concordant(ratio, log2FC, bound float64) bool {
	if math.IsNaN(log2FC) || math.IsInf(log2FC, 0) {
		return false
	}
	if math.Abs(ratio) <= bound || math.Abs(log2FC) <= bound {
		return false
	}
	return (ratio > 0) == (log2FC > 0)
}
