// Package loader reads the five delimited input tables into memory. All
// column access is by header name; a missing required column aborts the run
// before any stage executes.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/ident"
)

// ErrMissingColumn marks a malformed input schema. It is fatal: no partial
// output is produced when any input lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

// table is a fully loaded delimited file with named column access.
type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(path string, comma rune, required ...string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file, header row required", path)
	}

	t := &table{cols: map[string]int{}}
	for i, name := range records[0] {
		t.cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return nil, fmt.Errorf("%s: column %q: %w", path, name, ErrMissingColumn)
		}
	}
	t.rows = records[1:]
	return t, nil
}

// get returns the named column of a row, empty when the row is short.
func (t *table) get(row []string, name string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadDesign loads the sample design table (sequence_id, channel, purpose).
func ReadDesign(path string, comma rune) ([]domain.SampleDesign, error) {
	t, err := readTable(path, comma, "sequence_id", "channel", "purpose")
	if err != nil {
		return nil, err
	}

	design := make([]domain.SampleDesign, 0, len(t.rows))
	for n, row := range t.rows {
		purpose := domain.SamplePurpose(strings.ToLower(t.get(row, "purpose")))
		if purpose != domain.PurposeControl && purpose != domain.PurposeTreatment {
			return nil, fmt.Errorf("%s row %d: unknown purpose %q", path, n+2, purpose)
		}
		design = append(design, domain.SampleDesign{
			SequenceID: t.get(row, "sequence_id"),
			Channel:    t.get(row, "channel"),
			Purpose:    purpose,
		})
	}
	return design, nil
}

// ReadCounts loads the long-format raw count table (sequence_id, gene, counts).
func ReadCounts(path string, comma rune) ([]domain.CountRecord, error) {
	t, err := readTable(path, comma, "sequence_id", "gene", "counts")
	if err != nil {
		return nil, err
	}

	records := make([]domain.CountRecord, 0, len(t.rows))
	for n, row := range t.rows {
		count, err := strconv.Atoi(t.get(row, "counts"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: counts: %w", path, n+2, err)
		}
		if count < 0 {
			return nil, fmt.Errorf("%s row %d: negative count %d", path, n+2, count)
		}
		records = append(records, domain.CountRecord{
			GeneID:     t.get(row, "gene"),
			SequenceID: t.get(row, "sequence_id"),
			Count:      count,
		})
	}
	return records, nil
}

// ReadGeneIDMap loads the cross-reference table (ncbi_id, gene_name, kegg_id).
// Extra columns are ignored; missing mappings inside rows are allowed and
// handled downstream by the translator.
func ReadGeneIDMap(path string, comma rune) ([]ident.Mapping, error) {
	t, err := readTable(path, comma, "ncbi_id", "gene_name", "kegg_id")
	if err != nil {
		return nil, err
	}

	mappings := make([]ident.Mapping, 0, len(t.rows))
	for _, row := range t.rows {
		mappings = append(mappings, ident.Mapping{
			NCBIID:   t.get(row, "ncbi_id"),
			GeneName: t.get(row, "gene_name"),
			KEGGID:   t.get(row, "kegg_id"),
		})
	}
	return mappings, nil
}

// ReadProteomics loads protein measurements. The gene identifier is embedded
// in the description field after geneDelim; rows where it cannot be recovered
// are skipped and counted, never silently dropped.
func ReadProteomics(path string, comma rune, geneDelim string) ([]domain.ProteomicsRecord, int, error) {
	t, err := readTable(path, comma, "description", "avg_ratio", "ratio_count", "protein")
	if err != nil {
		return nil, 0, err
	}

	var skipped int
	records := make([]domain.ProteomicsRecord, 0, len(t.rows))
	for n, row := range t.rows {
		geneID, ok := ident.GeneIDFromDescription(t.get(row, "description"), geneDelim)
		if !ok {
			skipped++
			continue
		}
		ratio, err := strconv.ParseFloat(t.get(row, "avg_ratio"), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: avg_ratio: %w", path, n+2, err)
		}
		count, err := strconv.Atoi(t.get(row, "ratio_count"))
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: ratio_count: %w", path, n+2, err)
		}
		records = append(records, domain.ProteomicsRecord{
			GeneID:     geneID,
			Protein:    t.get(row, "protein"),
			AvgRatio:   ratio,
			RatioCount: count,
		})
	}
	return records, skipped, nil
}

// ReadGOAnnotations loads the GO-term table (organism, go_term, gene_id).
// The go_term column carries "<description> (GO:<id>)"; unparsable terms are
// skipped and counted.
func ReadGOAnnotations(path string, comma rune) ([]domain.GOAnnotation, int, error) {
	t, err := readTable(path, comma, "organism", "go_term", "gene_id")
	if err != nil {
		return nil, 0, err
	}

	var skipped int
	annotations := make([]domain.GOAnnotation, 0, len(t.rows))
	for _, row := range t.rows {
		id, name, ok := ident.ParseGOTerm(t.get(row, "go_term"))
		if !ok {
			skipped++
			continue
		}
		annotations = append(annotations, domain.GOAnnotation{
			Organism: t.get(row, "organism"),
			TermID:   id,
			TermName: name,
			GeneID:   t.get(row, "gene_id"),
		})
	}
	return annotations, skipped, nil
}
