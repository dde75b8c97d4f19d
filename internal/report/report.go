// Package report writes the delimited result tables and the HTML run
// report. It renders data the pipeline computed; no analysis happens here.
package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/catherinechia/p4sbip/internal/de"
	"github.com/catherinechia/p4sbip/internal/enrich"
	"github.com/catherinechia/p4sbip/internal/proteomics"
)

// Renderer writes all output artifacts below one directory.
type Renderer struct {
	dir    string
	logger *slog.Logger
}

// NewRenderer creates the output directory lazily on first write.
func NewRenderer(dir string, log *slog.Logger) *Renderer {
	return &Renderer{dir: dir, logger: log}
}

func (r *Renderer) create(name string) (*os.File, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return f, nil
}

func (r *Renderer) writeTSV(name string, header []string, rows [][]string) error {
	f, err := r.create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if r.logger != nil {
		r.logger.Debug("table written", "file", name, "rows", len(rows))
	}
	return nil
}

// WriteEnrichment writes one gene-set universe's results in the agreed
// column layout.
func (r *Renderer) WriteEnrichment(name string, summary *enrich.Summary) error {
	header := []string{"pathID", "pathName", "enrichScore", "pvalue", "padj", "qvalue", "rank", "coreEnrich"}
	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		rows = append(rows, []string{
			res.SetID,
			res.Description,
			formatFloat(res.Score),
			formatFloat(res.PValue),
			formatFloat(res.QValue),
			formatFloat(res.QValue),
			strconv.Itoa(res.Rank),
			strings.Join(res.CoreGenes, "/"),
		})
	}
	return r.writeTSV(name, header, rows)
}

// WriteDETable writes the per-gene contrast with both shrinkage estimates
// and the normalized counts per sample.
func (r *Renderer) WriteDETable(name string, t *de.Table, shrunk []*de.ShrinkResult) error {
	header := []string{"gene", "baseMean", "log2FC", "stdErr", "pvalue", "qvalue"}
	for _, s := range shrunk {
		header = append(header, "log2FC_"+string(s.Method), "svalue_"+string(s.Method))
	}
	header = append(header, t.Samples...)

	rows := make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		fields := []string{
			row.GeneID,
			formatFloat(row.BaseMean),
			formatFloat(row.Log2FC),
			formatFloat(row.StdErr),
			formatFloat(row.PValue),
			formatFloat(row.QValue),
		}
		for _, s := range shrunk {
			fields = append(fields, formatFloat(s.Log2FC[i]), formatFloat(s.SValue[i]))
		}
		for _, v := range row.NormCounts {
			fields = append(fields, formatFloat(v))
		}
		rows = append(rows, fields)
	}
	return r.writeTSV(name, header, rows)
}

// WriteGeneList writes one significance subset as a single-column list.
func (r *Renderer) WriteGeneList(name string, rows []de.Row) error {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{row.GeneID, formatFloat(row.Log2FC), formatFloat(row.PValue)})
	}
	return r.writeTSV(name, []string{"gene", "log2FC", "pvalue"}, out)
}

// WriteNormalizedCounts writes the normalized gene x sample matrix.
func (r *Renderer) WriteNormalizedCounts(name string, genes, samples []string, norm [][]float64) error {
	header := append([]string{"gene"}, samples...)
	rows := make([][]string, 0, len(genes))
	for i, gene := range genes {
		fields := make([]string, 0, len(samples)+1)
		fields = append(fields, gene)
		for _, v := range norm[i] {
			fields = append(fields, formatFloat(v))
		}
		rows = append(rows, fields)
	}
	return r.writeTSV(name, header, rows)
}

// WriteIntegration writes the joined proteomics/transcriptomics view.
func (r *Renderer) WriteIntegration(name string, rows []proteomics.IntegratedRow) error {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.GeneID, row.Protein,
			formatFloat(row.AvgRatio), strconv.Itoa(row.RatioCount),
			formatFloat(row.Log2FC), formatFloat(row.PValue),
			strconv.FormatBool(row.Concordant),
		})
	}
	header := []string{"gene", "protein", "avg_ratio", "ratio_count", "log2FC", "pvalue", "concordant"}
	return r.writeTSV(name, header, out)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
