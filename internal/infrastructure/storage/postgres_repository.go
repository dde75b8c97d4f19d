package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/ports"
)

// PostgresRepository persists run summaries and enrichment results.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ResultRepository = (*PostgresRepository)(nil)

// Open connects to Postgres and returns a repository bound to it.
func Open(dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresRepository(db), nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRun upserts the run summary row keyed by run id.
func (r *PostgresRepository) SaveRun(ctx context.Context, run domain.RunSummary) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("analysis_runs").
		Columns("run_id", "samples", "genes_loaded", "genes_retained",
			"dropped_low_count", "non_coding_rows", "strategy",
			"upregulated", "downregulated", "excluded_pvalues",
			"kegg_unmapped", "go_unmapped",
			"proteomics_rows", "proteomics_unmatched").
		Values(run.RunID, run.Samples, run.GenesLoaded, run.GenesRetained,
			run.DroppedLowCount, run.NonCodingRows, run.Strategy,
			run.Upregulated, run.Downregulated, run.ExcludedPValues,
			run.KEGGUnmapped, run.GOUnmapped,
			run.ProteomicsRows, run.ProteomicsUnmatched).
		Suffix(`ON CONFLICT (run_id) DO UPDATE SET
			upregulated = EXCLUDED.upregulated,
			downregulated = EXCLUDED.downregulated,
			excluded_pvalues = EXCLUDED.excluded_pvalues,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

// SaveEnrichment inserts enrichment rows for the run, replacing any earlier
// rows with the same run id.
func (r *PostgresRepository) SaveEnrichment(ctx context.Context, runID string, results []domain.EnrichmentResult) error {
	if r.db == nil || len(results) == 0 {
		return nil
	}

	del, delArgs, err := r.builder.
		Delete("enrichment_results").
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build enrichment delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("clear enrichment rows: %w", err)
	}

	insert := r.builder.
		Insert("enrichment_results").
		Columns("run_id", "set_id", "description", "enrich_score",
			"pvalue", "qvalue", "rank", "set_size", "core_genes")
	for _, res := range results {
		insert = insert.Values(runID, res.SetID, res.Description, res.Score,
			res.PValue, res.QValue, res.Rank, res.SetSize,
			strings.Join(res.CoreGenes, "/"))
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build enrichment insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert enrichment rows: %w", err)
	}
	return nil
}
