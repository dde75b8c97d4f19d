package ports

import (
	"context"

	"github.com/catherinechia/p4sbip/internal/domain"
)

// DataSource loads the immutable input snapshot the pipeline consumes.
type DataSource interface {
	LoadInputs(ctx context.Context) (*domain.Inputs, error)
}

// GeneSetSource fetches a curated gene-set universe for an organism code.
type GeneSetSource interface {
	FetchSets(ctx context.Context, organism string) ([]domain.GeneSet, error)
}

// ResultRepository persists run outcomes for later inspection.
type ResultRepository interface {
	SaveRun(ctx context.Context, run domain.RunSummary) error
	SaveEnrichment(ctx context.Context, runID string, results []domain.EnrichmentResult) error
}

// Notifier publishes the human-readable run digest.
type Notifier interface {
	PublishDigest(ctx context.Context, run domain.RunSummary) error
}

// DigestSink pushes the machine-readable run digest to an external endpoint.
type DigestSink interface {
	SendDigest(ctx context.Context, payload []byte) error
}
