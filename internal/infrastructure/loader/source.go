package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/catherinechia/p4sbip/internal/config"
	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/ports"
)

// FileSource loads all input tables from the configured paths in one pass.
type FileSource struct {
	inputs config.InputConfig
	delim  string
	logger *slog.Logger
}

var _ ports.DataSource = (*FileSource)(nil)

// NewFileSource wires the input configuration.
func NewFileSource(inputs config.InputConfig, geneDelim string, log *slog.Logger) *FileSource {
	return &FileSource{inputs: inputs, delim: geneDelim, logger: log}
}

// LoadInputs reads the five tables fully into memory. Any schema error is
// fatal and no partial snapshot is returned.
func (s *FileSource) LoadInputs(ctx context.Context) (*domain.Inputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	comma := s.inputs.Separator()

	design, err := ReadDesign(s.inputs.Design, comma)
	if err != nil {
		return nil, fmt.Errorf("load design: %w", err)
	}

	counts, err := ReadCounts(s.inputs.Counts, comma)
	if err != nil {
		return nil, fmt.Errorf("load counts: %w", err)
	}

	geneMap, err := ReadGeneIDMap(s.inputs.GeneMap, comma)
	if err != nil {
		return nil, fmt.Errorf("load gene map: %w", err)
	}

	proteomics, protSkipped, err := ReadProteomics(s.inputs.Proteomics, comma, s.delim)
	if err != nil {
		return nil, fmt.Errorf("load proteomics: %w", err)
	}

	goTerms, goSkipped, err := ReadGOAnnotations(s.inputs.GOTerms, comma)
	if err != nil {
		return nil, fmt.Errorf("load go terms: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("inputs loaded",
			"samples", len(design),
			"count_rows", len(counts),
			"gene_map_rows", len(geneMap),
			"proteomics_rows", len(proteomics),
			"proteomics_skipped", protSkipped,
			"go_rows", len(goTerms),
			"go_skipped", goSkipped)
	}

	return &domain.Inputs{
		Design:            design,
		Counts:            counts,
		GeneMap:           geneMap,
		Proteomics:        proteomics,
		GOTerms:           goTerms,
		ProteomicsSkipped: protSkipped,
		GOTermsSkipped:    goSkipped,
	}, nil
}
