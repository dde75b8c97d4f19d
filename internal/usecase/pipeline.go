package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/catherinechia/p4sbip/internal/config"
	"github.com/catherinechia/p4sbip/internal/countfilter"
	"github.com/catherinechia/p4sbip/internal/de"
	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/enrich"
	"github.com/catherinechia/p4sbip/internal/ident"
	"github.com/catherinechia/p4sbip/internal/normalize"
	"github.com/catherinechia/p4sbip/internal/pca"
	"github.com/catherinechia/p4sbip/internal/ports"
	"github.com/catherinechia/p4sbip/internal/proteomics"
	"github.com/catherinechia/p4sbip/internal/report"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.DataSource
	Sets       ports.GeneSetSource
	Repository ports.ResultRepository
	Notifier   ports.Notifier
	Sink       ports.DigestSink
	Renderer   *report.Renderer
	Strategies *normalize.Registry
	Config     config.Config
	Logger     *slog.Logger
}

// Pipeline implements the analysis workflow from raw tables to reports.
type Pipeline struct {
	source     ports.DataSource
	sets       ports.GeneSetSource
	repository ports.ResultRepository
	notifier   ports.Notifier
	sink       ports.DigestSink
	renderer   *report.Renderer
	strategies *normalize.Registry
	cfg        config.Config
	log        *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		sets:       deps.Sets,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		sink:       deps.Sink,
		renderer:   deps.Renderer,
		strategies: deps.Strategies,
		cfg:        deps.Config,
		log:        deps.Logger,
	}
}

// Run orchestrates loading, filtering, normalization, QC, differential
// expression, enrichment, proteomics integration, reporting and publishing.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.source == nil {
		return nil
	}

	inputs, err := p.source.LoadInputs(ctx)
	if err != nil {
		return fmt.Errorf("load inputs: %w", err)
	}

	run := domain.RunSummary{
		RunID:       time.Now().UTC().Format("20060102-150405"),
		Samples:     len(inputs.Design),
		GenesLoaded: countGenes(inputs.Counts),
	}

	translator := ident.NewTranslator(inputs.GeneMap)
	samples := make([]string, len(inputs.Design))
	for i, d := range inputs.Design {
		samples[i] = d.SequenceID
	}

	filtered, err := countfilter.Apply(inputs.Counts, samples,
		p.cfg.Filter.NonCodingMarker, p.cfg.Filter.LowCountThreshold)
	if err != nil {
		return fmt.Errorf("filter counts: %w", err)
	}
	run.NonCodingRows = len(filtered.NonCoding)
	run.NonCodingShare = filtered.NonCodingShare
	run.DroppedLowCount = filtered.DroppedLowCount
	run.GenesRetained = filtered.Coding.NumGenes()
	p.log.Info("counts filtered",
		"retained", run.GenesRetained,
		"dropped_low_count", run.DroppedLowCount,
		"non_coding_share", run.NonCodingShare)

	factors, check, err := p.sizeFactors(filtered.Coding)
	if err != nil {
		return fmt.Errorf("size factors: %w", err)
	}
	run.Strategy = factors.Strategy
	run.SizeFactors = factors.PerSample
	run.CheckFactors = check.PerSample
	run.UndefinedRatios = factors.UndefinedRatios

	norm, err := normalize.Apply(filtered.Coding, factors)
	if err != nil {
		return fmt.Errorf("normalize counts: %w", err)
	}

	projection, err := pca.Project(filtered.Coding.Genes, samples, norm)
	if err != nil {
		return fmt.Errorf("project samples: %w", err)
	}
	run.ExplainedVariance = projection.Explained

	model, err := de.Fit(filtered.Coding, inputs.Design, factors)
	if err != nil {
		return fmt.Errorf("fit model: %w", err)
	}
	table := model.Contrast()
	table.AdjustPValues()
	run.ExcludedPValues = table.ExcludedPValues

	shrunk := make([]*de.ShrinkResult, 0, 2)
	for _, method := range []de.Method{de.MethodNormal, de.MethodAdaptiveT} {
		res, sErr := de.Shrink(table, method)
		if sErr != nil {
			return fmt.Errorf("shrink %s: %w", method, sErr)
		}
		shrunk = append(shrunk, res)
	}

	up, down := table.Significant(p.cfg.DE.PValueCutoff, p.cfg.DE.LFCCutoff)
	run.Upregulated = len(up)
	run.Downregulated = len(down)
	p.log.Info("contrast complete",
		"upregulated", run.Upregulated,
		"downregulated", run.Downregulated,
		"excluded_pvalues", run.ExcludedPValues)

	effects := make(map[string]float64, len(table.Rows))
	for _, row := range table.Rows {
		effects[row.GeneID] = row.Log2FC
	}

	keggSummary, err := p.runKEGG(ctx, effects, translator, &run)
	if err != nil {
		return err
	}
	goSummary, err := p.runGO(effects, inputs.GOTerms, translator, &run)
	if err != nil {
		return err
	}

	integration := proteomics.Integrate(inputs.Proteomics, table,
		p.cfg.DE.PValueCutoff, p.cfg.DE.LFCCutoff, p.cfg.Proteomics.AxisBound)
	run.ProteomicsRows = integration.Standalone + inputs.ProteomicsSkipped
	run.ProteomicsUnmatched = integration.Unmatched
	run.ProteomicsConcordant = integration.Concordant
	run.ProteomicsDiscordant = integration.Discordant

	if err := p.render(table, shrunk, up, down, filtered.Coding.Genes, samples,
		norm, keggSummary, goSummary, integration, run); err != nil {
		return err
	}

	if p.repository != nil {
		if err := p.repository.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
		results := append(append([]domain.EnrichmentResult{},
			keggSummary.Results...), goSummary.Results...)
		if err := p.repository.SaveEnrichment(ctx, run.RunID, results); err != nil {
			return fmt.Errorf("persist enrichment: %w", err)
		}
	}

	return p.publish(ctx, run)
}

// sizeFactors estimates factors with the configured strategy and recomputes
// them with the alternate strategy as a cross-check.
func (p *Pipeline) sizeFactors(m *domain.CountMatrix) (factors, check *normalize.Factors, err error) {
	primary, err := p.strategies.Resolve(p.cfg.Normalization.Strategy)
	if err != nil {
		return nil, nil, err
	}

	factors, err = primary.SizeFactors(m)
	if err != nil {
		return nil, nil, fmt.Errorf("strategy %s: %w", primary.Name(), err)
	}

	alternate := "median-ratio"
	if primary.Name() == alternate {
		alternate = "rle"
	}
	cross, err := p.strategies.Resolve(alternate)
	if err != nil {
		return nil, nil, err
	}
	check, err = cross.SizeFactors(m)
	if err != nil {
		return nil, nil, fmt.Errorf("strategy %s: %w", cross.Name(), err)
	}

	p.log.Info("size factors estimated",
		"strategy", factors.Strategy,
		"check_strategy", check.Strategy,
		"undefined_ratios", factors.UndefinedRatios)
	return factors, check, nil
}

func (p *Pipeline) runKEGG(ctx context.Context, effects map[string]float64, tr *ident.Translator, run *domain.RunSummary) (*enrich.Summary, error) {
	translated, unmapped := enrich.TranslateStats(effects, tr.KEGGFromNCBI)
	run.KEGGUnmapped = unmapped
	if unmapped > 0 {
		p.log.Warn("genes without KEGG identifier excluded from ranking", "count", unmapped)
	}

	sets, err := p.sets.FetchSets(ctx, p.cfg.Enrichment.Organism)
	if err != nil {
		return nil, fmt.Errorf("fetch pathway sets: %w", err)
	}

	summary, err := enrich.Run(enrich.NewRankedList(translated), sets, p.enrichConfig())
	if err != nil {
		return nil, fmt.Errorf("pathway enrichment: %w", err)
	}
	run.KEGGSetsTested = len(summary.Results)
	run.SetsSkippedSize += summary.SkippedSize
	run.SetsSkippedEmpty += summary.SkippedEmpty
	return summary, nil
}

func (p *Pipeline) runGO(effects map[string]float64, annotations []domain.GOAnnotation, tr *ident.Translator, run *domain.RunSummary) (*enrich.Summary, error) {
	sets, unmapped, emptied := enrich.BuildGOSets(annotations, tr.NCBIFromName)
	run.GOUnmapped = unmapped
	run.SetsSkippedEmpty += emptied
	if unmapped > 0 {
		p.log.Warn("GO members without locus tag excluded from sets", "count", unmapped)
	}
	if emptied > 0 {
		p.log.Warn("GO terms emptied by translation excluded", "count", emptied)
	}

	summary, err := enrich.Run(enrich.NewRankedList(effects), sets, p.enrichConfig())
	if err != nil {
		return nil, fmt.Errorf("GO enrichment: %w", err)
	}
	run.GOSetsTested = len(summary.Results)
	run.SetsSkippedSize += summary.SkippedSize
	run.SetsSkippedEmpty += summary.SkippedEmpty
	return summary, nil
}

func (p *Pipeline) enrichConfig() enrich.Config {
	return enrich.Config{
		MinSetSize:   p.cfg.Enrichment.MinSetSize,
		MaxSetSize:   p.cfg.Enrichment.MaxSetSize,
		Permutations: p.cfg.Enrichment.Permutations,
		Seed:         p.cfg.Enrichment.Seed,
	}
}

func (p *Pipeline) render(table *de.Table, shrunk []*de.ShrinkResult, up, down []de.Row,
	genes, samples []string, norm [][]float64,
	kegg, goSets *enrich.Summary, integration *proteomics.Integration,
	run domain.RunSummary) error {
	if p.renderer == nil {
		return nil
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"normalized_counts.tsv", func() error {
			return p.renderer.WriteNormalizedCounts("normalized_counts.tsv", genes, samples, norm)
		}},
		{"de_results.tsv", func() error {
			return p.renderer.WriteDETable("de_results.tsv", table, shrunk)
		}},
		{"upregulated.tsv", func() error {
			return p.renderer.WriteGeneList("upregulated.tsv", up)
		}},
		{"downregulated.tsv", func() error {
			return p.renderer.WriteGeneList("downregulated.tsv", down)
		}},
		{"enrichment_kegg.tsv", func() error {
			return p.renderer.WriteEnrichment("enrichment_kegg.tsv", kegg)
		}},
		{"enrichment_go.tsv", func() error {
			return p.renderer.WriteEnrichment("enrichment_go.tsv", goSets)
		}},
		{"proteomics_integration.tsv", func() error {
			return p.renderer.WriteIntegration("proteomics_integration.tsv", integration.Rows)
		}},
		{"report.html", func() error {
			return p.renderer.WriteHTML("report.html", run)
		}},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("write %s: %w", step.name, err)
		}
	}
	return nil
}

// publish sends the run digest over the configured channels. A run with no
// channel configured is still a successful run.
func (p *Pipeline) publish(ctx context.Context, run domain.RunSummary) error {
	if p.sink != nil {
		payload, err := buildDigestJSON(run)
		if err != nil {
			return fmt.Errorf("build digest payload: %w", err)
		}
		if err := p.sink.SendDigest(ctx, payload); err != nil {
			return fmt.Errorf("send digest: %w", err)
		}
	}

	if p.notifier == nil {
		return nil
	}
	return p.notifier.PublishDigest(ctx, run)
}

func buildDigestJSON(run domain.RunSummary) ([]byte, error) {
	type digest struct {
		RunID           string  `json:"runId"`
		Samples         int     `json:"samples"`
		GenesLoaded     int     `json:"genesLoaded"`
		GenesRetained   int     `json:"genesRetained"`
		DroppedLowCount int     `json:"droppedLowCount"`
		NonCodingShare  float64 `json:"nonCodingShare"`
		Strategy        string  `json:"strategy"`
		Upregulated     int     `json:"upregulated"`
		Downregulated   int     `json:"downregulated"`
		ExcludedPValues int     `json:"excludedPValues"`
		KEGGUnmapped    int     `json:"keggUnmapped"`
		GOUnmapped      int     `json:"goUnmapped"`
		Concordant      int     `json:"proteomicsConcordant"`
		Discordant      int     `json:"proteomicsDiscordant"`
	}

	return json.Marshal(digest{
		RunID:           run.RunID,
		Samples:         run.Samples,
		GenesLoaded:     run.GenesLoaded,
		GenesRetained:   run.GenesRetained,
		DroppedLowCount: run.DroppedLowCount,
		NonCodingShare:  run.NonCodingShare,
		Strategy:        run.Strategy,
		Upregulated:     run.Upregulated,
		Downregulated:   run.Downregulated,
		ExcludedPValues: run.ExcludedPValues,
		KEGGUnmapped:    run.KEGGUnmapped,
		GOUnmapped:      run.GOUnmapped,
		Concordant:      run.ProteomicsConcordant,
		Discordant:      run.ProteomicsDiscordant,
	})
}

func countGenes(records []domain.CountRecord) int {
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		seen[rec.GeneID] = struct{}{}
	}
	return len(seen)
}
