package domain

// GeneSet is a named collection of gene identifiers tested for enrichment.
type GeneSet struct {
	ID          string
	Description string
	Genes       []string
}

// EnrichmentResult is the per-set outcome of one enrichment run.
type EnrichmentResult struct {
	SetID       string
	Description string
	Score       float64
	PValue      float64
	QValue      float64
	Rank        int
	CoreGenes   []string
	SetSize     int
}

// GOAnnotation is one row of the GO-term annotation table.
type GOAnnotation struct {
	Organism string
	TermID   string
	TermName string
	GeneID   string
}

// ProteomicsRecord is one protein-level measurement keyed by the gene
// identifier recovered from its description field.
type ProteomicsRecord struct {
	GeneID     string
	Protein    string
	AvgRatio   float64
	RatioCount int
}

// RunSummary aggregates the counters every stage reports. It backs the HTML
// report, the published digest and the persisted run row.
type RunSummary struct {
	RunID string

	Samples     int
	GenesLoaded int

	NonCodingRows   int
	NonCodingShare  float64
	DroppedLowCount int
	GenesRetained   int

	Strategy        string
	SizeFactors     []float64
	CheckFactors    []float64
	UndefinedRatios int

	ExplainedVariance []float64

	Upregulated     int
	Downregulated   int
	ExcludedPValues int

	KEGGUnmapped     int
	GOUnmapped       int
	SetsSkippedSize  int
	SetsSkippedEmpty int
	KEGGSetsTested   int
	GOSetsTested     int

	ProteomicsRows       int
	ProteomicsUnmatched  int
	ProteomicsConcordant int
	ProteomicsDiscordant int
}
