package domain

import "github.com/catherinechia/p4sbip/internal/ident"

// Inputs is the immutable snapshot of all five input tables, loaded once
// before the pipeline runs.
type Inputs struct {
	Design     []SampleDesign
	Counts     []CountRecord
	GeneMap    []ident.Mapping
	Proteomics []ProteomicsRecord
	GOTerms    []GOAnnotation

	// ProteomicsSkipped and GOTermsSkipped count rows whose embedded
	// identifiers could not be recovered during loading.
	ProteomicsSkipped int
	GOTermsSkipped    int
}
