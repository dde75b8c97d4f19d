package report

import (
	"fmt"
	"html/template"

	"github.com/catherinechia/p4sbip/internal/domain"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><title>p4sbip run {{.RunID}}</title></head>
<body>
<h1>Analysis run {{.RunID}}</h1>

<h2>Input</h2>
<table id="input-summary">
<tr><td>samples</td><td>{{.Samples}}</td></tr>
<tr><td>genes loaded</td><td>{{.GenesLoaded}}</td></tr>
</table>

<h2>Filtering</h2>
<table id="filter-summary">
<tr><td>non-coding rows</td><td>{{.NonCodingRows}}</td></tr>
<tr><td>non-coding read share</td><td>{{printf "%.4f" .NonCodingShare}}</td></tr>
<tr><td>dropped low-count genes</td><td>{{.DroppedLowCount}}</td></tr>
<tr><td>genes retained</td><td>{{.GenesRetained}}</td></tr>
</table>

<h2>Normalization ({{.Strategy}})</h2>
<table id="normalization-summary">
<tr><td>undefined ratios excluded</td><td>{{.UndefinedRatios}}</td></tr>
<tr><th>sample</th><th>size factor</th><th>cross-check factor</th></tr>
{{range $i, $f := .SizeFactors}}<tr><td>{{$i}}</td><td>{{printf "%.4f" $f}}</td><td>{{printf "%.4f" (index $.CheckFactors $i)}}</td></tr>
{{end}}</table>

<h2>Principal components</h2>
<table id="pca-summary">
{{range $i, $v := .ExplainedVariance}}<tr><td>PC{{$i}}</td><td>{{printf "%.4f" $v}}</td></tr>
{{end}}</table>

<h2>Differential expression</h2>
<table id="de-summary">
<tr><td>upregulated</td><td>{{.Upregulated}}</td></tr>
<tr><td>downregulated</td><td>{{.Downregulated}}</td></tr>
<tr><td>p-values excluded from FDR</td><td>{{.ExcludedPValues}}</td></tr>
</table>

<h2>Gene-set enrichment</h2>
<table id="enrichment-summary">
<tr><td>KEGG sets tested</td><td>{{.KEGGSetsTested}}</td></tr>
<tr><td>GO sets tested</td><td>{{.GOSetsTested}}</td></tr>
<tr><td>genes unmapped (KEGG)</td><td>{{.KEGGUnmapped}}</td></tr>
<tr><td>genes unmapped (GO)</td><td>{{.GOUnmapped}}</td></tr>
<tr><td>sets skipped by size bounds</td><td>{{.SetsSkippedSize}}</td></tr>
<tr><td>sets empty after translation</td><td>{{.SetsSkippedEmpty}}</td></tr>
</table>

<h2>Proteomics integration</h2>
<table id="proteomics-summary">
<tr><td>proteomics rows</td><td>{{.ProteomicsRows}}</td></tr>
<tr><td>without transcript counterpart</td><td>{{.ProteomicsUnmatched}}</td></tr>
<tr><td>concordant</td><td>{{.ProteomicsConcordant}}</td></tr>
<tr><td>discordant</td><td>{{.ProteomicsDiscordant}}</td></tr>
</table>
</body>
</html>
`))

// WriteHTML renders the run report with every stage's counters.
func (r *Renderer) WriteHTML(name string, run domain.RunSummary) error {
	f, err := r.create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, run); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if r.logger != nil {
		r.logger.Debug("report written", "file", name)
	}
	return nil
}
