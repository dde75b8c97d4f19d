package ident

// Mapping is one row of the gene-id cross-reference table.
type Mapping struct {
	NCBIID   string
	GeneName string
	KEGGID   string
}

// Translator resolves identifiers between the NCBI locus-tag, gene-name and
// KEGG namespaces. Misses are counted rather than swallowed; the pipeline
// surfaces the count in the run report.
type Translator struct {
	byNCBI map[string]Mapping
	byName map[string]Mapping
	byKEGG map[string]Mapping
	misses int
}

// NewTranslator indexes the cross-reference table. Coverage of the table is
// not assumed to be complete; lookups against it may legitimately miss.
func NewTranslator(mappings []Mapping) *Translator {
	t := &Translator{
		byNCBI: make(map[string]Mapping, len(mappings)),
		byName: make(map[string]Mapping, len(mappings)),
		byKEGG: make(map[string]Mapping, len(mappings)),
	}
	for _, m := range mappings {
		if m.NCBIID != "" {
			t.byNCBI[NormalizeLocusTag(m.NCBIID)] = m
		}
		if m.GeneName != "" {
			t.byName[NormalizeLocusTag(m.GeneName)] = m
		}
		if m.KEGGID != "" {
			t.byKEGG[NormalizeLocusTag(m.KEGGID)] = m
		}
	}
	return t
}

// KEGGFromNCBI maps an NCBI locus tag to its KEGG identifier.
func (t *Translator) KEGGFromNCBI(id string) (string, bool) {
	m, ok := t.byNCBI[NormalizeLocusTag(id)]
	if !ok || m.KEGGID == "" {
		t.misses++
		return "", false
	}
	return m.KEGGID, true
}

// NCBIFromName maps a gene name (the accession scheme used by the GO
// annotation table) to its NCBI locus tag.
func (t *Translator) NCBIFromName(name string) (string, bool) {
	m, ok := t.byName[NormalizeLocusTag(name)]
	if !ok || m.NCBIID == "" {
		t.misses++
		return "", false
	}
	return m.NCBIID, true
}

// NCBIFromKEGG maps a KEGG gene identifier back to its NCBI locus tag.
func (t *Translator) NCBIFromKEGG(id string) (string, bool) {
	m, ok := t.byKEGG[NormalizeLocusTag(id)]
	if !ok || m.NCBIID == "" {
		t.misses++
		return "", false
	}
	return m.NCBIID, true
}

// Misses reports how many lookups failed since construction or the last reset.
func (t *Translator) Misses() int { return t.misses }

// ResetMisses clears the miss counter between translation passes so each
// stage reports its own count.
func (t *Translator) ResetMisses() { t.misses = 0 }
