// Package ident holds the pure identifier-translation helpers shared by the
// loaders and the enrichment stage. Every lookup that can fail returns an
// explicit ok flag; callers decide whether a miss is counted or fatal.
package ident

import "strings"

// GeneIDFromDescription extracts the gene identifier embedded in a free-text
// proteomics description after the given delimiter (e.g. "GN="). The id runs
// until the next whitespace. Returns false when the delimiter is absent or
// followed by nothing.
func GeneIDFromDescription(desc, delim string) (string, bool) {
	if delim == "" {
		return "", false
	}
	pos := strings.Index(desc, delim)
	if pos < 0 {
		return "", false
	}
	rest := desc[pos+len(delim):]
	if end := strings.IndexFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' }); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}

// ParseGOTerm splits a term of the form "<description> (GO:<id>)" into its
// accession and description parts.
func ParseGOTerm(term string) (id, description string, ok bool) {
	term = strings.TrimSpace(term)
	open := strings.LastIndex(term, "(GO:")
	if open < 0 || !strings.HasSuffix(term, ")") {
		return "", "", false
	}
	id = term[open+1 : len(term)-1]
	description = strings.TrimSpace(term[:open])
	if id == "GO:" || description == "" {
		return "", "", false
	}
	return id, description, true
}

// NormalizeLocusTag canonicalizes a locus tag for map lookups. Annotation
// sources disagree on case (Synpcc7942_1592 vs SYNPCC7942_1592), so lookups
// go through upper case.
func NormalizeLocusTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// StripNamespace removes a "ns:" prefix from identifiers such as
// "syf:Synpcc7942_1592" or "path:syf00010".
func StripNamespace(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}
