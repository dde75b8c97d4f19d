package ident

import "testing"

func TestGeneIDFromDescription(t *testing.T) {
	t.Parallel()

	desc := "Photosystem II protein D1 OS=Synechococcus GN=psbA1 PE=1 SV=2"
	id, ok := GeneIDFromDescription(desc, "GN=")
	if !ok {
		t.Fatal("expected a gene id")
	}
	if id != "psbA1" {
		t.Fatalf("unexpected id: %s", id)
	}

	if _, ok := GeneIDFromDescription("no marker here", "GN="); ok {
		t.Fatal("missing delimiter must not yield an id")
	}
	if _, ok := GeneIDFromDescription("trailing GN= ", "GN="); ok {
		t.Fatal("empty id must not be returned")
	}
	if _, ok := GeneIDFromDescription("anything", ""); ok {
		t.Fatal("empty delimiter must not yield an id")
	}
}

func TestGeneIDFromDescriptionAtEnd(t *testing.T) {
	t.Parallel()

	id, ok := GeneIDFromDescription("Uncharacterized protein GN=Synpcc7942_1592", "GN=")
	if !ok || id != "Synpcc7942_1592" {
		t.Fatalf("expected Synpcc7942_1592, got %q (ok=%v)", id, ok)
	}
}

func TestParseGOTerm(t *testing.T) {
	t.Parallel()

	id, desc, ok := ParseGOTerm("photosynthesis (GO:0015979)")
	if !ok {
		t.Fatal("expected a parsed term")
	}
	if id != "GO:0015979" {
		t.Fatalf("unexpected id: %s", id)
	}
	if desc != "photosynthesis" {
		t.Fatalf("unexpected description: %s", desc)
	}

	for _, bad := range []string{"", "no accession", "(GO:0015979)", "orphan (GO:)"} {
		if _, _, ok := ParseGOTerm(bad); ok {
			t.Fatalf("expected failure for %q", bad)
		}
	}
}

func TestNormalizeLocusTag(t *testing.T) {
	t.Parallel()

	if got := NormalizeLocusTag(" Synpcc7942_1592 "); got != "SYNPCC7942_1592" {
		t.Fatalf("unexpected tag: %s", got)
	}
}

func TestStripNamespace(t *testing.T) {
	t.Parallel()

	if got := StripNamespace("syf:Synpcc7942_1592"); got != "Synpcc7942_1592" {
		t.Fatalf("unexpected id: %s", got)
	}
	if got := StripNamespace("path:syf00010"); got != "syf00010" {
		t.Fatalf("unexpected id: %s", got)
	}
	if got := StripNamespace("plain"); got != "plain" {
		t.Fatalf("unexpected id: %s", got)
	}
}
