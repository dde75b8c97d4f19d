package kegg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/list/pathway/syf":
			w.Write([]byte("path:syf00010\tGlycolysis / Gluconeogenesis\npath:syf00020\tCitrate cycle (TCA cycle)\n"))
		case "/link/syf/pathway":
			w.Write([]byte("path:syf00010\tsyf:Synpcc7942_0001\npath:syf00010\tsyf:Synpcc7942_0002\npath:syf00020\tsyf:Synpcc7942_0003\n"))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFetchSets(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	sets, err := client.FetchSets(context.Background(), "syf")
	if err != nil {
		t.Fatalf("FetchSets returned error: %v", err)
	}

	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}

	first := sets[0]
	if first.ID != "syf00010" {
		t.Fatalf("unexpected id: %s", first.ID)
	}
	if first.Description != "Glycolysis / Gluconeogenesis" {
		t.Fatalf("unexpected description: %s", first.Description)
	}
	if !reflect.DeepEqual(first.Genes, []string{"Synpcc7942_0001", "Synpcc7942_0002"}) {
		t.Fatalf("unexpected members: %v", first.Genes)
	}
	if sets[1].ID != "syf00020" || len(sets[1].Genes) != 1 {
		t.Fatalf("unexpected second set: %+v", sets[1])
	}
}

func TestFetchSetsRequiresOrganism(t *testing.T) {
	t.Parallel()

	client := NewClient("http://example.invalid", nil)
	if _, err := client.FetchSets(context.Background(), ""); err == nil {
		t.Fatal("empty organism must be rejected")
	}
}

func TestFetchSetsServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	if _, err := client.FetchSets(context.Background(), "syf"); err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestFetchSetsMalformedLine(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("no tab separator here\n"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	if _, err := client.FetchSets(context.Background(), "syf"); err == nil {
		t.Fatal("expected error on malformed listing")
	}
}
