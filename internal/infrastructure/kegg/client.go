// Package kegg fetches curated pathway gene sets from the KEGG REST
// interface for a given organism code.
package kegg

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/ident"
	"github.com/catherinechia/p4sbip/internal/ports"
)

// Client talks to a KEGG-compatible REST endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.GeneSetSource = (*Client)(nil)

// NewClient creates a reusable client; pass nil to use a default HTTP client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// FetchSets downloads the pathway list and the gene-to-pathway links for the
// organism and merges them into gene sets. Gene identifiers keep the KEGG
// namespace with the organism prefix stripped.
func (c *Client) FetchSets(ctx context.Context, organism string) ([]domain.GeneSet, error) {
	if organism == "" {
		return nil, fmt.Errorf("kegg: organism code required")
	}

	names, err := c.fetchTSV(ctx, fmt.Sprintf("%s/list/pathway/%s", c.baseURL, organism))
	if err != nil {
		return nil, fmt.Errorf("list pathways: %w", err)
	}

	links, err := c.fetchTSV(ctx, fmt.Sprintf("%s/link/%s/pathway", c.baseURL, organism))
	if err != nil {
		return nil, fmt.Errorf("link pathways: %w", err)
	}

	descriptions := make(map[string]string, len(names))
	for _, row := range names {
		descriptions[ident.StripNamespace(row[0])] = row[1]
	}

	members := map[string][]string{}
	for _, row := range links {
		pathID := ident.StripNamespace(row[0])
		gene := ident.StripNamespace(row[1])
		members[pathID] = append(members[pathID], gene)
	}

	sets := make([]domain.GeneSet, 0, len(members))
	for pathID, genes := range members {
		sets = append(sets, domain.GeneSet{
			ID:          pathID,
			Description: descriptions[pathID],
			Genes:       genes,
		})
	}
	sort.Slice(sets, func(a, b int) bool { return sets[a].ID < sets[b].ID })
	return sets, nil
}

// fetchTSV downloads a two-column tab-separated KEGG listing.
func (c *Client) fetchTSV(ctx context.Context, url string) ([][2]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kegg error: %s", resp.Status)
	}

	var rows [][2]string
	scan := bufio.NewScanner(resp.Body)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed kegg line %q", line)
		}
		rows = append(rows, [2]string{fields[0], fields[1]})
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return rows, nil
}
