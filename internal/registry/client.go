// Package registry loads the zengin institution and branch code tables from
// the publicly hosted source-data JSON files. The data is read-only
// reference material: institutions are fetched once per client, branch
// tables on demand, and both are cached for the lifetime of the client
// (one processing run).
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
)

// DefaultBaseURL points at the versioned zengin-code source data.
const DefaultBaseURL = "https://raw.githubusercontent.com/zengin-code/source-data/master/data"

// entry mirrors one record of banks.json / branches/<code>.json. The files
// carry more fields (kana readings, romaji) than we need.
type entry struct {
	Name string `json:"name"`
}

// Client fetches and caches registry tables.
type Client struct {
	baseURL string
	http    *http.Client

	institutions map[string]string            // code -> name, nil until loaded
	branches     map[string]map[string]string // institution code -> (code -> name)
}

// New returns a Client against the given base URL; pass "" for the public
// zengin-code dataset.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		branches: make(map[string]map[string]string),
	}
}

// Institutions returns the full code→name institution table, fetching it on
// first use. Failures wrap models.ErrRegistryUnavailable and must be treated
// as non-fatal for the run.
func (c *Client) Institutions(ctx context.Context) (map[string]string, error) {
	if c.institutions != nil {
		return c.institutions, nil
	}
	table, err := c.fetchTable(ctx, c.baseURL+"/banks.json")
	if err != nil {
		return nil, err
	}
	c.institutions = table
	return table, nil
}

// Branches returns the branch table for one institution code, cached per
// code for the remainder of the run.
func (c *Client) Branches(ctx context.Context, institutionCode string) (map[string]string, error) {
	if table, ok := c.branches[institutionCode]; ok {
		return table, nil
	}
	table, err := c.fetchTable(ctx, fmt.Sprintf("%s/branches/%s.json", c.baseURL, institutionCode))
	if err != nil {
		return nil, err
	}
	c.branches[institutionCode] = table
	return table, nil
}

func (c *Client) fetchTable(ctx context.Context, url string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRegistryUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", models.ErrRegistryUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRegistryUnavailable, err)
	}

	var raw map[string]entry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON from %s: %v", models.ErrRegistryUnavailable, url, err)
	}

	table := make(map[string]string, len(raw))
	for code, e := range raw {
		table[code] = e.Name
	}
	return table, nil
}

// SortedCodes returns the table's codes in ascending order. Matching
// iterates tables in this order so "first plausible match" is reproducible
// across runs; map iteration order is never relied on.
func SortedCodes(table map[string]string) []string {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
