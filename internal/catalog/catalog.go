// Package catalog lists and downloads the named label sheets ("stickers")
// that can be fed into the nudge-and-print flow.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Lllllllleong/labelnudger/internal/models"
)

// DefaultIndexURL is the public sticker index.
const DefaultIndexURL = "https://blueislandpress.github.io/label-nudger-stickers/index.json"

// DefaultListTimeout bounds the index fetch.
const DefaultListTimeout = 10 * time.Second

// Catalog lists the available stickers.
type Catalog interface {
	List(ctx context.Context) ([]models.Sticker, error)
}

// HTTPCatalog reads a JSON array of {"name", "url"} objects.
type HTTPCatalog struct {
	URL    string
	Client *http.Client
}

func NewHTTPCatalog(url string) *HTTPCatalog {
	if url == "" {
		url = DefaultIndexURL
	}
	return &HTTPCatalog{URL: url, Client: &http.Client{Timeout: DefaultListTimeout}}
}

func (c *HTTPCatalog) List(ctx context.Context) ([]models.Sticker, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog url %q: %w", c.URL, err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultListTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch catalog: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseIndex(body)
}

// ParseIndex decodes a sticker index, dropping entries without a name or url.
func ParseIndex(data []byte) ([]models.Sticker, error) {
	var raw []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	out := make([]models.Sticker, 0, len(raw))
	for _, r := range raw {
		name, url := strings.TrimSpace(r.Name), strings.TrimSpace(r.URL)
		if name == "" || url == "" {
			continue
		}
		out = append(out, models.Sticker{Name: name, URL: url})
	}
	return out, nil
}

// Find returns the sticker whose name matches, ignoring case.
func Find(stickers []models.Sticker, name string) (models.Sticker, bool) {
	name = strings.TrimSpace(name)
	for _, s := range stickers {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return models.Sticker{}, false
}

var unsafeRun = regexp.MustCompile(`[^a-z0-9]+`)

// SafeName turns a sticker name into a file name stem.
func SafeName(name string) string {
	safe := strings.Trim(unsafeRun.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if safe == "" {
		return "sticker"
	}
	return safe
}

// FileName is the cache file name for a sticker sheet.
func FileName(name string) string {
	return SafeName(name) + "_65up.pdf"
}
