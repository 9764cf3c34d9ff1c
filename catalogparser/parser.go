package catalogparser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/interfaces"
	"github.com/giygas/telehealth-api/logging"
	"github.com/go-resty/resty/v2"
)

// Compile-time check to ensure CatalogParser implements Parser interface
var _ interfaces.Parser = (*CatalogParser)(nil)

// CatalogParser picks its source in this order: URL, file, built-in
// defaults.
type CatalogParser struct {
	file   string
	url    string
	client *resty.Client
}

func NewCatalogParser(file, url string) *CatalogParser {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "text/tab-separated-values, text/plain")

	return &CatalogParser{
		file:   file,
		url:    url,
		client: client,
	}
}

// Source describes where ParseCatalog reads from
func (p *CatalogParser) Source() string {
	switch {
	case p.url != "":
		return p.url
	case p.file != "":
		return p.file
	}
	return "built-in"
}

// ParseCatalog loads and validates the catalog
func (p *CatalogParser) ParseCatalog(ctx context.Context) (*diagnosis.Catalog, error) {
	var raw []byte
	var err error

	switch {
	case p.url != "":
		raw, err = p.download(ctx)
	case p.file != "":
		raw, err = readFile(p.file)
	default:
		return diagnosis.DefaultCatalog(), nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	entries, stats, err := ParseTSV(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog from %s: %w", p.Source(), err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog from %s has no records", p.Source())
	}

	catalog, err := diagnosis.NewCatalog(entries)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog from %s: %w", p.Source(), err)
	}

	logging.Info("Catalog parsed",
		"source", p.Source(),
		"diagnoses", catalog.Len(),
		"records", stats.Records,
		"duration", time.Since(start))
	return catalog, nil
}

func (p *CatalogParser) download(ctx context.Context) ([]byte, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		Get(p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", p.url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to download %s: status %d", p.url, resp.StatusCode())
	}

	logging.Debug("Catalog downloaded", "url", p.url, "bytes", len(resp.Body()))
	return resp.Body(), nil
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return raw, nil
}
