// Package providers turns configured news sources into feed items: the
// dashboard backend's /news/fetch endpoint and Google News sitemaps.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

const (
	// ProviderTypeBackend is the dashboard backend news endpoint.
	ProviderTypeBackend = "backend"
	// ProviderTypeGoogleNews is a Google News sitemap (or sitemap index).
	ProviderTypeGoogleNews = "google-news"

	// MaxPageSize is the largest page the backend accepts.
	MaxPageSize = 100
)

// HTTPClient is the transport fetchers use.
type HTTPClient = httpclient.Client

// Provider describes one configured feed source.
type Provider struct {
	ID             string            `json:"id" yaml:"id"`
	Type           string            `json:"type" yaml:"type"`
	SourceURL      string            `json:"source_url" yaml:"source_url"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	RequestDelayMs int               `json:"request_delay_ms" yaml:"request_delay_ms"`
	Enabled        *bool             `json:"enabled" yaml:"enabled"`
}

// RequestDelay returns the pause between page requests made on behalf of the provider.
func (p Provider) RequestDelay() time.Duration {
	if p.RequestDelayMs <= 0 {
		return 0
	}
	return time.Duration(p.RequestDelayMs) * time.Millisecond
}

// EnabledValue returns enabled flag defaulting to true.
func (p Provider) EnabledValue() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

// Headers returns a copy of the provider's request headers.
func Headers(p Provider) map[string]string {
	if len(p.Headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(p.Headers))
	for k, v := range p.Headers {
		out[k] = v
	}
	return out
}

// Fetcher retrieves feed items for one provider type.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider, q domain.Query) ([]domain.FeedItem, error)
}

// FetcherRegistry resolves the fetcher for a provider.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

type providersFile struct {
	Providers []Provider `json:"providers" yaml:"providers"`
}

// BackendProvider is the provider used when no providers file is configured.
func BackendProvider(baseURL string) Provider {
	return sanitizeProvider(Provider{ID: ProviderTypeBackend, Type: ProviderTypeBackend, SourceURL: baseURL})
}

// LoadProviders reads provider definitions from a YAML/JSON file.
func LoadProviders(path string) ([]Provider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("providers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}
	expanded := []byte(os.ExpandEnv(string(raw)))

	var file providersFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(expanded, &file)
	default:
		err = yaml.Unmarshal(expanded, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode providers file: %w", err)
	}
	if len(file.Providers) == 0 {
		return nil, errors.New("providers file contains no providers entries")
	}

	seen := make(map[string]struct{}, len(file.Providers))
	out := make([]Provider, 0, len(file.Providers))
	for i, p := range file.Providers {
		p = sanitizeProvider(p)
		if err := validateProvider(p); err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate provider id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func sanitizeProvider(p Provider) Provider {
	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.SourceURL = strings.TrimSpace(p.SourceURL)
	if p.RequestDelayMs < 0 {
		p.RequestDelayMs = 0
	}
	if len(p.Headers) > 0 {
		headers := make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			k, v = strings.TrimSpace(k), strings.TrimSpace(v)
			if k == "" || v == "" {
				continue
			}
			headers[k] = v
		}
		p.Headers = headers
	}
	if p.Enabled == nil {
		def := true
		p.Enabled = &def
	}
	return p
}

func validateProvider(p Provider) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	switch p.Type {
	case ProviderTypeBackend, ProviderTypeGoogleNews:
	case "":
		return fmt.Errorf("type is required for provider %q", p.ID)
	default:
		return fmt.Errorf("type %q not supported for provider %q", p.Type, p.ID)
	}
	if p.SourceURL == "" {
		return fmt.Errorf("source_url is required for provider %q", p.ID)
	}
	return nil
}

// ClampPageSize bounds n to 1..MaxPageSize.
func ClampPageSize(n int) int {
	return max(1, min(n, MaxPageSize))
}
