// Package crawler fills in feed item details by scraping article pages.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/internal/logger"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
	"github.com/Adda-Baaj/khobor-desk/pkg/providers"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes  = 1 << 20 // 1 MiB
	maxArticleWorkers = 10
)

// Scraper enriches feed items that arrived without an image or body text.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
}

// NewScraper creates a new Scraper with the given HTTP client and logger.
func NewScraper(client httpclient.Client, log logger.Logger) *Scraper {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	return &Scraper{client: client, log: logger.Ensure(log)}
}

// Enrich returns a copy of items with missing images and text filled from
// each page's metadata. Items that already carry both, and items whose page
// cannot be fetched, are returned unchanged.
func (s *Scraper) Enrich(ctx context.Context, cfg providers.Provider, items []domain.FeedItem) []domain.FeedItem {
	delay := cfg.RequestDelay()
	out := make([]domain.FeedItem, len(items))
	copy(out, items) // default to originals so partial results are returned on cancel

	pending := make([]int, 0, len(items))
	for idx, item := range items {
		if needsEnrichment(item) {
			pending = append(pending, idx)
		}
	}
	if len(pending) == 0 {
		return out
	}

	workerCount := min(len(pending), maxArticleWorkers)

	var limiter <-chan time.Time
	var ticker *time.Ticker
	if delay > 0 {
		ticker = time.NewTicker(delay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go s.articleWorker(ctx, cfg, items, limiter, jobCh, out, &wg, workerID)
	}

send:
	for _, idx := range pending {
		select {
		case <-ctx.Done():
			break send
		case jobCh <- idx:
		}
	}
	close(jobCh)

	wg.Wait()

	return out
}

// needsEnrichment reports whether a page visit could add anything.
func needsEnrichment(item domain.FeedItem) bool {
	return item.Key() != "" && (item.ImageURL == "" || strings.TrimSpace(item.Content) == "")
}

// articleWorker processes items from the job channel, respecting the rate limiter.
func (s *Scraper) articleWorker(
	ctx context.Context,
	cfg providers.Provider,
	items []domain.FeedItem,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []domain.FeedItem,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-limiter:
			}
		}

		item := items[idx]
		if enriched, err := s.fetchAndParse(ctx, cfg, item, workerID); err != nil {
			s.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
				"worker_id":   workerID,
				"provider_id": cfg.ID,
				"url":         item.URL,
				"error":       err.Error(),
			})
			out[idx] = item
		} else {
			out[idx] = enriched
		}
	}
}

// fetchAndParse fetches the article HTML and fills the gaps in art from its metadata.
func (s *Scraper) fetchAndParse(ctx context.Context, cfg providers.Provider, art domain.FeedItem, workerID int) (domain.FeedItem, error) {
	headers := providers.Headers(cfg)

	s.log.DebugObj("scraping article metadata", "scrape_start", map[string]any{
		"worker_id":   workerID,
		"provider_id": cfg.ID,
		"url":         art.URL,
	})

	resp, err := s.client.Get(ctx, art.URL, headers)
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != 200 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return art, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		s.log.InfoObj("html body truncated", "truncation", map[string]any{
			"worker_id":   workerID,
			"provider_id": cfg.ID,
			"url":         art.URL,
			"original":    len(body),
			"kept":        maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return art, err
	}
	updated := art
	if strings.TrimSpace(updated.Title) == "" {
		updated.Title = meta.Title
	}
	if strings.TrimSpace(updated.Content) == "" {
		updated.Content = meta.Description
	}
	if updated.ImageURL == "" && meta.ImageURL != "" {
		updated.ImageURL = resolveURL(meta.ImageURL, art.URL)
	}
	if updated.SourceName == "" {
		updated.SourceName = meta.SiteName
	}

	return updated, nil
}

// parseMeta extracts page metadata from the HTML body.
func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	pm := pageMeta{}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm.Title = firstNonEmpty(
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	pm.Description = firstNonEmpty(
		extract(`meta[property="og:description"]`),
		extract(`meta[name="description"]`),
	)
	pm.ImageURL = firstNonEmpty(
		extract(`meta[property="og:image"]`),
		extract(`meta[name="twitter:image"]`),
	)
	pm.SiteName = extract(`meta[property="og:site_name"]`)

	return pm, nil
}

// pageMeta holds metadata extracted from an HTML page.
type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
	SiteName    string
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}
