package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

// ErrUnexpectedFormat is returned when a successful response lacks the articles array.
var ErrUnexpectedFormat = errors.New("Received unexpected data format from the server.")

type backendResponse struct {
	Articles *[]backendArticle `json:"articles"`
}

type backendArticle struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// backendFetcher reads the dashboard backend's news endpoint.
type backendFetcher struct {
	client HTTPClient
}

// NewBackendFetcher builds a Fetcher for the dashboard backend.
func NewBackendFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &backendFetcher{client: client}
}

func (f *backendFetcher) ID() string { return ProviderTypeBackend }

// Fetch issues GET /news/fetch with the query text, region and page size.
func (f *backendFetcher) Fetch(ctx context.Context, cfg Provider, q domain.Query) ([]domain.FeedItem, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeBackend) {
		return nil, fmt.Errorf("backend fetcher received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("provider %q source_url is empty", cfg.ID)
	}

	params := url.Values{}
	if q.Text != "" {
		params.Set("text", q.Text)
	}
	if q.Region != "" {
		params.Set("source-countries", q.Region)
	}
	params.Set("number", strconv.Itoa(ClampPageSize(q.PageSize)))

	api := httpclient.NewAPI(f.client, cfg.SourceURL, Headers(cfg))
	res, err := api.Request(ctx, http.MethodGet, "/news/fetch", params, nil)
	if err != nil {
		return nil, err
	}

	var body backendResponse
	if err := res.Decode(&body); err != nil || body.Articles == nil {
		return nil, ErrUnexpectedFormat
	}

	return buildItemsFromBackend(cfg.ID, *body.Articles), nil
}

func buildItemsFromBackend(providerID string, articles []backendArticle) []domain.FeedItem {
	items := make([]domain.FeedItem, 0, len(articles))
	for _, a := range articles {
		loc := strings.TrimSpace(a.URL)
		if loc == "" {
			continue
		}
		items = append(items, domain.FeedItem{
			ProviderID:  providerID,
			URL:         loc,
			Title:       strings.TrimSpace(a.Title),
			SourceName:  strings.TrimSpace(a.Source.Name),
			PublishedAt: parseBackendTime(a.PublishedAt),
			Content:     firstNonEmpty(a.Content, a.Description),
			ImageURL:    strings.TrimSpace(a.URLToImage),
		})
	}
	return items
}

// parseBackendTime accepts RFC 3339 and the upstream "2006-01-02 15:04:05" form.
func parseBackendTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t := parsePublicationDate(raw); !t.IsZero() {
		return t
	}
	if t, err := time.Parse(time.DateTime, raw); err == nil {
		return t
	}
	return time.Time{}
}
