package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

type stubFetcher struct {
	typ   string
	items map[string][]domain.FeedItem
	errs  map[string]error
}

func (f *stubFetcher) ID() string { return f.typ }

func (f *stubFetcher) Fetch(_ context.Context, cfg Provider, _ domain.Query) ([]domain.FeedItem, error) {
	return f.items[cfg.ID], f.errs[cfg.ID]
}

type markingEnricher struct{ calls int }

func (e *markingEnricher) Enrich(_ context.Context, _ Provider, items []domain.FeedItem) []domain.FeedItem {
	e.calls++
	out := make([]domain.FeedItem, len(items))
	for i, item := range items {
		item.Content = "enriched"
		out[i] = item
	}
	return out
}

func at(url string, minute int) domain.FeedItem {
	return domain.FeedItem{URL: url, Title: url, PublishedAt: time.Date(2024, 5, 1, 10, minute, 0, 0, time.UTC)}
}

func TestSourceMergesProvidersNewestFirst(t *testing.T) {
	stub := &stubFetcher{typ: ProviderTypeGoogleNews, items: map[string][]domain.FeedItem{
		"a": {at("a1", 5), at("shared", 1)},
		"b": {at("b1", 9), at("shared", 1)},
	}}
	enricher := &markingEnricher{}
	src, err := NewSource(NewFetcherRegistry(stub), []Provider{
		{ID: "a", Type: ProviderTypeGoogleNews},
		{ID: "b", Type: ProviderTypeGoogleNews},
	}, enricher, nil)
	require.NoError(t, err)

	items, err := src.Fetch(context.Background(), domain.Query{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b1", items[0].URL)
	assert.Equal(t, "a1", items[1].URL)
	assert.Equal(t, "enriched", items[0].Content)
	assert.Equal(t, 2, enricher.calls)
}

func TestSourceKeepsSingleProviderOrder(t *testing.T) {
	stub := &stubFetcher{typ: ProviderTypeBackend, items: map[string][]domain.FeedItem{
		"backend": {at("old", 1), at("new", 9)},
	}}
	src, err := NewSource(NewFetcherRegistry(stub), []Provider{{ID: "backend", Type: ProviderTypeBackend}}, nil, nil)
	require.NoError(t, err)

	items, err := src.Fetch(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, "old", items[0].URL)
}

func TestSourceFailsOnlyWhenEveryProviderFails(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubFetcher{
		typ:   ProviderTypeGoogleNews,
		items: map[string][]domain.FeedItem{"b": {at("b1", 1)}},
		errs:  map[string]error{"a": boom},
	}
	provs := []Provider{{ID: "a", Type: ProviderTypeGoogleNews}, {ID: "b", Type: ProviderTypeGoogleNews}}
	src, err := NewSource(NewFetcherRegistry(stub), provs, nil, nil)
	require.NoError(t, err)

	items, err := src.Fetch(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	stub.errs["b"] = errors.New("also down")
	_, err = src.Fetch(context.Background(), domain.Query{})
	assert.ErrorIs(t, err, boom)
}

func TestNewSourceValidation(t *testing.T) {
	disabled := false
	_, err := NewSource(nil, []Provider{{ID: "a", Type: ProviderTypeBackend, Enabled: &disabled}}, nil, nil)
	assert.Error(t, err)

	_, err = NewSource(nil, []Provider{{ID: "a", Type: "rss"}}, nil, nil)
	assert.Error(t, err)
}
