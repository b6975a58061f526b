package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/internal/logger"
)

// Enricher fills in details fetchers could not provide.
type Enricher interface {
	Enrich(ctx context.Context, cfg Provider, items []domain.FeedItem) []domain.FeedItem
}

// Source fans a query out to every enabled provider and merges the results
// into one newest-first page.
type Source struct {
	registry  FetcherRegistry
	providers []Provider
	enricher  Enricher
	log       logger.Logger
}

// NewSource binds providers to the fetchers that serve them. Disabled
// providers are skipped; at least one must remain.
func NewSource(registry FetcherRegistry, providers []Provider, enricher Enricher, log logger.Logger) (*Source, error) {
	if registry == nil {
		registry = DefaultFetcherRegistry(nil)
	}

	var enabled []Provider
	for _, p := range providers {
		if !p.EnabledValue() {
			continue
		}
		if _, err := registry.FetcherFor(p); err != nil {
			return nil, err
		}
		enabled = append(enabled, p)
	}
	if len(enabled) == 0 {
		return nil, errors.New("no enabled providers configured")
	}

	return &Source{
		registry:  registry,
		providers: enabled,
		enricher:  enricher,
		log:       logger.Ensure(log),
	}, nil
}

// Providers returns the enabled providers in configuration order.
func (s *Source) Providers() []Provider {
	out := make([]Provider, len(s.providers))
	copy(out, s.providers)
	return out
}

// Fetch queries each provider in turn. A failing provider is logged and
// skipped; the call fails only when every provider failed. With a single
// provider its order is kept as returned.
func (s *Source) Fetch(ctx context.Context, q domain.Query) ([]domain.FeedItem, error) {
	var (
		all      []domain.FeedItem
		firstErr error
		failures int
	)

	for _, p := range s.providers {
		items, err := s.fetchOne(ctx, p, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			if firstErr == nil {
				firstErr = err
			}
			s.log.WarnObj("provider fetch failed", "provider_fetch_error", map[string]any{
				"provider_id": p.ID,
				"query":       q.Text,
				"error":       err.Error(),
			})
			continue
		}
		all = append(all, items...)
	}

	if failures == len(s.providers) {
		return nil, firstErr
	}

	all = dedupe(all)
	if len(s.providers) > 1 {
		newestFirst(all)
		if size := ClampPageSize(q.PageSize); len(all) > size {
			all = all[:size]
		}
	}
	return all, nil
}

func (s *Source) fetchOne(ctx context.Context, p Provider, q domain.Query) ([]domain.FeedItem, error) {
	fetcher, err := s.registry.FetcherFor(p)
	if err != nil {
		return nil, err
	}

	items, err := fetcher.Fetch(ctx, p, q)
	if err != nil {
		return nil, err
	}

	s.log.DebugObj("provider fetch complete", "provider_fetch_done", map[string]any{
		"provider_id": p.ID,
		"items":       len(items),
	})

	if s.enricher != nil && len(items) > 0 {
		items = s.enricher.Enrich(ctx, p, items)
	}
	return items, nil
}

// String names the providers behind the source.
func (s *Source) String() string {
	ids := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		ids = append(ids, p.ID)
	}
	return fmt.Sprintf("providers%v", ids)
}
