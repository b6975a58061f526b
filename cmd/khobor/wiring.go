package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/config"
	"github.com/Adda-Baaj/khobor-desk/internal/crawler"
	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/internal/feed"
	"github.com/Adda-Baaj/khobor-desk/internal/speech"
	"github.com/Adda-Baaj/khobor-desk/pkg/providers"
	"github.com/Adda-Baaj/khobor-desk/pkg/publishers"
)

const dispatcherDrainTimeout = 5 * time.Second

func defaultQuery(cfg config.Config) domain.Query {
	return domain.Query{
		Text:     cfg.News.DefaultQuery,
		Region:   cfg.News.Region,
		PageSize: cfg.News.PageSize,
	}
}

func (rt *runtime) newSource(cfg config.Config) (*providers.Source, error) {
	var list []providers.Provider
	switch cfg.News.Source {
	case config.SourceProviders:
		loaded, err := providers.LoadProviders(cfg.News.ProvidersFile)
		if err != nil {
			return nil, err
		}
		list = loaded
	default:
		list = []providers.Provider{providers.BackendProvider(cfg.Backend.BaseURL)}
	}

	var enricher providers.Enricher
	if cfg.News.Enrich {
		enricher = crawler.NewScraper(rt.client, rt.log)
	}
	return providers.NewSource(providers.DefaultFetcherRegistry(rt.client), list, enricher, rt.log)
}

// newSpeaker returns nil when no TTS program is available; the controller
// then reports reading as unavailable.
func (rt *runtime) newSpeaker(cfg config.Config) feed.Speaker {
	sp, err := speech.NewCommand(cfg.Speech.Command, cfg.Speech.Args, rt.log)
	if err != nil {
		rt.log.WarnObj("text-to-speech unavailable", "tts_unavailable", map[string]any{"error": err.Error()})
		return nil
	}
	return sp
}

// newDispatcher builds the publisher fan-out, or nil when no publishers file
// is configured.
func (rt *runtime) newDispatcher(ctx context.Context, cfg config.Config) (*publishers.Dispatcher, error) {
	if cfg.Publishers.File == "" {
		return nil, nil
	}
	reg, err := publishers.LoadRegistry(cfg.Publishers.File)
	if err != nil {
		return nil, err
	}
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), rt.log)
	if err != nil {
		return nil, err
	}
	if len(pubs) == 0 {
		return nil, nil
	}
	rt.log.InfoObj("publishers ready", "publishers_ready", map[string]any{"count": len(pubs)})
	return publishers.NewDispatcher(pubs, publishers.DefaultDispatchBuffer, rt.log), nil
}

func (rt *runtime) closeDispatcher(d *publishers.Dispatcher) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatcherDrainTimeout)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		rt.log.WarnObj("publisher drain incomplete", "publishers_close_error", map[string]any{"error": fmt.Sprint(err)})
	}
}
