// Package feed keeps a live, deduplicated, time-ordered view of a remote news
// feed.
//
// A Controller combines user-triggered fetches with a recurring poll and
// pushes every state change through a Renderer. Responses may land out of
// order (a slow poll racing a fast search), so every accepted response is
// stamped at acceptance time and a batch only applies when its stamp is
// strictly newer than the last applied one.
//
// State is guarded by a single mutex and renderer calls happen while it is
// held, so render order always matches state order.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/internal/logger"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

const (
	// DefaultPollInterval matches the dashboard's refresh cadence.
	DefaultPollInterval = 60 * time.Second
	// DefaultPageSize is the number of articles requested per fetch.
	DefaultPageSize = 30
	// DefaultQueryText is used when polling without a search term.
	DefaultQueryText = "latest technology business AI"
)

var (
	// ErrReadingBusy is returned when a summary is requested while one is
	// already being prepared or read.
	ErrReadingBusy = errors.New("already reading")
	// ErrNothingToRead is returned when the item has no text content.
	ErrNothingToRead = errors.New("no text content to summarize")
	// ErrSummaryUnavailable wraps soft summarization failures.
	ErrSummaryUnavailable = errors.New("summary unavailable")
	// ErrUnknownItem is returned when selecting a URL the controller has not seen.
	ErrUnknownItem = errors.New("unknown feed item")
)

// Options configures a Controller.
type Options struct {
	Source       Source
	Renderer     Renderer
	Summarizer   Summarizer
	Speaker      Speaker
	Clock        Clock
	Logger       logger.Logger
	Limit        int
	DefaultQuery domain.Query
}

// Controller owns the fetch/render loop for one feed view.
type Controller struct {
	source     Source
	renderer   Renderer
	summarizer Summarizer
	speaker    Speaker
	clock      Clock
	log        logger.Logger
	defaults   domain.Query

	mu          sync.Mutex
	main        *domain.FeedItem
	notes       *NotificationSet
	lastApplied time.Time
	lastStamp   time.Time
	query       domain.Query

	// reading state, guarded by mu
	reading    bool
	busy       bool
	readGen    uint64
	readCancel context.CancelFunc

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollTicker Ticker
	pollDone   chan struct{}
}

// New builds a Controller. Source is required; every other collaborator
// falls back to a no-op or system default.
func New(opts Options) (*Controller, error) {
	if opts.Source == nil {
		return nil, errors.New("feed source is required")
	}
	if opts.Renderer == nil {
		opts.Renderer = NopRenderer{}
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	defaults := opts.DefaultQuery.WithDefaults(domain.Query{
		Text:     DefaultQueryText,
		PageSize: DefaultPageSize,
	})

	return &Controller{
		source:     opts.Source,
		renderer:   opts.Renderer,
		summarizer: opts.Summarizer,
		speaker:    opts.Speaker,
		clock:      opts.Clock,
		log:        logger.Ensure(opts.Logger),
		defaults:   defaults,
		notes:      NewNotificationSet(opts.Limit),
		query:      defaults,
	}, nil
}

// Query returns the query polls will use.
func (c *Controller) Query() domain.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetQuery replaces the query used by subsequent polls.
func (c *Controller) SetQuery(q domain.Query) {
	c.mu.Lock()
	c.query = q.WithDefaults(c.defaults)
	c.mu.Unlock()
}

// Main returns the current selection.
func (c *Controller) Main() (domain.FeedItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.main == nil {
		return domain.FeedItem{}, false
	}
	return *c.main, true
}

// Notifications returns the surfaced items, newest first.
func (c *Controller) Notifications() []domain.FeedItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notes.Items()
}

// LastApplied returns the stamp of the last applied batch.
func (c *Controller) LastApplied() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastApplied
}

// Seed surfaces previously journaled items, oldest first, without touching
// the main selection or the applied stamp.
func (c *Controller) Seed(items []domain.FeedItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		if !item.Notifiable() {
			continue
		}
		if c.notes.Add(item) {
			c.renderer.AddNotification(item)
		}
	}
	c.trimLocked()
}

// FetchAndApply issues one request through the source. Manual fetches always
// update the view, including an explicit no-results state; automatic polls
// stay silent when nothing came back. Failures end in a rendered error, are
// returned to the caller and never touch the selection, notifications or
// applied stamp.
func (c *Controller) FetchAndApply(ctx context.Context, q domain.Query, manual bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.ErrorObj("feed fetch panicked", "feed_fetch_panic", map[string]any{"panic": fmt.Sprint(r)})
			c.mu.Lock()
			c.renderer.ShowStatus("Error processing news data.", true)
			c.mu.Unlock()
			err = fmt.Errorf("process news data: %v", r)
		}
	}()

	def := c.defaults
	if manual {
		// a blank manual search asks the source for everything
		def.Text = ""
	}
	q = q.WithDefaults(def)
	if manual {
		c.mu.Lock()
		c.query = q
		c.renderer.ClearListError()
		c.renderer.ShowStatus("Fetching news articles...", false)
		c.mu.Unlock()
	}

	items, err := c.source.Fetch(ctx, q)
	if ctx.Err() != nil {
		c.log.DebugObj("feed fetch abandoned", "feed_fetch_cancelled", map[string]any{"manual": manual})
		if manual {
			c.mu.Lock()
			c.renderer.ShowStatus("Fetch cancelled.", false)
			c.mu.Unlock()
		}
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		fields := map[string]any{"manual": manual, "query": q.Text, "error": err.Error()}
		if herr, ok := httpclient.AsError(err); ok {
			fields["kind"] = herr.Kind.String()
			fields["status"] = herr.Status
		}
		c.log.WarnObj("feed fetch failed", "feed_fetch_error", fields)
		c.renderer.ShowListError("Failed to fetch news: " + err.Error())
		c.renderer.ShowStatus("Error fetching news", true)
		return err
	}

	if len(items) == 0 {
		if manual {
			c.renderer.ShowNoResults(q.Text)
			c.renderer.ShowStatus("No matching articles found.", false)
			return nil
		}
		c.log.DebugObj("poll returned no articles", "feed_poll_empty", map[string]any{"query": q.Text})
		return nil
	}

	batch := domain.FetchBatch{Items: items, FetchedAt: c.stampLocked()}
	if c.applyLocked(batch) {
		c.renderer.ClearListError()
		c.renderer.ShowStatus("News updated successfully.", false)
	}
	return nil
}

// ApplyBatch applies batch unless it is stale and reports whether it applied.
func (c *Controller) ApplyBatch(batch domain.FetchBatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(batch)
}

func (c *Controller) applyLocked(batch domain.FetchBatch) bool {
	if !batch.FetchedAt.After(c.lastApplied) {
		c.log.DebugObj("discarding stale batch", "feed_stale_batch", map[string]any{
			"fetched_at":   batch.FetchedAt,
			"last_applied": c.lastApplied,
			"items":        len(batch.Items),
		})
		return false
	}

	if latest, ok := batch.Latest(); ok && latest.Key() != "" {
		if c.main == nil || c.main.Key() != latest.Key() {
			c.showMainLocked(latest)
		}
	}

	added := 0
	for i := len(batch.Items) - 1; i >= 0; i-- {
		item := batch.Items[i]
		if !item.Notifiable() {
			continue
		}
		if c.notes.Add(item) {
			c.renderer.AddNotification(item)
			added++
		}
	}
	c.trimLocked()

	c.lastApplied = batch.FetchedAt
	c.log.DebugObj("applied batch", "feed_batch_applied", map[string]any{
		"items":         len(batch.Items),
		"notifications": added,
	})
	return true
}

func (c *Controller) trimLocked() {
	for _, evicted := range c.notes.Trim() {
		c.renderer.EvictOldestNotification()
		c.log.DebugObj("evicted notification", "feed_notification_evicted", map[string]any{"url": evicted.URL})
	}
}

// stampLocked returns the acceptance time for a response, strictly after
// every stamp handed out or applied so far.
func (c *Controller) stampLocked() time.Time {
	now := c.clock.Now()
	floor := c.lastStamp
	if c.lastApplied.After(floor) {
		floor = c.lastApplied
	}
	if !now.After(floor) {
		now = floor.Add(time.Nanosecond)
	}
	c.lastStamp = now
	return now
}

// SelectItem makes item the main selection regardless of timestamps.
func (c *Controller) SelectItem(item domain.FeedItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showMainLocked(item)
}

// SelectURL selects a surfaced item by URL.
func (c *Controller) SelectURL(url string) error {
	url = strings.TrimSpace(url)
	c.mu.Lock()
	defer c.mu.Unlock()
	if item, ok := c.notes.Get(url); ok {
		c.showMainLocked(item)
		return nil
	}
	if c.main != nil && c.main.Key() == url {
		c.showMainLocked(*c.main)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownItem, url)
}

func (c *Controller) showMainLocked(item domain.FeedItem) {
	c.stopReadingLocked()
	c.main = &item
	c.renderer.ShowMain(item)
}

// StartPolling fetches with the current query every interval. A running
// poll loop is cancelled first, so at most one timer is active.
func (c *Controller) StartPolling(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	c.stopPollingLocked()

	pctx, cancel := context.WithCancel(ctx)
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})
	c.pollCancel = cancel
	c.pollTicker = ticker
	c.pollDone = done

	go c.pollLoop(pctx, ticker, done)

	c.log.InfoObj("polling started", "feed_polling_started", map[string]any{"interval": interval.String()})
	return nil
}

func (c *Controller) pollLoop(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			c.FetchAndApply(ctx, c.Query(), false)
		}
	}
}

// StopPolling cancels the poll loop. Safe to call repeatedly.
func (c *Controller) StopPolling() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	c.stopPollingLocked()
}

func (c *Controller) stopPollingLocked() {
	if c.pollCancel == nil {
		return
	}
	c.pollCancel()
	c.pollTicker.Stop()
	c.pollCancel = nil
	c.pollTicker = nil
	c.log.DebugObj("polling stopped", "feed_polling_stopped", nil)
}

// Polling reports whether a poll loop is active.
func (c *Controller) Polling() bool {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	return c.pollCancel != nil
}

// Close stops polling, waits for the loop to exit and stops reading.
func (c *Controller) Close() {
	c.pollMu.Lock()
	done := c.pollDone
	c.stopPollingLocked()
	c.pollDone = nil
	c.pollMu.Unlock()

	if done != nil {
		<-done
	}
	c.StopReading()
}
