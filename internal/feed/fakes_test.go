package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{clock: c, period: d, next: c.now.Add(d), ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) activeTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves time forward and delivers every due tick, blocking until each
// one is received by a live ticker owner.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := append([]*fakeTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		for {
			c.mu.Lock()
			if t.stopped || t.next.After(now) {
				c.mu.Unlock()
				break
			}
			fire := t.next
			t.next = t.next.Add(t.period)
			c.mu.Unlock()

			select {
			case t.ch <- fire:
			case <-time.After(time.Second):
			}
		}
	}
}

type fakeTicker struct {
	clock   *fakeClock
	period  time.Duration
	next    time.Time
	ch      chan time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	t.stopped = true
	t.clock.mu.Unlock()
}

type fakeSource struct {
	mu      sync.Mutex
	calls   atomic.Int32
	items   []domain.FeedItem
	err     error
	queries []domain.Query
}

func (s *fakeSource) Fetch(_ context.Context, q domain.Query) ([]domain.FeedItem, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.items, s.err
}

func (s *fakeSource) set(items []domain.FeedItem, err error) {
	s.mu.Lock()
	s.items = items
	s.err = err
	s.mu.Unlock()
}

type recordingRenderer struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingRenderer) record(format string, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *recordingRenderer) ShowMain(item domain.FeedItem)        { r.record("main %s", item.URL) }
func (r *recordingRenderer) AddNotification(item domain.FeedItem) { r.record("notify %s", item.URL) }
func (r *recordingRenderer) EvictOldestNotification()             { r.record("evict") }
func (r *recordingRenderer) ShowStatus(text string, isError bool) {
	r.record("status %t %s", isError, text)
}
func (r *recordingRenderer) ShowListError(text string)  { r.record("list-error %s", text) }
func (r *recordingRenderer) ClearListError()            { r.record("clear-list-error") }
func (r *recordingRenderer) ShowNoResults(query string) { r.record("no-results %s", query) }
func (r *recordingRenderer) ShowReading(active bool)    { r.record("reading %t", active) }

func (r *recordingRenderer) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingRenderer) count(call string) int {
	n := 0
	for _, c := range r.snapshot() {
		if c == call {
			n++
		}
	}
	return n
}

type fakeSummarizer struct {
	summary Summary
	err     error
	block   chan struct{}
}

func (s *fakeSummarizer) Summarize(ctx context.Context, _ domain.FeedItem) (Summary, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return Summary{}, ctx.Err()
		}
	}
	return s.summary, s.err
}

type fakeSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	release chan struct{}
	err     error
}

func (s *fakeSpeaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	release := s.release
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *fakeSpeaker) utterances() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func item(url string) domain.FeedItem {
	return domain.FeedItem{URL: url, Title: "Title " + url, SourceName: "US", Content: "content of " + url}
}

func items(urls ...string) []domain.FeedItem {
	out := make([]domain.FeedItem, 0, len(urls))
	for _, u := range urls {
		out = append(out, item(u))
	}
	return out
}

func batchAt(ms int64, urls ...string) domain.FetchBatch {
	return domain.FetchBatch{Items: items(urls...), FetchedAt: time.UnixMilli(ms)}
}
