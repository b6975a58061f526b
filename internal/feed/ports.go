package feed

import (
	"context"
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

// Source retrieves one page of feed items, newest first. An empty slice is a
// valid answer.
type Source interface {
	Fetch(ctx context.Context, q domain.Query) ([]domain.FeedItem, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q domain.Query) ([]domain.FeedItem, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, q domain.Query) ([]domain.FeedItem, error) {
	return f(ctx, q)
}

// Renderer presents controller state. Calls are side-effecting only and the
// controller never depends on them having happened. The controller serializes
// all calls, so implementations need no locking of their own but must not
// call back into the controller.
type Renderer interface {
	ShowMain(item domain.FeedItem)
	AddNotification(item domain.FeedItem)
	EvictOldestNotification()
	ShowStatus(text string, isError bool)
	ShowListError(text string)
	ClearListError()
	ShowNoResults(query string)
	// ShowReading toggles the reading controls: summarize disabled and stop
	// visible while active.
	ShowReading(active bool)
}

// NopRenderer discards every call. Embed it to implement part of Renderer.
type NopRenderer struct{}

func (NopRenderer) ShowMain(domain.FeedItem)        {}
func (NopRenderer) AddNotification(domain.FeedItem) {}
func (NopRenderer) EvictOldestNotification()        {}
func (NopRenderer) ShowStatus(string, bool)         {}
func (NopRenderer) ShowListError(string)            {}
func (NopRenderer) ClearListError()                 {}
func (NopRenderer) ShowNoResults(string)            {}
func (NopRenderer) ShowReading(bool)                {}

// Summary is the tagged outcome of a summarization request.
type Summary struct {
	Text string
	// SoftFailure is set when the summarizer answered but declined to
	// produce a usable summary.
	SoftFailure string
}

// Ok reports whether the summary may be spoken.
func (s Summary) Ok() bool { return s.SoftFailure == "" && s.Text != "" }

// Summarizer produces a short summary of an item.
type Summarizer interface {
	Summarize(ctx context.Context, item domain.FeedItem) (Summary, error)
}

// Speaker reads text aloud. Speak blocks until the utterance ends; cancelling
// ctx must cut it short.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Clock supplies time and tickers so polling can run against simulated time.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is a stoppable periodic timer.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }
