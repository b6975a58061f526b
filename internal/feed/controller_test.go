package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

type harness struct {
	ctrl     *Controller
	source   *fakeSource
	renderer *recordingRenderer
	clock    *fakeClock
	summ     *fakeSummarizer
	speaker  *fakeSpeaker
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		source:   &fakeSource{},
		renderer: &recordingRenderer{},
		clock:    newFakeClock(),
		summ:     &fakeSummarizer{summary: Summary{Text: "short summary"}},
		speaker:  &fakeSpeaker{},
	}
	ctrl, err := New(Options{
		Source:     h.source,
		Renderer:   h.renderer,
		Summarizer: h.summ,
		Speaker:    h.speaker,
		Clock:      h.clock,
	})
	require.NoError(t, err)
	h.ctrl = ctrl
	t.Cleanup(ctrl.Close)
	return h
}

func TestNewRequiresSource(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestMainFollowsLatestBatch(t *testing.T) {
	h := newHarness(t)

	for i, ms := range []int64{100, 200, 300, 400} {
		first := fmt.Sprintf("https://news.test/%d", i)
		require.True(t, h.ctrl.ApplyBatch(batchAt(ms, first, "https://news.test/older")))

		main, ok := h.ctrl.Main()
		require.True(t, ok)
		assert.Equal(t, first, main.URL)
	}
	assert.Equal(t, time.UnixMilli(400), h.ctrl.LastApplied())
}

func TestMainUnchangedWhenLatestIsSame(t *testing.T) {
	h := newHarness(t)

	h.ctrl.ApplyBatch(batchAt(100, "x", "y"))
	h.ctrl.ApplyBatch(batchAt(200, "x", "z"))

	assert.Equal(t, 1, h.renderer.count("main x"))
}

func TestStaleBatchIsDiscarded(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.ctrl.ApplyBatch(batchAt(100, "x")))
	before := h.renderer.snapshot()

	assert.False(t, h.ctrl.ApplyBatch(batchAt(90, "y")))
	assert.False(t, h.ctrl.ApplyBatch(batchAt(100, "z")))

	main, ok := h.ctrl.Main()
	require.True(t, ok)
	assert.Equal(t, "x", main.URL)
	assert.Equal(t, time.UnixMilli(100), h.ctrl.LastApplied())
	assert.Len(t, h.ctrl.Notifications(), 1)
	assert.Equal(t, before, h.renderer.snapshot())
}

func TestNotificationsOrderedNewestFirst(t *testing.T) {
	h := newHarness(t)

	h.ctrl.ApplyBatch(batchAt(100, "a", "b", "c"))

	got := h.ctrl.Notifications()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].URL)
	assert.Equal(t, "c", got[2].URL)
	assert.Equal(t, []string{"main a", "notify c", "notify b", "notify a"}, h.renderer.snapshot())
}

func TestNotificationCapEvictsOldestFirst(t *testing.T) {
	h := newHarness(t)

	urls := make([]string, 60)
	for i := range urls {
		urls[i] = fmt.Sprintf("u%02d", i)
	}
	h.ctrl.ApplyBatch(batchAt(100, urls...))

	got := h.ctrl.Notifications()
	require.Len(t, got, DefaultNotificationLimit)
	assert.Equal(t, "u00", got[0].URL)
	assert.Equal(t, "u49", got[49].URL)
	assert.Equal(t, 10, h.renderer.count("evict"))

	// the next batch pushes out the oldest surviving entries
	h.ctrl.ApplyBatch(batchAt(200, "n1", "n2"))
	got = h.ctrl.Notifications()
	require.Len(t, got, DefaultNotificationLimit)
	assert.Equal(t, "n1", got[0].URL)
	assert.Equal(t, "u47", got[49].URL)
}

func TestNoDuplicateNotificationsUnlessEvicted(t *testing.T) {
	h := newHarness(t)
	ctrl, err := New(Options{Source: h.source, Renderer: h.renderer, Clock: h.clock, Limit: 2})
	require.NoError(t, err)

	ctrl.ApplyBatch(batchAt(100, "a", "b"))
	ctrl.ApplyBatch(batchAt(200, "b", "a"))
	assert.Equal(t, 1, h.renderer.count("notify a"))
	assert.Equal(t, 1, h.renderer.count("notify b"))

	// c evicts b (the oldest), after which b may surface again
	ctrl.ApplyBatch(batchAt(300, "c"))
	ctrl.ApplyBatch(batchAt(400, "b"))
	assert.Equal(t, 2, h.renderer.count("notify b"))
	assert.Equal(t, 1, h.renderer.count("notify a"))
}

func TestItemsWithoutTitleAreNotNotified(t *testing.T) {
	h := newHarness(t)
	batch := domain.FetchBatch{
		Items:     []domain.FeedItem{{URL: "untitled"}, {Title: "no url"}, item("ok")},
		FetchedAt: time.UnixMilli(1),
	}
	h.ctrl.ApplyBatch(batch)

	main, ok := h.ctrl.Main()
	require.True(t, ok)
	assert.Equal(t, "untitled", main.URL)
	got := h.ctrl.Notifications()
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].URL)
}

func TestManualSearchWithNoResults(t *testing.T) {
	h := newHarness(t)
	h.source.set(nil, nil)

	h.ctrl.FetchAndApply(context.Background(), domain.Query{Text: "zebra"}, true)

	assert.Equal(t, 1, h.renderer.count("no-results zebra"))
	assert.Contains(t, h.renderer.snapshot(), "status false No matching articles found.")
}

func TestBlankManualSearchSendsNoText(t *testing.T) {
	h := newHarness(t)
	h.source.set(nil, nil)

	require.NoError(t, h.ctrl.FetchAndApply(context.Background(), domain.Query{Text: "  "}, true))

	h.source.mu.Lock()
	sent := h.source.queries[0]
	h.source.mu.Unlock()
	assert.Empty(t, sent.Text)
	assert.Equal(t, DefaultPageSize, sent.PageSize)
	assert.Equal(t, 1, h.renderer.count("no-results "))

	// polls still fall back to the default text
	require.NoError(t, h.ctrl.Handle(context.Background(), Poll()))
	h.source.mu.Lock()
	polled := h.source.queries[1]
	h.source.mu.Unlock()
	assert.Equal(t, DefaultQueryText, polled.Text)
}

func TestCancelledManualFetchEndsWithStatus(t *testing.T) {
	h := newHarness(t)
	h.source.set(items("x"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.ctrl.FetchAndApply(ctx, domain.Query{Text: "rust"}, true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{
		"clear-list-error",
		"status false Fetching news articles...",
		"status false Fetch cancelled.",
	}, h.renderer.snapshot())
	_, ok := h.ctrl.Main()
	assert.False(t, ok)

	// automatic polls stay silent
	assert.ErrorIs(t, h.ctrl.FetchAndApply(ctx, domain.Query{}, false), context.Canceled)
	assert.Len(t, h.renderer.snapshot(), 3)
}

func TestPollWithNoResultsLeavesViewUntouched(t *testing.T) {
	h := newHarness(t)
	h.source.set(items("x"), nil)
	h.ctrl.FetchAndApply(context.Background(), domain.Query{}, true)
	before := h.renderer.snapshot()
	applied := h.ctrl.LastApplied()

	h.source.set(nil, nil)
	h.ctrl.FetchAndApply(context.Background(), domain.Query{}, false)

	assert.Equal(t, before, h.renderer.snapshot())
	assert.Equal(t, applied, h.ctrl.LastApplied())
	main, _ := h.ctrl.Main()
	assert.Equal(t, "x", main.URL)
}

func TestFetchErrorUsesEmbeddedMessage(t *testing.T) {
	h := newHarness(t)
	h.source.set(items("x"), nil)
	h.ctrl.FetchAndApply(context.Background(), domain.Query{}, true)
	applied := h.ctrl.LastApplied()

	_, classified := httpclient.Classify(500, []byte(`{"error":"db down"}`))
	h.source.set(nil, classified)
	err := h.ctrl.FetchAndApply(context.Background(), domain.Query{}, false)
	assert.EqualError(t, err, "db down")

	calls := h.renderer.snapshot()
	assert.Contains(t, calls, "list-error Failed to fetch news: db down")
	assert.Contains(t, calls, "status true Error fetching news")
	assert.Equal(t, applied, h.ctrl.LastApplied())
	assert.Len(t, h.ctrl.Notifications(), 1)
	main, _ := h.ctrl.Main()
	assert.Equal(t, "x", main.URL)
}

func TestFetchUsesDefaultsAndRemembersManualQuery(t *testing.T) {
	h := newHarness(t)
	h.source.set(items("x"), nil)

	h.ctrl.FetchAndApply(context.Background(), domain.Query{}, false)
	h.ctrl.FetchAndApply(context.Background(), domain.Query{Text: "rust", Region: "in"}, true)
	require.NoError(t, h.ctrl.Handle(context.Background(), Poll()))

	h.source.mu.Lock()
	queries := append([]domain.Query(nil), h.source.queries...)
	h.source.mu.Unlock()
	require.Len(t, queries, 3)
	assert.Equal(t, domain.Query{Text: DefaultQueryText, PageSize: DefaultPageSize}, queries[0])
	assert.Equal(t, domain.Query{Text: "rust", Region: "in", PageSize: DefaultPageSize}, queries[1])
	assert.Equal(t, queries[1], queries[2])
}

func TestAcceptanceStampsStrictlyIncrease(t *testing.T) {
	h := newHarness(t)

	// the fake clock does not move between fetches
	h.source.set(items("a"), nil)
	h.ctrl.FetchAndApply(context.Background(), domain.Query{}, true)
	first := h.ctrl.LastApplied()
	h.source.set(items("b"), nil)
	h.ctrl.FetchAndApply(context.Background(), domain.Query{}, true)

	assert.True(t, h.ctrl.LastApplied().After(first))
	main, _ := h.ctrl.Main()
	assert.Equal(t, "b", main.URL)
}

func TestStartPollingTwiceKeepsOneTimer(t *testing.T) {
	h := newHarness(t)
	h.source.set(items("x"), nil)
	interval := 10 * time.Second

	require.NoError(t, h.ctrl.StartPolling(context.Background(), interval))
	require.NoError(t, h.ctrl.StartPolling(context.Background(), interval))
	assert.Equal(t, 1, h.clock.activeTickers())

	h.clock.Advance(2 * interval)

	assert.Eventually(t, func() bool { return h.source.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 2, h.source.calls.Load())
}

func TestStopPollingIsIdempotent(t *testing.T) {
	h := newHarness(t)

	h.ctrl.StopPolling()
	require.NoError(t, h.ctrl.StartPolling(context.Background(), time.Second))
	assert.True(t, h.ctrl.Polling())
	h.ctrl.StopPolling()
	h.ctrl.StopPolling()
	assert.False(t, h.ctrl.Polling())
	assert.Equal(t, 0, h.clock.activeTickers())

	h.clock.Advance(5 * time.Second)
	assert.EqualValues(t, 0, h.source.calls.Load())
}

func TestStartPollingRejectsNonPositiveInterval(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.ctrl.StartPolling(context.Background(), 0))
}

func TestSelectURL(t *testing.T) {
	h := newHarness(t)
	h.ctrl.ApplyBatch(batchAt(100, "a", "b"))

	require.NoError(t, h.ctrl.Handle(context.Background(), SelectItem("b")))
	main, _ := h.ctrl.Main()
	assert.Equal(t, "b", main.URL)

	err := h.ctrl.Handle(context.Background(), SelectItem("missing"))
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestSelectItemIgnoresTimestamps(t *testing.T) {
	h := newHarness(t)
	h.ctrl.ApplyBatch(batchAt(100, "a"))

	h.ctrl.SelectItem(item("elsewhere"))

	main, _ := h.ctrl.Main()
	assert.Equal(t, "elsewhere", main.URL)
	assert.Equal(t, time.UnixMilli(100), h.ctrl.LastApplied())
}

func TestSeedSurfacesJournaledItems(t *testing.T) {
	h := newHarness(t)

	h.ctrl.Seed(items("old", "older"))
	h.ctrl.ApplyBatch(batchAt(100, "new", "old"))

	got := h.ctrl.Notifications()
	require.Len(t, got, 3)
	assert.Equal(t, "new", got[0].URL)
	assert.Equal(t, 1, h.renderer.count("notify old"))
	assert.True(t, h.ctrl.LastApplied().Equal(time.UnixMilli(100)))
}

func TestHandleRejectsUnknownCommand(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.ctrl.Handle(context.Background(), Command{Kind: CommandKind(99)}))
}
