package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

// Reading reports whether an utterance is in progress.
func (c *Controller) Reading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reading
}

// ReadingBusy reports whether the summarize control is disabled, which covers
// both a pending summary and an active utterance.
func (c *Controller) ReadingBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy || c.reading
}

// SummarizeAndRead asks the summarizer for a short summary of item and
// speaks it. The control stays disabled until the read completes, fails or
// is stopped. It returns once speech has started; the utterance itself runs
// on a goroutine bound to ctx.
func (c *Controller) SummarizeAndRead(ctx context.Context, item domain.FeedItem) error {
	c.mu.Lock()
	if c.busy || c.reading {
		c.mu.Unlock()
		return ErrReadingBusy
	}
	if strings.TrimSpace(item.Content) == "" {
		c.renderer.ShowStatus("No text content to summarize.", true)
		c.mu.Unlock()
		return ErrNothingToRead
	}
	if c.summarizer == nil || c.speaker == nil {
		c.renderer.ShowStatus("Text-to-speech is not available.", true)
		c.mu.Unlock()
		return errors.New("summarizer or speaker not configured")
	}

	c.readGen++
	gen := c.readGen
	rctx, cancel := context.WithCancel(ctx)
	c.busy = true
	c.readCancel = cancel
	c.renderer.ShowReading(true)
	c.renderer.ShowStatus("Summarizing article...", false)
	c.mu.Unlock()

	summary, err := c.summarizer.Summarize(rctx, item)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.readGen {
		// stopped or superseded while the summary was pending
		cancel()
		return context.Canceled
	}

	if err == nil && !summary.Ok() {
		reason := summary.SoftFailure
		if reason == "" {
			reason = "Failed to get valid summary."
		}
		err = fmt.Errorf("%w: %s", ErrSummaryUnavailable, reason)
	}
	if err != nil {
		c.finishReadingLocked()
		c.log.WarnObj("summarization failed", "feed_summary_error", map[string]any{
			"url":   item.URL,
			"error": err.Error(),
		})
		c.renderer.ShowStatus("Summarization Error: "+summaryMessage(err), true)
		return err
	}

	c.reading = true
	c.renderer.ShowStatus("Reading summary aloud...", false)
	go c.speak(rctx, gen, summary.Text)
	return nil
}

func (c *Controller) speak(ctx context.Context, gen uint64, text string) {
	err := c.speaker.Speak(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.readGen {
		return
	}
	c.finishReadingLocked()
	if err != nil {
		c.log.WarnObj("speech failed", "feed_tts_error", map[string]any{"error": err.Error()})
		c.renderer.ShowStatus("TTS Error: "+err.Error(), true)
		return
	}
	c.renderer.ShowStatus("Finished reading.", false)
}

// StopReading cancels any pending summary or utterance. Idempotent; reading
// state is always false afterwards.
func (c *Controller) StopReading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopReadingLocked()
}

func (c *Controller) stopReadingLocked() {
	active := c.busy || c.reading
	c.readGen++
	c.finishReadingLocked()
	if active {
		c.renderer.ShowStatus("Reading stopped.", false)
	}
}

// finishReadingLocked releases the reading resources and re-enables the control.
func (c *Controller) finishReadingLocked() {
	wasActive := c.busy || c.reading
	if c.readCancel != nil {
		c.readCancel()
		c.readCancel = nil
	}
	c.busy = false
	c.reading = false
	if wasActive {
		c.renderer.ShowReading(false)
	}
}

func summaryMessage(err error) string {
	if errors.Is(err, ErrSummaryUnavailable) {
		return strings.TrimSpace(strings.TrimPrefix(err.Error(), ErrSummaryUnavailable.Error()+":"))
	}
	return err.Error()
}
