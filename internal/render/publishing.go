package render

import (
	"sync/atomic"
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/internal/feed"
	"github.com/Adda-Baaj/khobor-desk/internal/logger"
	"github.com/Adda-Baaj/khobor-desk/pkg/publishers"
)

// Enqueuer accepts events for asynchronous delivery.
type Enqueuer interface {
	Enqueue(evt publishers.Event) error
}

// Publishing turns each new notification into a published event.
type Publishing struct {
	feed.NopRenderer
	out    Enqueuer
	now    func() time.Time
	log    logger.Logger
	paused atomic.Bool
}

// NewPublishing hands events to out, which must not block.
func NewPublishing(out Enqueuer, now func() time.Time, log logger.Logger) *Publishing {
	if now == nil {
		now = time.Now
	}
	return &Publishing{out: out, now: now, log: logger.Ensure(log)}
}

// SetPaused stops or resumes publishing, e.g. while replaying a journal.
func (p *Publishing) SetPaused(paused bool) { p.paused.Store(paused) }

// AddNotification enqueues a notification.added event.
func (p *Publishing) AddNotification(item domain.FeedItem) {
	if p.paused.Load() {
		return
	}
	evt := publishers.NewNotificationEvent(item, p.now())
	if err := p.out.Enqueue(evt); err != nil {
		p.log.DebugObj("notification event not queued", "render_publish_skipped", map[string]any{
			"url":   item.URL,
			"error": err.Error(),
		})
	}
}
