package render

import (
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/internal/feed"
	"github.com/Adda-Baaj/khobor-desk/internal/logger"
	"github.com/Adda-Baaj/khobor-desk/internal/store"
)

// JournalStore is the subset of store.Journal the renderer writes to.
type JournalStore interface {
	Append(item domain.FeedItem, seenAt time.Time) (bool, error)
	EvictOldest() (store.Entry, bool, error)
}

// Journal mirrors the notification list into a persistent store.
type Journal struct {
	feed.NopRenderer
	store JournalStore
	now   func() time.Time
	log   logger.Logger
}

// NewJournal writes notifications to s.
func NewJournal(s JournalStore, now func() time.Time, log logger.Logger) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{store: s, now: now, log: logger.Ensure(log)}
}

// AddNotification appends item; items already journaled are skipped.
func (j *Journal) AddNotification(item domain.FeedItem) {
	if _, err := j.store.Append(item, j.now()); err != nil {
		j.log.WarnObj("journal append failed", "journal_append_error", map[string]any{
			"url":   item.URL,
			"error": err.Error(),
		})
	}
}

// EvictOldestNotification drops the oldest journaled entry.
func (j *Journal) EvictOldestNotification() {
	if _, _, err := j.store.EvictOldest(); err != nil {
		j.log.WarnObj("journal eviction failed", "journal_evict_error", map[string]any{"error": err.Error()})
	}
}
