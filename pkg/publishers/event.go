package publishers

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

// EventTypeNotificationAdded is emitted when the desk surfaces a new item.
const EventTypeNotificationAdded = "notification.added"

// Event is the payload delivered to every publisher.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	ProviderID  string    `json:"provider_id,omitempty"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	SourceName  string    `json:"source_name,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	SeenAt      time.Time `json:"seen_at"`
}

// NewNotificationEvent describes item being surfaced at seenAt. The ID is
// stable per URL so consumers can deduplicate redeliveries.
func NewNotificationEvent(item domain.FeedItem, seenAt time.Time) Event {
	return Event{
		ID:          hashURL(item.Key()),
		Type:        EventTypeNotificationAdded,
		ProviderID:  item.ProviderID,
		URL:         item.Key(),
		Title:       strings.TrimSpace(item.Title),
		SourceName:  item.SourceName,
		ImageURL:    item.ImageURL,
		PublishedAt: item.PublishedAt,
		SeenAt:      seenAt.UTC(),
	}
}

// hashURL generates a SHA-1 hash of the given URL string.
func hashURL(u string) string {
	sum := sha1.Sum([]byte(u)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the structured logger publishers write to.
type Logger interface {
	DebugObj(msg, event string, obj map[string]any)
	InfoObj(msg, event string, obj map[string]any)
	WarnObj(msg, event string, obj map[string]any)
	ErrorObj(msg, event string, obj map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
