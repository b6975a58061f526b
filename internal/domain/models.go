package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared by sources, the feed controller and renderers.

// FeedItem is one unit of content identified by its URL. Items are never
// mutated after a fetch; the controller only replaces its working set.
type FeedItem struct {
	ProviderID  string    `json:"provider_id,omitempty"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	SourceName  string    `json:"source_name,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Content     string    `json:"content,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
}

// Key returns the identity of the item.
func (i FeedItem) Key() string { return strings.TrimSpace(i.URL) }

// Notifiable reports whether the item carries enough to be shown as a notification.
func (i FeedItem) Notifiable() bool {
	return i.Key() != "" && strings.TrimSpace(i.Title) != ""
}

// FetchBatch is the full result set of one fetch cycle, tagged with the
// moment the response was accepted.
type FetchBatch struct {
	Items     []FeedItem
	FetchedAt time.Time
}

// Latest returns the first item of the batch, which sources order newest first.
func (b FetchBatch) Latest() (FeedItem, bool) {
	if len(b.Items) == 0 {
		return FeedItem{}, false
	}
	return b.Items[0], true
}

// Query is the opaque search handed to feed sources.
type Query struct {
	Text     string
	Region   string
	PageSize int
}

// WithDefaults fills blank fields from def.
func (q Query) WithDefaults(def Query) Query {
	if strings.TrimSpace(q.Text) == "" {
		q.Text = def.Text
	}
	if strings.TrimSpace(q.Region) == "" {
		q.Region = def.Region
	}
	if q.PageSize <= 0 {
		q.PageSize = def.PageSize
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Region = strings.TrimSpace(q.Region)
	return q
}
