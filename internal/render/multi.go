package render

import (
	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/internal/feed"
)

// Multi fans every call out to each renderer in order.
type Multi []feed.Renderer

// NewMulti drops nil renderers.
func NewMulti(renderers ...feed.Renderer) Multi {
	out := make(Multi, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m Multi) ShowMain(item domain.FeedItem) {
	for _, r := range m {
		r.ShowMain(item)
	}
}

func (m Multi) AddNotification(item domain.FeedItem) {
	for _, r := range m {
		r.AddNotification(item)
	}
}

func (m Multi) EvictOldestNotification() {
	for _, r := range m {
		r.EvictOldestNotification()
	}
}

func (m Multi) ShowStatus(text string, isError bool) {
	for _, r := range m {
		r.ShowStatus(text, isError)
	}
}

func (m Multi) ShowListError(text string) {
	for _, r := range m {
		r.ShowListError(text)
	}
}

func (m Multi) ClearListError() {
	for _, r := range m {
		r.ClearListError()
	}
}

func (m Multi) ShowNoResults(query string) {
	for _, r := range m {
		r.ShowNoResults(query)
	}
}

func (m Multi) ShowReading(active bool) {
	for _, r := range m {
		r.ShowReading(active)
	}
}
