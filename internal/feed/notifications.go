package feed

import (
	"container/list"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

// DefaultNotificationLimit bounds the notification list.
const DefaultNotificationLimit = 50

// NotificationSet is a bounded, insertion-ordered set of surfaced items keyed
// by URL. The newest entry sits at the front; eviction removes from the back.
// Not safe for concurrent use.
type NotificationSet struct {
	limit int
	order *list.List
	index map[string]*list.Element
}

// NewNotificationSet returns an empty set holding at most limit entries.
func NewNotificationSet(limit int) *NotificationSet {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return &NotificationSet{
		limit: limit,
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

// Limit returns the capacity bound.
func (s *NotificationSet) Limit() int { return s.limit }

// Len returns the number of entries.
func (s *NotificationSet) Len() int { return s.order.Len() }

// Contains reports whether url has been surfaced and not evicted since.
func (s *NotificationSet) Contains(url string) bool {
	_, ok := s.index[url]
	return ok
}

// Get returns the entry stored for url.
func (s *NotificationSet) Get(url string) (domain.FeedItem, bool) {
	el, ok := s.index[url]
	if !ok {
		return domain.FeedItem{}, false
	}
	return el.Value.(domain.FeedItem), true
}

// Add inserts item at the front unless its URL is already present. It
// reports whether the item was new. The bound is not enforced until Trim.
func (s *NotificationSet) Add(item domain.FeedItem) bool {
	key := item.Key()
	if key == "" || s.Contains(key) {
		return false
	}
	s.index[key] = s.order.PushFront(item)
	return true
}

// Trim evicts from the back until the set fits its bound and returns the
// evicted items in eviction order.
func (s *NotificationSet) Trim() []domain.FeedItem {
	var evicted []domain.FeedItem
	for s.order.Len() > s.limit {
		back := s.order.Back()
		item := s.order.Remove(back).(domain.FeedItem)
		delete(s.index, item.Key())
		evicted = append(evicted, item)
	}
	return evicted
}

// Items returns a newest-first snapshot.
func (s *NotificationSet) Items() []domain.FeedItem {
	out := make([]domain.FeedItem, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(domain.FeedItem))
	}
	return out
}
