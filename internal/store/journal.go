// Package store persists the surfaced notification list so a desk can resume
// where it left off.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

var (
	notificationsBucket = []byte("notifications")
	urlsBucket          = []byte("urls")
)

// Entry is one journaled notification.
type Entry struct {
	Item   domain.FeedItem
	SeenAt time.Time
}

type record struct {
	ProviderID  string    `json:"provider_id,omitempty"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	SourceName  string    `json:"source_name,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Content     string    `json:"content,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	SeenAt      time.Time `json:"seen_at"`
}

func toRecord(item domain.FeedItem, seenAt time.Time) record {
	return record{
		ProviderID:  item.ProviderID,
		URL:         item.Key(),
		Title:       item.Title,
		SourceName:  item.SourceName,
		PublishedAt: item.PublishedAt,
		Content:     item.Content,
		ImageURL:    item.ImageURL,
		Keywords:    item.Keywords,
		SeenAt:      seenAt,
	}
}

func (r record) entry() Entry {
	return Entry{
		Item: domain.FeedItem{
			ProviderID:  r.ProviderID,
			URL:         r.URL,
			Title:       r.Title,
			SourceName:  r.SourceName,
			PublishedAt: r.PublishedAt,
			Content:     r.Content,
			ImageURL:    r.ImageURL,
			Keywords:    r.Keywords,
		},
		SeenAt: r.SeenAt,
	}
}

// Journal is a bbolt-backed, insertion-ordered notification log. Entries
// are keyed by a big-endian sequence so cursor order is insertion order; a
// second bucket indexes them by URL.
type Journal struct {
	db *bolt.DB
}

// Open opens or creates the journal file at path.
func Open(path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is empty")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{notificationsBucket, urlsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Close releases the file lock.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.db.Path() }

// Append records item unless its URL is already journaled. It reports
// whether a new entry was written.
func (j *Journal) Append(item domain.FeedItem, seenAt time.Time) (bool, error) {
	key := item.Key()
	if key == "" {
		return false, errors.New("journal entry has no url")
	}

	raw, err := json.Marshal(toRecord(item, seenAt))
	if err != nil {
		return false, fmt.Errorf("encode journal entry: %w", err)
	}

	added := false
	err = j.db.Update(func(tx *bolt.Tx) error {
		urls := tx.Bucket(urlsBucket)
		if urls.Get([]byte(key)) != nil {
			return nil
		}
		notes := tx.Bucket(notificationsBucket)
		seq, err := notes.NextSequence()
		if err != nil {
			return err
		}
		id := itob(seq)
		if err := notes.Put(id, raw); err != nil {
			return err
		}
		added = true
		return urls.Put([]byte(key), id)
	})
	if err != nil {
		return false, fmt.Errorf("append journal entry: %w", err)
	}
	return added, nil
}

// EvictOldest removes the earliest entry. It reports false when the journal
// is empty.
func (j *Journal) EvictOldest() (Entry, bool, error) {
	var (
		evicted Entry
		found   bool
	)
	err := j.db.Update(func(tx *bolt.Tx) error {
		notes := tx.Bucket(notificationsBucket)
		k, v := notes.Cursor().First()
		if k == nil {
			return nil
		}
		var rec record
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("decode journal entry: %w", err)
		}
		if err := notes.Delete(k); err != nil {
			return err
		}
		evicted, found = rec.entry(), true
		return tx.Bucket(urlsBucket).Delete([]byte(rec.URL))
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("evict journal entry: %w", err)
	}
	return evicted, found, nil
}

// List returns every entry, oldest first.
func (j *Journal) List() ([]Entry, error) {
	var out []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(notificationsBucket).ForEach(func(_, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode journal entry: %w", err)
			}
			out = append(out, rec.entry())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Contains reports whether url is journaled.
func (j *Journal) Contains(url string) (bool, error) {
	found := false
	err := j.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(urlsBucket).Get([]byte(strings.TrimSpace(url))) != nil
		return nil
	})
	return found, err
}

// Len returns the number of entries.
func (j *Journal) Len() (int, error) {
	n := 0
	err := j.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(notificationsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Items returns the journaled feed items, oldest first.
func Items(entries []Entry) []domain.FeedItem {
	out := make([]domain.FeedItem, len(entries))
	for i, e := range entries {
		out[i] = e.Item
	}
	return out
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
