// Package render presents feed controller state: on a terminal, in the
// notification journal and as published events.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

const defaultWidth = 80

// Terminal writes a styled, append-only transcript of the feed view.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	now     func() time.Time
	st      styles
	listErr bool
}

// TerminalOption customizes a Terminal.
type TerminalOption func(*Terminal)

// WithNow overrides the clock used for relative times.
func WithNow(now func() time.Time) TerminalOption {
	return func(t *Terminal) { t.now = now }
}

// NewTerminal renders to w, detecting its color support.
func NewTerminal(w io.Writer, width int, opts ...TerminalOption) *Terminal {
	if width <= 20 {
		width = defaultWidth
	}
	t := &Terminal{
		w:   w,
		now: time.Now,
		st:  newStyles(lipgloss.NewRenderer(w), width),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, s)
}

// ShowMain prints the full article block.
func (t *Terminal) ShowMain(item domain.FeedItem) {
	var b strings.Builder

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}
	b.WriteString(t.st.title.Render(title))

	if meta := t.metaLine(item); meta != "" {
		b.WriteString("\n" + t.st.meta.Render(meta))
	}

	b.WriteString("\n\n")
	if text := strings.TrimSpace(item.Content); text != "" {
		b.WriteString(t.st.body.Render(text))
	} else {
		b.WriteString(t.st.muted.Render("No content."))
	}
	if item.ImageURL != "" {
		b.WriteString("\n" + t.st.meta.Render("Image: "+item.ImageURL))
	}
	b.WriteString("\n\n" + t.st.link.Render("Read Full Story: "+item.URL))

	t.println(t.st.article.Render(b.String()))
}

func (t *Terminal) metaLine(item domain.FeedItem) string {
	var parts []string
	if item.SourceName != "" {
		parts = append(parts, "Source: "+item.SourceName)
	}
	if !item.PublishedAt.IsZero() {
		parts = append(parts, "Published: "+TimeAgo(item.PublishedAt, t.now()))
	}
	return strings.Join(parts, " | ")
}

// AddNotification prints a one-line notification.
func (t *Terminal) AddNotification(item domain.FeedItem) {
	source := item.SourceName
	if source == "" {
		source = "Unknown"
	}
	line := fmt.Sprintf("%s %s %s",
		t.st.badge.Render("["+source+"]"),
		item.Title,
		t.st.meta.Render("· "+TimeAgo(item.PublishedAt, t.now())),
	)
	t.println(t.st.note.Render(line))
}

// EvictOldestNotification has no visible effect on an append-only transcript.
func (t *Terminal) EvictOldestNotification() {}

// ShowStatus prints a status line.
func (t *Terminal) ShowStatus(text string, isError bool) {
	if isError {
		t.println(t.st.err.Render("✗ " + text))
		return
	}
	t.println(t.st.status.Render("• " + text))
}

// ShowListError prints a list-level error banner.
func (t *Terminal) ShowListError(text string) {
	t.mu.Lock()
	t.listErr = true
	t.mu.Unlock()
	t.println(t.st.err.Render(text))
}

// ClearListError notes that the last list error no longer applies.
func (t *Terminal) ClearListError() {
	t.mu.Lock()
	wasShown := t.listErr
	t.listErr = false
	t.mu.Unlock()
	if wasShown {
		t.println(t.st.muted.Render("(feed recovered)"))
	}
}

// ShowNoResults prints the explicit empty-search state.
func (t *Terminal) ShowNoResults(query string) {
	if strings.TrimSpace(query) == "" {
		query = "your criteria"
	}
	t.println(t.st.muted.Render(fmt.Sprintf("No articles found matching '%s'.", query)))
}

// ShowReading toggles the reading indicator.
func (t *Terminal) ShowReading(active bool) {
	if active {
		t.println(t.st.reading.Render("♪ reading (type 'stop' to interrupt)"))
	}
}

// ShowList prints items as a numbered list, newest first, for selection by
// index.
func (t *Terminal) ShowList(items []domain.FeedItem) {
	if len(items) == 0 {
		t.println(t.st.muted.Render("No notifications yet."))
		return
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%3d. %s %s", i+1, item.Title, t.st.meta.Render("· "+TimeAgo(item.PublishedAt, t.now())))
	}
	t.println(b.String())
}
