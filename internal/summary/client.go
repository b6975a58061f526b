// Package summary asks the dashboard backend for short article summaries.
package summary

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/internal/feed"
	"github.com/Adda-Baaj/khobor-desk/internal/logger"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

// softFailurePrefix marks a summary the backend produced in place of a real
// one (blocked, empty or failed generation).
const softFailurePrefix = "[AI"

const defaultTitle = "Article"

type request struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

type response struct {
	Summary string `json:"summary"`
}

// Client implements feed.Summarizer against POST /news/summarize.
type Client struct {
	api *httpclient.API
	log logger.Logger
}

// NewClient returns a summary client bound to the backend at baseURL.
func NewClient(client httpclient.Client, baseURL string, log logger.Logger) *Client {
	return &Client{
		api: httpclient.NewAPI(client, baseURL, nil),
		log: logger.Ensure(log),
	}
}

// Summarize requests a summary of item. Transport and backend errors are
// returned as errors; a response whose summary is missing or carries the
// backend's failure marker is returned as a soft failure.
func (c *Client) Summarize(ctx context.Context, item domain.FeedItem) (feed.Summary, error) {
	content := strings.TrimSpace(item.Content)
	if content == "" {
		return feed.Summary{}, feed.ErrNothingToRead
	}
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = defaultTitle
	}

	res, err := c.api.Request(ctx, http.MethodPost, "/news/summarize", nil, request{Content: content, Title: title})
	if err != nil {
		return feed.Summary{}, err
	}

	var body response
	if err := res.Decode(&body); err != nil {
		return feed.Summary{}, errors.New("Failed to get valid summary.")
	}

	text := strings.TrimSpace(body.Summary)
	switch {
	case text == "":
		return feed.Summary{SoftFailure: "Failed to get valid summary."}, nil
	case strings.HasPrefix(text, softFailurePrefix):
		c.log.InfoObj("backend declined to summarize", "summary_soft_failure", map[string]any{
			"url":    item.URL,
			"reason": text,
		})
		return feed.Summary{SoftFailure: text}, nil
	}
	return feed.Summary{Text: text}, nil
}
