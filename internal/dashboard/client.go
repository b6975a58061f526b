// Package dashboard talks to the sibling panels of the desk: the email agent,
// the data upload endpoint and the education assistant.
package dashboard

import (
	"fmt"

	"github.com/Adda-Baaj/khobor-desk/internal/logger"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

// ValidationError rejects caller input before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Client wraps the dashboard backend endpoints.
type Client struct {
	api *httpclient.API
	log logger.Logger
}

// NewClient binds a dashboard client to baseURL.
func NewClient(client httpclient.Client, baseURL string, log logger.Logger) *Client {
	return &Client{
		api: httpclient.NewAPI(client, baseURL, nil),
		log: logger.Ensure(log),
	}
}
