// Package httpclient wraps resty for every outbound call the desk makes and
// classifies backend responses into a single success/error shape.
package httpclient

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "khobor-desk/1.0 (+https://github.com/Adda-Baaj/khobor-desk)"

// Client is the minimal HTTP surface used by sources, scrapers and panel clients.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error)
	Do(ctx context.Context, method, url string, body any, headers map[string]string) (*resty.Response, error)
	Upload(ctx context.Context, url, field, filename string, r io.Reader, headers map[string]string) (*resty.Response, error)
}

// restyClient implements Client on top of a shared resty.Client.
type restyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a Client with the given request timeout.
func NewRestyClient(timeout time.Duration) Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &restyClient{rc: rc}
}

// Get issues a GET request.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error) {
	return c.request(ctx, headers).Get(url)
}

// Do issues a request with an optional JSON body.
func (c *restyClient) Do(ctx context.Context, method, url string, body any, headers map[string]string) (*resty.Response, error) {
	req := c.request(ctx, headers)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return req.Execute(strings.ToUpper(method), url)
}

// Upload posts r as a multipart file field.
func (c *restyClient) Upload(ctx context.Context, url, field, filename string, r io.Reader, headers map[string]string) (*resty.Response, error) {
	return c.request(ctx, headers).
		SetFileReader(field, filename, r).
		Post(url)
}

func (c *restyClient) request(ctx context.Context, headers map[string]string) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.rc.R().SetContext(ctx)
	for k, v := range headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		req.SetHeader(k, v)
	}
	return req
}
