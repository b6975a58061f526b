package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// API issues classified requests against a single backend base URL.
type API struct {
	client  Client
	baseURL string
	headers map[string]string
}

// NewAPI binds client to baseURL.
func NewAPI(client Client, baseURL string, headers map[string]string) *API {
	return &API{
		client:  client,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		headers: headers,
	}
}

// BaseURL returns the configured base URL.
func (a *API) BaseURL() string { return a.baseURL }

// URL joins path and query onto the base URL.
func (a *API) URL(path string, query url.Values) string {
	u := a.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Request performs method on path and classifies the response.
func (a *API) Request(ctx context.Context, method, path string, query url.Values, body any) (*Result, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("api client is not configured")
	}
	target := a.URL(path, query)
	if strings.EqualFold(method, http.MethodGet) && body == nil {
		return ClassifyResponse(a.client.Get(ctx, target, a.headers))
	}
	return ClassifyResponse(a.client.Do(ctx, method, target, body, a.headers))
}

// Upload posts a multipart file to path and classifies the response.
func (a *API) Upload(ctx context.Context, path, field, filename string, r io.Reader) (*Result, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("api client is not configured")
	}
	return ClassifyResponse(a.client.Upload(ctx, a.URL(path, nil), field, filename, r, a.headers))
}
