package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

func backendServer(t *testing.T, status int, body string, seen *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news/fetch", r.URL.Path)
		if seen != nil {
			*seen = r.URL.Query()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBackendFetch(t *testing.T) {
	var seen url.Values
	srv := backendServer(t, http.StatusOK, `{"status":"ok","articles":[
		{"url":"https://a.test/1","title":"First","source":{"name":"US"},"publishedAt":"2024-05-01T10:00:00Z","content":"body one","urlToImage":"https://a.test/1.jpg"},
		{"url":"","title":"skipped"},
		{"url":"https://a.test/2","title":"Second","publishedAt":"2024-05-01 09:00:00","description":"desc two"}
	]}`, &seen)

	f := NewBackendFetcher(httpclient.NewRestyClient(time.Second))
	items, err := f.Fetch(context.Background(), BackendProvider(srv.URL), domain.Query{Text: "rust lang", Region: "in,gb", PageSize: 500})
	require.NoError(t, err)

	assert.Equal(t, "rust lang", seen.Get("text"))
	assert.Equal(t, "in,gb", seen.Get("source-countries"))
	assert.Equal(t, "100", seen.Get("number"))

	require.Len(t, items, 2)
	assert.Equal(t, "https://a.test/1", items[0].URL)
	assert.Equal(t, "US", items[0].SourceName)
	assert.Equal(t, "body one", items[0].Content)
	assert.Equal(t, "https://a.test/1.jpg", items[0].ImageURL)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), items[0].PublishedAt)
	assert.Equal(t, "desc two", items[1].Content)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), items[1].PublishedAt)
	assert.Equal(t, ProviderTypeBackend, items[1].ProviderID)
}

func TestBackendFetchEmptyIsNotAnError(t *testing.T) {
	srv := backendServer(t, http.StatusOK, `{"articles":[]}`, nil)

	items, err := NewBackendFetcher(nil).Fetch(context.Background(), BackendProvider(srv.URL), domain.Query{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBackendFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "embedded error", status: http.StatusServiceUnavailable, body: `{"error":"News API not configured on server."}`, want: "News API not configured on server."},
		{name: "missing articles", status: http.StatusOK, body: `{"status":"ok"}`, want: ErrUnexpectedFormat.Error()},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: "Invalid JSON response (Status: 502)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := backendServer(t, tt.status, tt.body, nil)
			_, err := NewBackendFetcher(nil).Fetch(context.Background(), BackendProvider(srv.URL), domain.Query{})
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestBackendFetchRejectsOtherTypes(t *testing.T) {
	_, err := NewBackendFetcher(nil).Fetch(context.Background(), Provider{ID: "x", Type: ProviderTypeGoogleNews, SourceURL: "x"}, domain.Query{})
	assert.Error(t, err)
}
