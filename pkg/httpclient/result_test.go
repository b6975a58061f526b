package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{name: "embedded error wins over status", status: 500, body: `{"error":"db down"}`, kind: KindApplication, message: "db down"},
		{name: "embedded error on 2xx", status: 200, body: `{"error":"quota exceeded"}`, kind: KindApplication, message: "quota exceeded"},
		{name: "message counts on non-2xx", status: 400, body: `{"message":"bad label"}`, kind: KindApplication, message: "bad label"},
		{name: "invalid json names status", status: 502, body: `<html>bad gateway</html>`, kind: KindDecode, message: "Invalid JSON response (Status: 502)"},
		{name: "empty body is a parse failure", status: 200, body: ``, kind: KindDecode, message: "Invalid JSON response (Status: 200)"},
		{name: "json without detail", status: 404, body: `{}`, kind: KindHTTP, message: "HTTP error 404: Not Found"},
		{name: "unknown status text", status: 599, body: `[]`, kind: KindHTTP, message: "HTTP error 599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Classify(tt.status, []byte(tt.body))
			assert.Nil(t, res)
			herr, ok := AsError(err)
			require.True(t, ok, "expected *Error, got %v", err)
			assert.Equal(t, tt.kind, herr.Kind)
			assert.Equal(t, tt.message, herr.Message)
			assert.Equal(t, tt.status, herr.Status)
		})
	}
}

func TestClassifySuccess(t *testing.T) {
	res, err := Classify(200, []byte(` {"message":"Agent started","articles":[]} `))
	require.NoError(t, err)
	assert.Equal(t, 200, res.Status)

	var out struct {
		Message  string `json:"message"`
		Articles []any  `json:"articles"`
	}
	require.NoError(t, res.Decode(&out))
	assert.Equal(t, "Agent started", out.Message)
	assert.Empty(t, out.Articles)
}

func TestAPIRequestAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/news/fetch":
			assert.Equal(t, "ai", r.URL.Query().Get("text"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"articles":[]}`))
		case "/news/summarize":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"))
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"db down"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	api := NewAPI(NewRestyClient(2*time.Second), srv.URL+"/", nil)

	res, err := api.Request(context.Background(), http.MethodGet, "/news/fetch", map[string][]string{"text": {"ai"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)

	_, err = api.Request(context.Background(), http.MethodPost, "news/summarize", nil, map[string]string{"content": "x"})
	require.Error(t, err)
	assert.Equal(t, "db down", err.Error())
}

func TestAPINetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	api := NewAPI(NewRestyClient(time.Second), base, nil)
	_, err := api.Request(context.Background(), http.MethodGet, "/news/fetch", nil, nil)

	herr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, herr.Kind)
	assert.True(t, herr.Retryable())
	assert.True(t, strings.HasPrefix(herr.Message, "Network error:"))
}
