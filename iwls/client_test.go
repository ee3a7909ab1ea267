package iwls

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestClient_GetDecodesJSON(t *testing.T) {
	var gotHeader http.Header
	var gotURL *url.URL
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotURL = r.URL
		w.Header().Set("Content-Type", JSONContentType)
		_, _ = w.Write([]byte(`[{"id":"5cebf1df3d0f4a073c4bbcb5","code":"00490","extra":true}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), French, newTestLogger())

	var out []struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	resourceURL, err := client.Get(context.Background(), "stations", url.Values{"code": {"00490"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/stations?code=00490", resourceURL)

	require.Len(t, out, 1)
	assert.Equal(t, "00490", out[0].Code)
	assert.Equal(t, "/stations", gotURL.Path)
	assert.Equal(t, "00490", gotURL.Query().Get("code"))
	assert.Equal(t, "fr", gotHeader.Get("Accept-Language"))
	assert.Equal(t, JSONContentType, gotHeader.Get("Accept"))
	assert.NotEmpty(t, gotHeader.Get(RequestIDHeader))
	assert.Equal(t, server.URL+"/stations?code=00490", client.LastURL())
}

func TestClient_GetNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), English, newTestLogger())

	var out any
	_, err := client.Get(context.Background(), "phenomena", nil, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrData)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusInternalServerError, upstreamErr.StatusCode)
	assert.Contains(t, upstreamErr.Message, "boom")
	assert.False(t, IsUpstreamNotFound(err))
}

func TestClient_GetNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(server.URL, server.Client(), English, newTestLogger())

	var out any
	_, err := client.Get(context.Background(), "stations/unknown", nil, &out)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.True(t, IsUpstreamNotFound(err))
}

func TestClient_GetUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := NewClient(baseURL, nil, English, newTestLogger())

	var out any
	_, err := client.Get(context.Background(), "stations", nil, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Zero(t, upstreamErr.StatusCode)
}

func TestClient_GetMalformedBody(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>maintenance</html>"},
		{name: "empty", body: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, server.Client(), English, newTestLogger())

			var out []any
			_, err := client.Get(context.Background(), "stations", nil, &out)
			assert.ErrorIs(t, err, ErrData)
			assert.NotErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestClient_GetCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), English, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out []any
	_, err := client.Get(ctx, "stations", nil, &out)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", nil, English, nil)

	assert.True(t, client.IsReady())
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Empty(t, client.LastURL())

	resourceURL, err := client.ResourceURL("/stations/abc/data", url.Values{"time-series-code": {"wlo"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL+"stations/abc/data?time-series-code=wlo", resourceURL)
}

func TestClient_NotReady(t *testing.T) {
	testCases := []struct {
		name        string
		client      *Client
		expectedErr error
	}{
		{name: "no http client", client: &Client{baseURL: DefaultBaseURL, logger: newTestLogger()}, expectedErr: ErrHTTPClientNotSet},
		{name: "no base url", client: &Client{httpClient: http.DefaultClient, logger: newTestLogger()}, expectedErr: ErrBaseURLNotSet},
		{name: "no logger", client: &Client{baseURL: DefaultBaseURL, httpClient: http.DefaultClient}, expectedErr: ErrClientNotReady},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, tc.client.IsReady())

			var out any
			resourceURL, err := tc.client.Get(context.Background(), "stations", nil, &out)
			assert.Empty(t, resourceURL)
			assert.ErrorIs(t, err, ErrClientNotReady)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Empty(t, tc.client.LastURL())
		})
	}
}

func TestClient_GetReturnsOwnURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"missing"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), English, newTestLogger())

	var out any
	first, err := client.Get(context.Background(), "stations/first/metadata", nil, &out)
	require.Error(t, err)
	_, _ = client.Get(context.Background(), "stations/second/metadata", nil, &out)

	assert.Equal(t, server.URL+"/stations/first/metadata", first)
	assert.Equal(t, server.URL+"/stations/second/metadata", client.LastURL())
}
