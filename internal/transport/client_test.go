package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(opts ...ClientOption) (*Client, *[]time.Duration) {
	var slept []time.Duration
	base := []ClientOption{
		WithRateLimit(1000),
		withSleep(func(d time.Duration) { slept = append(slept, d) }),
	}
	return NewClient(append(base, opts...)...), &slept
}

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tester/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "value", r.URL.Query().Get("key"))
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	client, _ := newTestClient(WithUserAgent("tester/1.0"))
	body, err := client.FetchText(context.Background(), srv.URL, url.Values{"key": {"value"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", body)
}

func TestFetchTextRetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, slept := newTestClient()
	body, err := client.FetchText(context.Background(), srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *slept)
}

func TestFetchTextExhaustsRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := newTestClient(WithRetries(2))
	_, err := client.FetchText(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 2, terr.Attempts)
	assert.Equal(t, srv.URL, terr.URL)
}

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"RELIANCE","count":7}`))
	}))
	defer srv.Close()

	var result struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	client, _ := newTestClient()
	err := client.FetchJSON(context.Background(), srv.URL, nil, nil, &result)
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE", result.Name)
	assert.Equal(t, 7, result.Count)
}

func TestFetchJSONDecodeErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	var result map[string]interface{}
	client, _ := newTestClient()
	err := client.FetchJSON(context.Background(), srv.URL, nil, nil, &result)
	require.Error(t, err)

	var derr *DecodeError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, 1, calls)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "filings", "doc.pdf")
	client, _ := newTestClient()
	err := client.Download(context.Background(), srv.URL, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	_, err = os.Stat(dest + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestDownloadFailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "doc.pdf")
	client, _ := newTestClient(WithRetries(1))
	err := client.Download(context.Background(), srv.URL, dest)
	require.Error(t, err)

	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestBackoffCap(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
	assert.Equal(t, 8*time.Second, backoff(3))
	assert.Equal(t, 8*time.Second, backoff(4))
	assert.Equal(t, 8*time.Second, backoff(10))
}
