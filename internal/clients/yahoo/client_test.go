package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sentinel/internal/transport"
)

func chartBody(timestamps []int64, closes string) string {
	parts := make([]string, len(timestamps))
	for i, ts := range timestamps {
		parts[i] = fmt.Sprintf("%d", ts)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{
		"open":[100.5,101.0],"high":[102.0,103.5],"low":[99.0,100.2],
		"close":%s,"volume":[1200000,null]}]}}],"error":null}}`,
		strings.Join(parts, ","), closes)
}

func newClient(endpoint string) *Client {
	return NewClient(
		transport.NewClient(transport.WithRateLimit(1000), transport.WithRetries(1)),
		WithEndpoint(endpoint),
	)
}

func TestHistoryNSESuffixFirst(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "90d", r.URL.Query().Get("range"))
		w.Write([]byte(chartBody([]int64{1750032000, 1750118400}, "[101.2,102.8]")))
	}))
	defer srv.Close()

	bars, err := newClient(srv.URL).History(context.Background(), "RELIANCE", 90)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, []string{"/v8/finance/chart/RELIANCE.NS"}, paths)

	assert.Equal(t, "RELIANCE", bars[0].Symbol)
	assert.Equal(t, time.Unix(1750032000, 0).UTC(), bars[0].TS)
	require.NotNil(t, bars[0].Close)
	assert.InDelta(t, 101.2, *bars[0].Close, 1e-9)
	require.NotNil(t, bars[0].Volume)
	assert.InDelta(t, 1200000, *bars[0].Volume, 1e-9)
	assert.Nil(t, bars[1].Volume)
}

func TestHistoryFallsBackToBSE(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, ".NS") {
			w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
			return
		}
		w.Write([]byte(chartBody([]int64{1750032000, 1750118400}, "[55.0,56.1]")))
	}))
	defer srv.Close()

	bars, err := newClient(srv.URL).History(context.Background(), "SOMEBSE", 30)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, []string{"/v8/finance/chart/SOMEBSE.NS", "/v8/finance/chart/SOMEBSE.BO"}, paths)
}

func TestHistoryAllVariantsFail(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).History(context.Background(), "GHOST", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no price history for GHOST")
	assert.Equal(t, []string{
		"/v8/finance/chart/GHOST.NS",
		"/v8/finance/chart/GHOST.BO",
		"/v8/finance/chart/GHOST",
	}, paths)
}

func TestHistoryNullNumericsStayNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartBody([]int64{1750032000, 1750118400}, "[null,102.8]")))
	}))
	defer srv.Close()

	bars, err := newClient(srv.URL).History(context.Background(), "RELIANCE", 5)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Nil(t, bars[0].Close)
	require.NotNil(t, bars[1].Close)
	assert.InDelta(t, 102.8, *bars[1].Close, 1e-9)
}
