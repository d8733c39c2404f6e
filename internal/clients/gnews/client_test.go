package gnews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sentinel/internal/transport"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>"RELIANCE stock" - Google News</title>
<item>
<title>Reliance posts record quarterly profit - Economic Times</title>
<link>https://news.example.com/reliance-profit</link>
<pubDate>Mon, 16 Jun 2025 08:30:00 GMT</pubDate>
</item>
<item>
<title>Analysts split on Reliance outlook - Mint</title>
<link>https://news.example.com/reliance-outlook</link>
<pubDate>Tue, 17 Jun 2025 11:00:00 GMT</pubDate>
</item>
<item>
<title>Headline with no publisher suffix</title>
<link>https://news.example.com/plain</link>
</item>
</channel>
</rss>`

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
}

func TestSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "en-IN", r.URL.Query().Get("hl"))
		assert.Equal(t, "IN", r.URL.Query().Get("gl"))
		assert.Equal(t, "IN:en", r.URL.Query().Get("ceid"))
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewClient(transport.NewClient(transport.WithRateLimit(1000)), WithEndpoint(srv.URL))
	items, err := client.Search(context.Background(), `"RELIANCE" stock`, 50)
	require.NoError(t, err)
	assert.Equal(t, `"RELIANCE" stock`, gotQuery)
	require.Len(t, items, 3)

	assert.Equal(t, "Reliance posts record quarterly profit", items[0].Title)
	assert.Equal(t, "Economic Times", items[0].Source)
	assert.Equal(t, "https://news.example.com/reliance-profit", items[0].URL)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, time.Date(2025, 6, 16, 8, 30, 0, 0, time.UTC), items[0].PublishedAt.UTC())

	assert.Equal(t, "Mint", items[1].Source)

	assert.Equal(t, "Headline with no publisher suffix", items[2].Title)
	assert.Equal(t, "Google News", items[2].Source)
	assert.Nil(t, items[2].PublishedAt)
}

func TestSearchRespectsLimit(t *testing.T) {
	srv := newFeedServer(t, sampleFeed)
	defer srv.Close()

	client := NewClient(transport.NewClient(transport.WithRateLimit(1000)), WithEndpoint(srv.URL))
	items, err := client.Search(context.Background(), "RELIANCE", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSearchMalformedFeed(t *testing.T) {
	srv := newFeedServer(t, "{definitely not xml}")
	defer srv.Close()

	client := NewClient(transport.NewClient(transport.WithRateLimit(1000)), WithEndpoint(srv.URL))
	_, err := client.Search(context.Background(), "RELIANCE", 10)
	require.Error(t, err)

	var derr *transport.DecodeError
	assert.ErrorAs(t, err, &derr)
}

func TestSplitTitleSource(t *testing.T) {
	title, source := splitTitleSource("TCS wins mega deal - Business Standard")
	assert.Equal(t, "TCS wins mega deal", title)
	assert.Equal(t, "Business Standard", source)

	title, source = splitTitleSource("Plain headline")
	assert.Equal(t, "Plain headline", title)
	assert.Equal(t, "Google News", source)
}
