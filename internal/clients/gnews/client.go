// Package gnews fetches headlines from the Google News RSS search feed.
package gnews

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
	"github.com/bobmcallan/sentinel/internal/transport"
)

const (
	DefaultEndpoint = "https://news.google.com/rss/search"
	DefaultLanguage = "en-IN"
	DefaultCountry  = "IN"
	DefaultEdition  = "IN:en"
	DefaultLimit    = 50
	defaultSource   = "Google News"
)

// Client searches the RSS feed and maps entries to news items.
type Client struct {
	endpoint string
	language string
	country  string
	edition  string
	http     *transport.Client
	parser   *gofeed.Parser
	logger   *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithEndpoint overrides the feed endpoint
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithLocale sets the feed language, country and edition parameters
func WithLocale(language, country, edition string) ClientOption {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
		if country != "" {
			c.country = country
		}
		if edition != "" {
			c.edition = edition
		}
	}
}

// NewClient creates a new Google News client
func NewClient(httpClient *transport.Client, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		language: DefaultLanguage,
		country:  DefaultCountry,
		edition:  DefaultEdition,
		http:     httpClient,
		parser:   gofeed.NewParser(),
		logger:   common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Search returns up to limit headlines matching query, newest first as
// the feed orders them.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{
		"q":    {query},
		"hl":   {c.language},
		"gl":   {c.country},
		"ceid": {c.edition},
	}

	body, err := c.http.FetchText(ctx, c.endpoint, params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news feed for %q: %w", query, err)
	}

	feed, err := c.parser.ParseString(body)
	if err != nil {
		return nil, &transport.DecodeError{URL: c.endpoint, Err: err}
	}

	items := make([]models.NewsItem, 0, limit)
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		title, source := splitTitleSource(entry.Title)
		if title == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Title:       title,
			URL:         strings.TrimSpace(entry.Link),
			Source:      source,
			PublishedAt: entry.PublishedParsed,
		})
	}

	c.logger.Debug().Str("query", query).Int("count", len(items)).Msg("Fetched headlines")
	return items, nil
}

// splitTitleSource strips the " - Publisher" suffix Google News appends
// to every entry title, returning the bare title and the publisher name.
func splitTitleSource(raw string) (title, source string) {
	raw = strings.TrimSpace(raw)
	if idx := strings.LastIndex(raw, " - "); idx > 0 {
		return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+3:])
	}
	return raw, defaultSource
}

var _ interfaces.NewsSource = (*Client)(nil)
