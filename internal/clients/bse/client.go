// Package bse fetches corporate announcements from the BSE India API.
package bse

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
	"github.com/bobmcallan/sentinel/internal/transport"
)

const (
	DefaultEndpoint = "https://api.bseindia.com/BseIndiaAPI/api/AnnGetData/w"

	siteBase       = "https://www.bseindia.com"
	attachLiveBase = "https://www.bseindia.com/xml-data/corpfiling/AttachLive/"
)

// Client lists announcements for a scrip code. The API is loosely
// typed: payload key and item field names drift between deployments,
// so decoding is alias-tolerant throughout.
type Client struct {
	endpoint string
	http     *transport.Client
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

// WithEndpoint overrides the announcements endpoint
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// NewClient creates a new BSE client
func NewClient(httpClient *transport.Client, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		http:     httpClient,
		logger:   common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListAnnouncements returns the announcements published for scripCode
// in the inclusive [from, to] date window.
func (c *Client) ListAnnouncements(ctx context.Context, scripCode string, from, to time.Time) ([]models.Announcement, error) {
	params := url.Values{
		"strCat":      {"-1"},
		"strPrevDate": {from.Format("20060102")},
		"strScrip":    {scripCode},
		"strSearch":   {"P"},
		"strToDate":   {to.Format("20060102")},
		"strType":     {"C"},
	}

	headers := map[string]string{
		"Referer": siteBase + "/corporates/ann.html",
		"Accept":  "application/json, text/plain, */*",
	}

	var payload map[string]interface{}
	if err := c.http.FetchJSON(ctx, c.endpoint, params, headers, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch announcements for scrip %s: %w", scripCode, err)
	}

	rows, ok := extractRows(payload)
	if !ok {
		c.logger.Warn().Str("scrip_code", scripCode).Msg("Announcement payload has no row list, returning empty")
		return nil, nil
	}

	announcements := make([]models.Announcement, 0, len(rows))
	for _, row := range rows {
		item, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		ann := models.Announcement{
			Title:       firstString(item, "NEWSSUB", "headline", "SUBJECT"),
			AnnouncedAt: firstString(item, "NEWS_DT", "date", "announced_at"),
		}
		if raw := firstString(item, "ATTACHMENTNAME", "attachment", "pdf"); raw != "" {
			if u, ok := NormalizeDocumentURL(raw); ok {
				ann.PDFURL = u
			}
		}
		// A row is only usable with both a title and a resolvable
		// document; anything less is skipped without noise.
		if ann.Title == "" || ann.PDFURL == "" {
			continue
		}
		announcements = append(announcements, ann)
	}

	c.logger.Debug().Str("scrip_code", scripCode).Int("count", len(announcements)).Msg("Fetched announcements")
	return announcements, nil
}

// extractRows digs the announcement list out of the payload, trying
// the key variants seen in the wild.
func extractRows(payload map[string]interface{}) ([]interface{}, bool) {
	for _, key := range []string{"Table", "table", "d"} {
		if v, ok := payload[key]; ok {
			if rows, ok := v.([]interface{}); ok {
				return rows, true
			}
		}
	}
	return nil, false
}

// firstString returns the first non-empty string value among keys.
func firstString(item map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := item[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// NormalizeDocumentURL turns the attachment reference formats the API
// emits into an absolute URL. The second return is false when the
// reference cannot be resolved to a document.
func NormalizeDocumentURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "", false
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw, true
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw, true
	case strings.HasPrefix(raw, "/"):
		return siteBase + raw, true
	case strings.HasSuffix(strings.ToLower(raw), ".pdf"):
		return attachLiveBase + raw, true
	default:
		return "", false
	}
}

var _ interfaces.FilingSource = (*Client)(nil)
