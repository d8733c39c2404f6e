// Package yahoo fetches daily OHLCV history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
	"github.com/bobmcallan/sentinel/internal/transport"
)

const DefaultEndpoint = "https://query1.finance.yahoo.com"

// marketSuffixes is the ticker fallback order for Indian listings: NSE
// first, then BSE, then the bare symbol.
var marketSuffixes = []string{".NS", ".BO", ""}

// Client retrieves price history, trying each market-suffix variant of
// a symbol until one returns bars.
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

// WithEndpoint overrides the API base URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// NewClient creates a new Yahoo Finance client
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

// chartResponse mirrors the v8 chart payload. Numeric series use
// pointer slices: the API emits JSON null for missing values.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History returns daily bars for the lookback window. Each suffix
// variant is tried in order; only when every variant yields nothing is
// an error returned.
func (c *Client) History(ctx context.Context, symbol string, lookbackDays int) ([]models.PriceBar, error) {
	if lookbackDays <= 0 {
		lookbackDays = 1
	}

	var lastErr error
	for _, suffix := range marketSuffixes {
		ticker := symbol + suffix
		bars, err := c.fetchBars(ctx, ticker, symbol, lookbackDays)
		if err != nil {
			lastErr = err
			c.logger.Debug().Str("ticker", ticker).Err(err).Msg("Price fetch variant failed")
			continue
		}
		if len(bars) == 0 {
			c.logger.Debug().Str("ticker", ticker).Msg("Price fetch variant returned no bars")
			continue
		}
		c.logger.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("Fetched price history")
		return bars, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("no price history for %s on any market: %w", symbol, lastErr)
	}
	return nil, fmt.Errorf("no price history for %s on any market", symbol)
}

func (c *Client) fetchBars(ctx context.Context, ticker, symbol string, lookbackDays int) ([]models.PriceBar, error) {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s", c.endpoint, url.PathEscape(ticker))
	params := url.Values{
		"range":    {fmt.Sprintf("%dd", lookbackDays)},
		"interval": {"1d"},
	}

	var resp chartResponse
	if err := c.http.FetchJSON(ctx, reqURL, params, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", ticker, resp.Chart.Error.Code)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := models.PriceBar{
			Symbol: symbol,
			TS:     time.Unix(ts, 0).UTC(),
			Open:   finiteAt(quote.Open, i),
			High:   finiteAt(quote.High, i),
			Low:    finiteAt(quote.Low, i),
			Close:  finiteAt(quote.Close, i),
			Volume: finiteAt(quote.Volume, i),
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// finiteAt returns the i-th value of a series, or nil when the series
// is short, the value is null, or it is not a finite number.
func finiteAt(series []*float64, i int) *float64 {
	if i >= len(series) || series[i] == nil {
		return nil
	}
	v := *series[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

var _ interfaces.PriceSource = (*Client)(nil)
