// Package interfaces defines service contracts for Sentinel
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/sentinel/internal/models"
)

// FilingSource lists regulatory announcements for a company.
// Implementations normalize source quirks (field aliases, relative
// document URLs) and never fail on malformed individual rows.
type FilingSource interface {
	// ListAnnouncements returns announcements for a scrip code in [from, to].
	ListAnnouncements(ctx context.Context, scripCode string, from, to time.Time) ([]models.Announcement, error)
}

// NewsSource searches a headline feed.
type NewsSource interface {
	// Search returns up to limit headlines matching the query.
	Search(ctx context.Context, query string, limit int) ([]models.NewsItem, error)
}

// PriceSource retrieves OHLCV history for a symbol.
type PriceSource interface {
	// History returns daily bars covering the lookback window. An empty
	// result across all market-suffix variants is an error, not an empty
	// slice: price absence is fatal for a run.
	History(ctx context.Context, symbol string, lookbackDays int) ([]models.PriceBar, error)
}

// LLMClient is the optional model-fallback surface used by the summarizer.
type LLMClient interface {
	// SummarizeFiling returns a one-sentence factual summary of a filing.
	SummarizeFiling(ctx context.Context, title, text string) (string, error)
}
