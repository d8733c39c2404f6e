package analyze

import (
	"context"
	"fmt"

	"github.com/bobmcallan/sentinel/internal/models"
)

// ingestPrices runs the price pipeline. Unlike filings and headlines,
// total price absence is fatal for the run.
func (s *Service) ingestPrices(ctx context.Context, runID, symbol string, lookbackDays int) (models.PriceStats, error) {
	stats := models.PriceStats{}

	bars, err := s.deps.Prices.History(ctx, symbol, lookbackDays)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch price history: %w", err)
	}

	persisted, err := s.storage.Prices().UpsertBars(ctx, symbol, bars)
	if err != nil {
		return stats, fmt.Errorf("failed to persist price bars: %w", err)
	}

	stats.Bars = persisted
	return stats, nil
}
