package app

import (
	"context"
	"time"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
)

// runScheduler analyzes every watchlist entry on a fixed interval.
// Failures are caught per symbol and recorded on that symbol's run,
// exactly as an interactively triggered analyze would be.
func runScheduler(ctx context.Context, storage interfaces.StorageManager, analyzer interfaces.AnalyzeService, config *common.Config, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Scheduler: stopped")
			return
		case <-ticker.C:
			analyzeWatchlist(ctx, storage, analyzer, config, logger)
		}
	}
}

func analyzeWatchlist(ctx context.Context, storage interfaces.StorageManager, analyzer interfaces.AnalyzeService, config *common.Config, logger *common.Logger) {
	start := time.Now()

	entries, err := storage.Companies().ListWatchlist(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Scheduler: failed to list watchlist")
		return
	}
	if len(entries) == 0 {
		return
	}

	failed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if _, err := analyzer.Analyze(ctx, entry.Symbol, config.Pipeline.LookbackDays); err != nil {
			failed++
			logger.Warn().Str("symbol", entry.Symbol).Err(err).Msg("Scheduler: analyze failed")
		}
	}

	logger.Info().
		Int("symbols", len(entries)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduler: watchlist sweep complete")
}
