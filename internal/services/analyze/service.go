// Package analyze orchestrates the per-symbol ingestion run: filings,
// news, then prices, under one run record with failure isolation at the
// item boundary.
package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
)

// minFilingWindowDays floors the filing listing window: announcement
// feeds are sparse, so very short lookbacks still scan a month.
const minFilingWindowDays = 30

// Downloader streams a document URL to a local path.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// FilingSummarizer produces a summary, escalating to a model for
// low-confidence results. A non-nil error reports a failed escalation;
// the returned result is still usable.
type FilingSummarizer interface {
	SummarizeWithFallback(ctx context.Context, title, text string) (interfaces.SummaryResult, error)
}

// Dependencies are the external collaborators the pipelines compose.
type Dependencies struct {
	Filings    interfaces.FilingSource
	News       interfaces.NewsSource
	Prices     interfaces.PriceSource
	Downloader Downloader
	Extractor  interfaces.TextExtractor
	Recognizer interfaces.Recognizer
	Scorer     interfaces.SentimentScorer
	Summarizer FilingSummarizer
}

// Service implements the AnalyzeService orchestration.
type Service struct {
	storage interfaces.StorageManager
	deps    Dependencies
	cfg     *common.Config
	logger  *common.Logger
}

// NewService creates a new analyze service
func NewService(storage interfaces.StorageManager, deps Dependencies, cfg *common.Config, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		deps:    deps,
		cfg:     cfg,
		logger:  logger,
	}
}

// Analyze runs the full ingestion for a symbol. The run record is
// created first so that even validation failures leave an inspectable
// FAILED run; err is non-nil exactly when the run ended FAILED.
func (s *Service) Analyze(ctx context.Context, symbol string, lookbackDays int) (*models.AnalyzeResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.Pipeline.LookbackDays
	}

	run, err := s.storage.Runs().Create(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	result := &models.AnalyzeResult{RunID: run.ID}

	s.logger.Info().Str("run_id", run.ID).Str("symbol", symbol).Int("lookback_days", lookbackDays).Msg("Analyze started")
	s.runLog(ctx, run.ID, "INFO", fmt.Sprintf("Analyze started for %s lookback_days=%d", symbol, lookbackDays))

	company, err := s.validateSymbol(ctx, symbol)
	if err != nil {
		return result, s.failRun(ctx, run.ID, err)
	}

	to := time.Now()
	windowDays := lookbackDays
	if windowDays < minFilingWindowDays {
		windowDays = minFilingWindowDays
	}
	from := to.AddDate(0, 0, -windowDays)

	result.Filings, err = s.ingestFilings(ctx, run.ID, symbol, company.ScripCode, from, to)
	if err != nil {
		return result, s.failRun(ctx, run.ID, err)
	}
	s.runLog(ctx, run.ID, "INFO", fmt.Sprintf(
		"Filings: fetched=%d downloaded=%d persisted=%d skipped=%d ocr_used=%d failed=%d",
		result.Filings.Fetched, result.Filings.Downloaded, result.Filings.Persisted,
		result.Filings.SkippedExisting, result.Filings.OCRUsed, result.Filings.Failed))

	result.News, err = s.ingestNews(ctx, run.ID, symbol, company.Name)
	if err != nil {
		return result, s.failRun(ctx, run.ID, err)
	}
	s.runLog(ctx, run.ID, "INFO", fmt.Sprintf(
		"News: fetched=%d persisted=%d failed=%d",
		result.News.Fetched, result.News.Persisted, result.News.Failed))

	result.Prices, err = s.ingestPrices(ctx, run.ID, symbol, lookbackDays)
	if err != nil {
		return result, s.failRun(ctx, run.ID, err)
	}
	s.runLog(ctx, run.ID, "INFO", fmt.Sprintf("Prices: bars=%d", result.Prices.Bars))

	if err := s.storage.Runs().Finish(ctx, run.ID, models.RunStatusSuccess); err != nil {
		s.logger.Error().Str("run_id", run.ID).Err(err).Msg("Failed to finish run")
	}
	s.logger.Info().Str("run_id", run.ID).Str("symbol", symbol).Msg("Analyze finished")
	return result, nil
}

// validateSymbol gates a run on a known company with a scrip code.
func (s *Service) validateSymbol(ctx context.Context, symbol string) (*models.Company, error) {
	company, err := s.storage.Companies().Get(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up company %s: %w", symbol, err)
	}
	if company == nil {
		return nil, fmt.Errorf("unknown company symbol: %s (seed companies first)", symbol)
	}
	if company.ScripCode == "" {
		return nil, fmt.Errorf("missing scrip code for %s", symbol)
	}
	return company, nil
}

// failRun records the fatal error on the run and moves it to FAILED.
func (s *Service) failRun(ctx context.Context, runID string, cause error) error {
	s.logger.Error().Str("run_id", runID).Err(cause).Msg("Analyze failed")
	s.runLog(ctx, runID, "ERROR", cause.Error())
	if err := s.storage.Runs().Finish(ctx, runID, models.RunStatusFailed); err != nil {
		s.logger.Error().Str("run_id", runID).Err(err).Msg("Failed to finish run")
	}
	return cause
}

// runLog appends a run log line; a logging failure never affects the run.
func (s *Service) runLog(ctx context.Context, runID, level, message string) {
	if err := s.storage.Runs().AppendLog(ctx, runID, level, message); err != nil {
		s.logger.Warn().Str("run_id", runID).Err(err).Msg("Failed to append run log")
	}
}

var _ interfaces.AnalyzeService = (*Service)(nil)
