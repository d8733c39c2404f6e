// Package app wires configuration, storage, clients and services into
// the running application.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/sentinel/internal/clients/bse"
	"github.com/bobmcallan/sentinel/internal/clients/gemini"
	"github.com/bobmcallan/sentinel/internal/clients/gnews"
	"github.com/bobmcallan/sentinel/internal/clients/yahoo"
	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/services/analyze"
	"github.com/bobmcallan/sentinel/internal/services/extract"
	"github.com/bobmcallan/sentinel/internal/services/sentiment"
	"github.com/bobmcallan/sentinel/internal/services/summarize"
	"github.com/bobmcallan/sentinel/internal/storage"
	"github.com/bobmcallan/sentinel/internal/transport"
)

// App holds all initialized services, clients and storage.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Storage        interfaces.StorageManager
	AnalyzeService interfaces.AnalyzeService
	StartupTime    time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients and services. configPath may be
// empty, in which case SENTINEL_CONFIG and the binary directory are
// consulted.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("SENTINEL_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "sentinel.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/sentinel.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Storage.DataPath != "" && !filepath.IsAbs(config.Storage.DataPath) {
		config.Storage.DataPath = filepath.Join(binDir, config.Storage.DataPath)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	httpClient := transport.NewClient(
		transport.WithRetries(config.Pipeline.HTTPRetries),
		transport.WithUserAgent(config.Pipeline.UserAgent),
		transport.WithRateLimit(config.Pipeline.RateLimit),
		transport.WithLogger(logger),
	)

	bseClient := bse.NewClient(httpClient,
		bse.WithEndpoint(config.Clients.BSE.Endpoint),
		bse.WithLogger(logger),
	)
	newsClient := gnews.NewClient(httpClient,
		gnews.WithLocale(config.Clients.News.HL, config.Clients.News.GL, config.Clients.News.CEID),
		gnews.WithLogger(logger),
	)
	priceClient := yahoo.NewClient(httpClient,
		yahoo.WithEndpoint(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
	)

	var llmClient interfaces.LLMClient
	if config.Clients.Gemini.Enabled && config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini client unavailable - summary fallback disabled")
		} else {
			llmClient = client
		}
	}

	analyzeService := analyze.NewService(storageManager, analyze.Dependencies{
		Filings:    bseClient,
		News:       newsClient,
		Prices:     priceClient,
		Downloader: httpClient,
		Extractor:  extract.NewPDFExtractor(extract.WithLogger(logger)),
		Recognizer: extract.NewTesseractRecognizer(extract.WithRecognizerLogger(logger)),
		Scorer:     sentiment.NewScorer(),
		Summarizer: summarize.NewFallbackSummarizer(llmClient, logger),
	}, config, logger)

	app := &App{
		Config:         config,
		Logger:         logger,
		Storage:        storageManager,
		AnalyzeService: analyzeService,
		StartupTime:    startupStart,
	}

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return app, nil
}

// StartScheduler launches the periodic watchlist analyzer when enabled.
func (a *App) StartScheduler() {
	if !a.Config.Pipeline.SchedulerEnabled {
		a.Logger.Debug().Msg("Scheduler disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel
	interval := a.Config.Pipeline.GetSchedulerInterval()

	a.Logger.Info().Dur("interval", interval).Msg("Scheduler started")
	go runScheduler(ctx, a.Storage, a.AnalyzeService, a.Config, a.Logger, interval)
}

// Shutdown stops background work and closes storage.
func (a *App) Shutdown() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	if err := a.Storage.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to close storage")
	}
	a.Logger.Info().Msg("Application shut down")
}
