package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/sentinel/internal/models"
)

// ErrFilingExists is returned by FilingStore.Create when a filing with the
// same (symbol, content hash) identity is already persisted.
var ErrFilingExists = errors.New("filing already exists")

// StorageManager coordinates all storage backends
type StorageManager interface {
	Companies() CompanyStore
	Runs() RunStore
	Filings() FilingStore
	Headlines() HeadlineStore
	Mood() MoodStore
	Prices() PriceStore

	// DataPath returns the directory for downloaded documents and text.
	DataPath() string

	Close() error
}

// CompanyStore manages company records and the watchlist.
type CompanyStore interface {
	Upsert(ctx context.Context, company *models.Company) error
	Get(ctx context.Context, symbol string) (*models.Company, error)

	AddToWatchlist(ctx context.Context, symbol string) error
	RemoveFromWatchlist(ctx context.Context, symbol string) error
	ListWatchlist(ctx context.Context) ([]*models.WatchlistEntry, error)
}

// RunStore is the orchestrator's sole persistence surface for run state.
type RunStore interface {
	Create(ctx context.Context, symbol string) (*models.Run, error)
	Finish(ctx context.Context, id string, status models.RunStatus) error
	AppendLog(ctx context.Context, id, level, message string) error
	Get(ctx context.Context, id string) (*models.Run, error)
}

// FilingStore persists filings and their artifacts.
type FilingStore interface {
	// Exists reports whether a filing with this content hash is persisted
	// for the symbol.
	Exists(ctx context.Context, symbol, contentHash string) (bool, error)

	// Create inserts a filing and its artifact. The insert is conditional
	// on the filing key: concurrent discovery of an identical document
	// yields exactly one row, the loser gets ErrFilingExists.
	Create(ctx context.Context, filing *models.Filing, artifact *models.FilingArtifact) error

	Get(ctx context.Context, id string) (*models.Filing, error)
	GetArtifact(ctx context.Context, filingID string) (*models.FilingArtifact, error)
	ListByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]models.Filing, error)
}

// HeadlineStore persists scored headlines keyed on (symbol, URL).
type HeadlineStore interface {
	Upsert(ctx context.Context, headline *models.Headline) error
	ListByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]models.Headline, error)
}

// MoodStore persists daily mood aggregates keyed on (symbol, date).
type MoodStore interface {
	Upsert(ctx context.Context, mood *models.MoodDaily) error
	ListByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]models.MoodDaily, error)
}

// PriceStore persists OHLCV bars keyed on (symbol, timestamp).
type PriceStore interface {
	UpsertBars(ctx context.Context, symbol string, bars []models.PriceBar) (int, error)
	ListByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)
}
