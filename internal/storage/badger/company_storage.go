package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
)

type companyStorage struct {
	store  *Store
	logger *common.Logger
}

// NewCompanyStorage creates a new CompanyStore backed by BadgerHold.
func NewCompanyStorage(store *Store, logger *common.Logger) interfaces.CompanyStore {
	return &companyStorage{store: store, logger: logger}
}

func (s *companyStorage) Upsert(_ context.Context, company *models.Company) error {
	if company.Symbol == "" {
		return fmt.Errorf("company symbol is required")
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now()
	}
	if err := s.store.db.Upsert(company.Symbol, company); err != nil {
		return fmt.Errorf("failed to save company %s: %w", company.Symbol, err)
	}
	s.logger.Debug().Str("symbol", company.Symbol).Msg("Company saved")
	return nil
}

// Get returns nil without error when the symbol is unknown: absence is
// a validation outcome for callers, not a storage fault.
func (s *companyStorage) Get(_ context.Context, symbol string) (*models.Company, error) {
	var company models.Company
	err := s.store.db.Get(symbol, &company)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %s: %w", symbol, err)
	}
	return &company, nil
}

func (s *companyStorage) AddToWatchlist(_ context.Context, symbol string) error {
	entry := models.WatchlistEntry{Symbol: symbol, AddedAt: time.Now()}
	if err := s.store.db.Upsert(symbol, &entry); err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", symbol, err)
	}
	s.logger.Debug().Str("symbol", symbol).Msg("Added to watchlist")
	return nil
}

func (s *companyStorage) RemoveFromWatchlist(_ context.Context, symbol string) error {
	err := s.store.db.Delete(symbol, models.WatchlistEntry{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to remove %s from watchlist: %w", symbol, err)
	}
	s.logger.Debug().Str("symbol", symbol).Msg("Removed from watchlist")
	return nil
}

func (s *companyStorage) ListWatchlist(_ context.Context) ([]*models.WatchlistEntry, error) {
	var entries []*models.WatchlistEntry
	if err := s.store.db.Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })
	return entries, nil
}
