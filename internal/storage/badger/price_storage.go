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

type priceStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPriceStorage creates a new PriceStore backed by BadgerHold.
func NewPriceStorage(store *Store, logger *common.Logger) interfaces.PriceStore {
	return &priceStorage{store: store, logger: logger}
}

// UpsertBars writes bars keyed on (symbol, timestamp). Overlapping
// refetches land on the same keys, so repeat runs re-derive rather
// than duplicate.
func (s *priceStorage) UpsertBars(_ context.Context, symbol string, bars []models.PriceBar) (int, error) {
	persisted := 0
	for i := range bars {
		bar := bars[i]
		bar.Symbol = symbol
		bar.ID = symbol + "|" + bar.TS.UTC().Format(time.RFC3339)
		if err := s.store.db.Upsert(bar.ID, &bar); err != nil {
			return persisted, fmt.Errorf("failed to save price bar %s: %w", bar.ID, err)
		}
		persisted++
	}
	s.logger.Debug().Str("symbol", symbol).Int("bars", persisted).Msg("Price bars saved")
	return persisted, nil
}

func (s *priceStorage) ListByDateRange(_ context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	var bars []models.PriceBar
	err := s.store.db.Find(&bars,
		badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").And("TS").Ge(from).And("TS").Le(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list price bars for %s: %w", symbol, err)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].TS.Before(bars[j].TS) })
	return bars, nil
}
