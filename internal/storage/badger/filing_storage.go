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

type filingStorage struct {
	store  *Store
	logger *common.Logger
}

// NewFilingStorage creates a new FilingStore backed by BadgerHold.
func NewFilingStorage(store *Store, logger *common.Logger) interfaces.FilingStore {
	return &filingStorage{store: store, logger: logger}
}

func (s *filingStorage) Exists(_ context.Context, symbol, contentHash string) (bool, error) {
	count, err := s.store.db.Count(models.Filing{},
		badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").And("ContentHash").Eq(contentHash))
	if err != nil {
		return false, fmt.Errorf("failed to check filing existence for %s: %w", symbol, err)
	}
	return count > 0, nil
}

// Create inserts the filing and its artifact. The filing key is derived
// from (symbol, content hash), so Insert doubles as the atomic dedup
// check: a concurrent identical document loses with ErrFilingExists.
func (s *filingStorage) Create(_ context.Context, filing *models.Filing, artifact *models.FilingArtifact) error {
	if filing.ID == "" {
		return fmt.Errorf("filing id is required")
	}
	if filing.CreatedAt.IsZero() {
		filing.CreatedAt = time.Now()
	}

	if err := s.store.db.Insert(filing.ID, filing); err != nil {
		if err == badgerhold.ErrKeyExists {
			return interfaces.ErrFilingExists
		}
		return fmt.Errorf("failed to insert filing %s: %w", filing.ID, err)
	}

	if artifact != nil {
		if artifact.ID == "" {
			artifact.ID = common.NewID()
		}
		artifact.FilingID = filing.ID
		if artifact.CreatedAt.IsZero() {
			artifact.CreatedAt = time.Now()
		}
		if err := s.store.db.Upsert(artifact.ID, artifact); err != nil {
			return fmt.Errorf("failed to insert artifact for filing %s: %w", filing.ID, err)
		}
	}

	s.logger.Debug().Str("filing_id", filing.ID).Str("symbol", filing.Symbol).Msg("Filing persisted")
	return nil
}

func (s *filingStorage) Get(_ context.Context, id string) (*models.Filing, error) {
	var filing models.Filing
	err := s.store.db.Get(id, &filing)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get filing %s: %w", id, err)
	}
	return &filing, nil
}

func (s *filingStorage) GetArtifact(_ context.Context, filingID string) (*models.FilingArtifact, error) {
	var artifacts []models.FilingArtifact
	err := s.store.db.Find(&artifacts, badgerhold.Where("FilingID").Eq(filingID).Index("FilingID"))
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact for filing %s: %w", filingID, err)
	}
	if len(artifacts) == 0 {
		return nil, nil
	}
	return &artifacts[0], nil
}

// ListByDateRange returns the symbol's filings whose effective date
// falls in [from, to], oldest first. The effective date prefers the
// announcement timestamp and falls back to ingestion time, so the
// filter runs in memory rather than on an index.
func (s *filingStorage) ListByDateRange(_ context.Context, symbol string, from, to time.Time) ([]models.Filing, error) {
	var all []models.Filing
	err := s.store.db.Find(&all, badgerhold.Where("Symbol").Eq(symbol).Index("Symbol"))
	if err != nil {
		return nil, fmt.Errorf("failed to list filings for %s: %w", symbol, err)
	}

	filings := make([]models.Filing, 0, len(all))
	for _, f := range all {
		d := f.EffectiveDate()
		if !d.Before(from) && !d.After(to) {
			filings = append(filings, f)
		}
	}
	sort.Slice(filings, func(i, j int) bool {
		return filings[i].EffectiveDate().Before(filings[j].EffectiveDate())
	})
	return filings, nil
}
