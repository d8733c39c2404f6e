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

type headlineStorage struct {
	store  *Store
	logger *common.Logger
}

// NewHeadlineStorage creates a new HeadlineStore backed by BadgerHold.
func NewHeadlineStorage(store *Store, logger *common.Logger) interfaces.HeadlineStore {
	return &headlineStorage{store: store, logger: logger}
}

func (s *headlineStorage) Upsert(_ context.Context, headline *models.Headline) error {
	if headline.ID == "" {
		return fmt.Errorf("headline id is required")
	}
	if headline.CreatedAt.IsZero() {
		headline.CreatedAt = time.Now()
	}
	if err := s.store.db.Upsert(headline.ID, headline); err != nil {
		return fmt.Errorf("failed to save headline %s: %w", headline.ID, err)
	}
	return nil
}

func (s *headlineStorage) ListByDateRange(_ context.Context, symbol string, from, to time.Time) ([]models.Headline, error) {
	var all []models.Headline
	err := s.store.db.Find(&all, badgerhold.Where("Symbol").Eq(symbol).Index("Symbol"))
	if err != nil {
		return nil, fmt.Errorf("failed to list headlines for %s: %w", symbol, err)
	}

	headlines := make([]models.Headline, 0, len(all))
	for _, h := range all {
		d := h.EffectiveDate()
		if !d.Before(from) && !d.After(to) {
			headlines = append(headlines, h)
		}
	}
	sort.Slice(headlines, func(i, j int) bool {
		return headlines[i].EffectiveDate().Before(headlines[j].EffectiveDate())
	})
	return headlines, nil
}

type moodStorage struct {
	store  *Store
	logger *common.Logger
}

// NewMoodStorage creates a new MoodStore backed by BadgerHold.
func NewMoodStorage(store *Store, logger *common.Logger) interfaces.MoodStore {
	return &moodStorage{store: store, logger: logger}
}

func (s *moodStorage) Upsert(_ context.Context, mood *models.MoodDaily) error {
	if mood.Symbol == "" || mood.Date == "" {
		return fmt.Errorf("mood symbol and date are required")
	}
	mood.ID = mood.Symbol + "|" + mood.Date
	if err := s.store.db.Upsert(mood.ID, mood); err != nil {
		return fmt.Errorf("failed to save mood %s: %w", mood.ID, err)
	}
	s.logger.Debug().Str("symbol", mood.Symbol).Str("date", mood.Date).Int("count", mood.MoodCount).Msg("Daily mood saved")
	return nil
}

func (s *moodStorage) ListByDateRange(_ context.Context, symbol string, from, to time.Time) ([]models.MoodDaily, error) {
	fromDate := from.Format("2006-01-02")
	toDate := to.Format("2006-01-02")

	var moods []models.MoodDaily
	err := s.store.db.Find(&moods,
		badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").And("Date").Ge(fromDate).And("Date").Le(toDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list mood for %s: %w", symbol, err)
	}
	sort.Slice(moods, func(i, j int) bool { return moods[i].Date < moods[j].Date })
	return moods, nil
}
