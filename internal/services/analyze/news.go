package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/models"
)

// ingestNews runs the news pipeline: fetch, score and upsert each
// headline independently, then rebuild the daily mood aggregate for
// every day this batch touched. Per-headline failures are run warnings;
// only the feed fetch is fatal.
func (s *Service) ingestNews(ctx context.Context, runID, symbol, companyName string) (models.NewsStats, error) {
	stats := models.NewsStats{}

	query := fmt.Sprintf("%s %s stock", symbol, companyName)
	items, err := s.deps.News.Search(ctx, query, s.cfg.Clients.News.Limit)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch news: %w", err)
	}
	stats.Fetched = len(items)

	touchedDays := map[string]bool{}
	for _, item := range items {
		if err := s.ingestOneHeadline(ctx, symbol, item, touchedDays); err != nil {
			stats.Failed++
			s.runLog(ctx, runID, "WARN", fmt.Sprintf("News ingest failed: %s (%v)", item.Title, err))
			continue
		}
		stats.Persisted++
	}

	for day := range touchedDays {
		if err := s.rebuildDailyMood(ctx, symbol, day); err != nil {
			s.runLog(ctx, runID, "WARN", fmt.Sprintf("Mood aggregation failed for %s (%v)", day, err))
		}
	}

	return stats, nil
}

func (s *Service) ingestOneHeadline(ctx context.Context, symbol string, item models.NewsItem, touchedDays map[string]bool) error {
	score := s.deps.Scorer.Score(item.Title)

	headline := &models.Headline{
		ID:          common.StableID(symbol, item.URL),
		Symbol:      symbol,
		PublishedAt: item.PublishedAt,
		Source:      item.Source,
		Title:       item.Title,
		URL:         item.URL,
		MoodScore:   score.Score,
		Confidence:  score.Confidence,
	}
	if err := s.storage.Headlines().Upsert(ctx, headline); err != nil {
		return err
	}

	if item.PublishedAt != nil {
		touchedDays[item.PublishedAt.UTC().Format("2006-01-02")] = true
	}
	return nil
}

// rebuildDailyMood recomputes one day's aggregate from every persisted
// headline on that day, not just this batch's, so earlier runs keep
// contributing to the mean.
func (s *Service) rebuildDailyMood(ctx context.Context, symbol, day string) error {
	dayStart, err := time.Parse("2006-01-02", day)
	if err != nil {
		return err
	}
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	headlines, err := s.storage.Headlines().ListByDateRange(ctx, symbol, dayStart, dayEnd)
	if err != nil {
		return err
	}
	if len(headlines) == 0 {
		return nil
	}

	mood := &models.MoodDaily{Symbol: symbol, Date: day}
	var sum float64
	for _, h := range headlines {
		// Undated headlines range-match on their ingestion time; they
		// carry no publish day and never count toward a day's mood.
		if h.PublishedAt == nil {
			continue
		}
		sum += h.MoodScore
		mood.MoodCount++
		if h.MoodScore > 0 {
			mood.MoodPos++
		}
		if h.MoodScore < 0 {
			mood.MoodNeg++
		}
	}
	if mood.MoodCount == 0 {
		return nil
	}
	mood.MoodAvg = sum / float64(mood.MoodCount)

	return s.storage.Mood().Upsert(ctx, mood)
}
