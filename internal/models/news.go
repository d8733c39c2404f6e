package models

import "time"

// NewsItem is a headline from a news source, before scoring.
type NewsItem struct {
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
}

// SentimentScore is a polarity score with a confidence estimate.
type SentimentScore struct {
	Score      float64 `json:"score"`      // [-1, 1]
	Confidence float64 `json:"confidence"` // [0, 1]
}

// Headline is a persisted, scored headline. The ID is derived from
// (symbol, URL): re-ingesting the same link overwrites the same row.
type Headline struct {
	ID          string     `json:"id" badgerhold:"key"`
	Symbol      string     `json:"symbol" badgerhold:"index"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	MoodScore   float64    `json:"mood_score"`
	Confidence  float64    `json:"confidence"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EffectiveDate returns the publish time when known, else ingestion time.
func (h *Headline) EffectiveDate() time.Time {
	if h.PublishedAt != nil {
		return *h.PublishedAt
	}
	return h.CreatedAt
}

// MoodDaily is the aggregate sentiment for a symbol on one calendar day,
// always re-derived from the full set of that day's persisted headlines.
type MoodDaily struct {
	ID        string  `json:"-" badgerhold:"key"` // symbol|date
	Symbol    string  `json:"symbol" badgerhold:"index"`
	Date      string  `json:"date"` // 2006-01-02
	MoodAvg   float64 `json:"mood_avg"`
	MoodCount int     `json:"mood_count"`
	MoodPos   int     `json:"mood_pos"`
	MoodNeg   int     `json:"mood_neg"`
}
