// Package sentiment scores headline polarity for mood aggregation.
package sentiment

import (
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
)

var positiveWords = map[string]bool{
	"surge": true, "rally": true, "beats": true, "beat": true,
	"wins": true, "win": true, "award": true, "order": true,
	"dividend": true, "record": true, "upgrade": true, "strong": true,
	"growth": true, "profit": true,
}

var negativeWords = map[string]bool{
	"fall": true, "drops": true, "drop": true, "slump": true,
	"weak": true, "downgrade": true, "loss": true, "probe": true,
	"fraud": true, "penalty": true, "fine": true, "shutdown": true,
	"miss": true, "misses": true,
}

var wordPattern = regexp.MustCompile(`[A-Za-z]+`)

// Scorer scores text with a VADER model, falling back to a small fixed
// lexicon when the model yields nothing usable. The fallback exists so
// headline ingestion never depends on model availability.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer creates a new sentiment scorer
func NewScorer() *Scorer {
	return &Scorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Score returns a polarity in [-1, 1] with a confidence in [0, 1].
// Empty input yields zero score at zero confidence.
func (s *Scorer) Score(text string) models.SentimentScore {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.SentimentScore{}
	}

	if s.analyzer != nil {
		result := s.analyzer.PolarityScores(text)
		// A headline with no scored tokens comes back fully neutral with
		// zero compound; the lexicon gets a chance at those.
		if result.Compound != 0 || result.Neutral < 1 {
			subjectivity := 1.0 - result.Neutral
			confidence := clip(0.2, 1.0, (1.0-subjectivity)*0.9+0.1)
			return models.SentimentScore{
				Score:      clip(-1.0, 1.0, result.Compound),
				Confidence: confidence,
			}
		}
	}

	return lexiconScore(text)
}

// lexiconScore counts overlap with the fixed word sets.
func lexiconScore(text string) models.SentimentScore {
	words := map[string]bool{}
	for _, w := range wordPattern.FindAllString(text, -1) {
		words[strings.ToLower(w)] = true
	}

	pos, neg := 0, 0
	for w := range words {
		if positiveWords[w] {
			pos++
		}
		if negativeWords[w] {
			neg++
		}
	}

	raw := float64(pos - neg)
	return models.SentimentScore{
		Score:      clip(-1.0, 1.0, math.Tanh(raw/3.0)),
		Confidence: math.Min(0.7, 0.2+0.15*float64(pos+neg)),
	}
}

func clip(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

var _ interfaces.SentimentScorer = (*Scorer)(nil)
