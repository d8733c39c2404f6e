package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmpty(t *testing.T) {
	s := NewScorer()
	result := s.Score("")
	assert.Zero(t, result.Score)
	assert.Zero(t, result.Confidence)

	result = s.Score("   \n ")
	assert.Zero(t, result.Score)
	assert.Zero(t, result.Confidence)
}

func TestScoreBounds(t *testing.T) {
	s := NewScorer()
	for _, text := range []string{
		"Company reports record profit, stock surges on strong growth",
		"Regulator opens fraud probe, shares slump after heavy loss",
		"Board meeting scheduled for next Tuesday",
		"Quarterly numbers mixed as margins hold",
	} {
		result := s.Score(text)
		assert.GreaterOrEqual(t, result.Score, -1.0, text)
		assert.LessOrEqual(t, result.Score, 1.0, text)
		assert.GreaterOrEqual(t, result.Confidence, 0.0, text)
		assert.LessOrEqual(t, result.Confidence, 1.0, text)
	}
}

func TestScorePolarityDirection(t *testing.T) {
	s := NewScorer()
	pos := s.Score("Company wins record order, profit surges on strong growth")
	neg := s.Score("Shares slump after fraud probe and heavy penalty")
	assert.Greater(t, pos.Score, 0.0)
	assert.Less(t, neg.Score, 0.0)
	assert.Greater(t, pos.Score, neg.Score)
}

func TestLexiconScore(t *testing.T) {
	result := lexiconScore("Company wins big order and declares dividend")
	// win(s), order, dividend = 3 positive, 0 negative.
	assert.InDelta(t, 0.7615941559, result.Score, 1e-6) // tanh(1)
	assert.InDelta(t, 0.65, result.Confidence, 1e-9)

	result = lexiconScore("Heavy loss and penalty after fraud probe")
	assert.Less(t, result.Score, 0.0)

	result = lexiconScore("the quick brown fox")
	assert.Zero(t, result.Score)
	assert.InDelta(t, 0.2, result.Confidence, 1e-9)
}

func TestLexiconConfidenceCap(t *testing.T) {
	result := lexiconScore("surge rally beats wins award order dividend record upgrade strong")
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
	assert.Greater(t, result.Score, 0.9)
}

func TestClip(t *testing.T) {
	assert.Equal(t, 0.2, clip(0.2, 1.0, 0.05))
	assert.Equal(t, 1.0, clip(0.2, 1.0, 3.0))
	assert.Equal(t, 0.5, clip(0.2, 1.0, 0.5))
}
