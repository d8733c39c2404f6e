// Package summarize classifies filings with an ordered rule cascade and
// optionally escalates low-confidence results to a language model.
package summarize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
)

// ModelFallbackThreshold is the rule confidence below which the model
// fallback is consulted, when one is configured.
const ModelFallbackThreshold = 0.55

// modelFallbackFloor is the minimum confidence assigned to a summary
// the model rewrote.
const modelFallbackFloor = 0.60

var (
	inrPattern        = regexp.MustCompile(`(?i)(?:₹|INR)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	dividendPattern   = regexp.MustCompile(`(?i)\bdividend\b`)
	boardPattern      = regexp.MustCompile(`(?i)\bboard meeting\b|\bmeeting of the board\b`)
	resultsPattern    = regexp.MustCompile(`(?i)\b(results?|financial results?)\b`)
	orderPattern      = regexp.MustCompile(`(?i)\border\b|\bcontract\b|\bwork order\b|\baward(ed)?\b`)
	ratingPattern     = regexp.MustCompile(`(?i)\bcredit rating\b|\brating\b|\bcrisil\b|\bcare\b|\bicra\b`)
	regulatoryPattern = regexp.MustCompile(`(?i)\bsebi\b|\bregulat(ory|ion)\b|\bcompliance\b`)
)

// RuleSummarizer applies the deterministic cascade; first match wins.
type RuleSummarizer struct{}

// NewRuleSummarizer creates a new rule-based summarizer
func NewRuleSummarizer() *RuleSummarizer {
	return &RuleSummarizer{}
}

// Summarize categorizes a filing from its title and extracted text.
func (s *RuleSummarizer) Summarize(title, text string) interfaces.SummaryResult {
	blob := strings.TrimSpace(title) + "\n" + strings.TrimSpace(text)

	if dividendPattern.MatchString(blob) {
		if amt := firstAmount(blob); amt != "" {
			return interfaces.SummaryResult{
				Category:   models.CategoryDividend,
				Summary:    fmt.Sprintf("Company declared a dividend of ₹%s per share.", amt),
				Confidence: 0.86,
			}
		}
		return interfaces.SummaryResult{
			Category:   models.CategoryDividend,
			Summary:    "Company announced a dividend.",
			Confidence: 0.62,
		}
	}

	if boardPattern.MatchString(blob) {
		return interfaces.SummaryResult{
			Category:   models.CategoryBoardMeeting,
			Summary:    "Company scheduled a board meeting to consider key corporate matters.",
			Confidence: 0.60,
		}
	}

	if resultsPattern.MatchString(blob) {
		return interfaces.SummaryResult{
			Category:   models.CategoryResults,
			Summary:    "Company announced an update related to its financial results.",
			Confidence: 0.58,
		}
	}

	if orderPattern.MatchString(blob) {
		if amt := firstAmount(blob); amt != "" {
			return interfaces.SummaryResult{
				Category:   models.CategoryOrderWin,
				Summary:    fmt.Sprintf("Company received an order worth ₹%s.", amt),
				Confidence: 0.70,
			}
		}
		return interfaces.SummaryResult{
			Category:   models.CategoryOrderWin,
			Summary:    "Company announced an order win / contract update.",
			Confidence: 0.55,
		}
	}

	if ratingPattern.MatchString(blob) {
		return interfaces.SummaryResult{
			Category:   models.CategoryCreditRating,
			Summary:    "Company shared an update related to its credit rating.",
			Confidence: 0.55,
		}
	}

	if regulatoryPattern.MatchString(blob) {
		return interfaces.SummaryResult{
			Category:   models.CategoryRegulatory,
			Summary:    "Company shared a regulatory / compliance update.",
			Confidence: 0.52,
		}
	}

	return interfaces.SummaryResult{
		Category:   models.CategoryOther,
		Summary:    "Company made a corporate announcement.",
		Confidence: 0.40,
	}
}

// firstAmount returns the first currency-prefixed number, commas stripped.
func firstAmount(text string) string {
	m := inrPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", "")
}

// NeedsModelFallback is the escalation predicate for the model rewrite.
func NeedsModelFallback(confidence float64) bool {
	return confidence < ModelFallbackThreshold
}

// FallbackSummarizer wraps the rule cascade with an optional model
// rewrite for low-confidence results. A model failure keeps the rule
// output; it is logged, never propagated.
type FallbackSummarizer struct {
	rules  *RuleSummarizer
	llm    interfaces.LLMClient
	logger *common.Logger
}

// NewFallbackSummarizer creates a summarizer with model escalation.
// llm may be nil, in which case the cascade output is always final.
func NewFallbackSummarizer(llm interfaces.LLMClient, logger *common.Logger) *FallbackSummarizer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &FallbackSummarizer{
		rules:  NewRuleSummarizer(),
		llm:    llm,
		logger: logger,
	}
}

// Summarize satisfies the Summarizer contract without escalation.
func (s *FallbackSummarizer) Summarize(title, text string) interfaces.SummaryResult {
	return s.rules.Summarize(title, text)
}

// SummarizeWithFallback runs the cascade and escalates to the model
// when the result is low-confidence. The returned result is always
// usable; a non-nil error reports a fallback failure the caller may
// want to record, with the rule output kept as the result.
func (s *FallbackSummarizer) SummarizeWithFallback(ctx context.Context, title, text string) (interfaces.SummaryResult, error) {
	result := s.rules.Summarize(title, text)
	if s.llm == nil || !NeedsModelFallback(result.Confidence) {
		return result, nil
	}

	summary, err := s.llm.SummarizeFiling(ctx, title, text)
	if err != nil {
		s.logger.Warn().Str("title", title).Err(err).Msg("Model summary fallback failed, keeping rule summary")
		return result, fmt.Errorf("model summary fallback failed: %w", err)
	}

	result.Summary = summary
	if result.Confidence < modelFallbackFloor {
		result.Confidence = modelFallbackFloor
	}
	return result, nil
}

var _ interfaces.Summarizer = (*RuleSummarizer)(nil)
var _ interfaces.Summarizer = (*FallbackSummarizer)(nil)
