package interfaces

import (
	"context"

	"github.com/bobmcallan/sentinel/internal/models"
)

// ExtractResult is the text extractor's output for one document.
type ExtractResult struct {
	Text      string
	PageCount int
}

// RecognizeResult is the optical recognizer's output for one document.
type RecognizeResult struct {
	Text           string
	PagesProcessed int
	EngineVersion  string
}

// TextExtractor pulls machine-readable text from a downloaded document.
// Extraction is best-effort per page: a page that fails contributes no
// text but does not abort the document.
type TextExtractor interface {
	ExtractText(documentPath string) (*ExtractResult, error)
}

// Recognizer rasterizes a document and extracts text via OCR. It is the
// expensive fallback, invoked only when extracted text is too short.
type Recognizer interface {
	Recognize(ctx context.Context, documentPath, language string, maxPages int) (*RecognizeResult, error)
}

// SentimentScorer assigns a polarity score and confidence to a short text.
type SentimentScorer interface {
	Score(text string) models.SentimentScore
}

// SummaryResult is the summarizer's classification of a filing.
type SummaryResult struct {
	Category   models.FilingCategory
	Summary    string
	Confidence float64
}

// Summarizer categorizes and summarizes a filing from title and text.
type Summarizer interface {
	Summarize(title, text string) SummaryResult
}

// AnalyzeService runs the full per-symbol ingestion: filings, news, prices,
// under one run record. The returned result carries the run id even when
// the run failed; err is non-nil exactly when the run ended FAILED.
type AnalyzeService interface {
	Analyze(ctx context.Context, symbol string, lookbackDays int) (*models.AnalyzeResult, error)
}
