// Package extract pulls text out of downloaded filing documents, with
// an optical-recognition fallback for scanned PDFs.
package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
)

// MinTextChars is the threshold below which extracted text is treated
// as unusable and the recognizer is consulted instead. Scanned PDFs
// typically yield zero or a few stray characters.
const MinTextChars = 250

// PDFExtractor reads embedded text from PDF files.
type PDFExtractor struct {
	logger *common.Logger
}

// ExtractorOption configures the extractor
type ExtractorOption func(*PDFExtractor)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ExtractorOption {
	return func(e *PDFExtractor) {
		e.logger = logger
	}
}

// NewPDFExtractor creates a new PDF text extractor
func NewPDFExtractor(opts ...ExtractorOption) *PDFExtractor {
	e := &PDFExtractor{
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ExtractText concatenates the plain text of every page. A page whose
// decode fails contributes nothing; only a file-level failure is an
// error.
func (e *PDFExtractor) ExtractText(documentPath string) (*interfaces.ExtractResult, error) {
	f, reader, err := pdf.Open(documentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", documentPath, err)
	}
	defer f.Close()

	var sb strings.Builder
	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Debug().Str("path", documentPath).Int("page", i).Err(err).Msg("Page text extraction failed")
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return &interfaces.ExtractResult{
		Text:      strings.TrimSpace(sb.String()),
		PageCount: pageCount,
	}, nil
}

// NeedsRecognition reports whether extracted text is too sparse to be
// the document's real content. minChars <= 0 applies MinTextChars.
func NeedsRecognition(text string, minChars int) bool {
	if minChars <= 0 {
		minChars = MinTextChars
	}
	return len(strings.TrimSpace(text)) < minChars
}

var _ interfaces.TextExtractor = (*PDFExtractor)(nil)
