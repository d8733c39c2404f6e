package models

import "time"

// FilingCategory is the rule-engine classification of a filing.
type FilingCategory string

const (
	CategoryDividend     FilingCategory = "DIVIDEND"
	CategoryBoardMeeting FilingCategory = "BOARD_MEETING"
	CategoryResults      FilingCategory = "RESULTS"
	CategoryOrderWin     FilingCategory = "ORDER_WIN"
	CategoryCreditRating FilingCategory = "CREDIT_RATING"
	CategoryRegulatory   FilingCategory = "REGULATORY"
	CategoryOther        FilingCategory = "OTHER"
)

// TextSource tags which extraction stage supplied a filing's final text.
type TextSource string

const (
	TextSourcePDF TextSource = "pdf_text"
	TextSourceOCR TextSource = "ocr"
)

// Announcement is one row from a filing source listing, before download.
// AnnouncedAt is kept as the source's raw string; it is parsed best-effort
// at persistence time.
type Announcement struct {
	AnnouncedAt string `json:"announced_at,omitempty"`
	Title       string `json:"title"`
	PDFURL      string `json:"pdf_url"`
}

// Filing is a persisted regulatory filing. The ID is derived from
// (symbol, content hash), so a byte-identical document ingested twice
// lands on the same key: (symbol, hash) uniqueness falls out of the id.
type Filing struct {
	ID          string         `json:"id" badgerhold:"key"`
	Symbol      string         `json:"symbol" badgerhold:"index"`
	AnnouncedAt *time.Time     `json:"announced_at,omitempty"`
	Title       string         `json:"title"`
	Category    FilingCategory `json:"category"`
	Summary     string         `json:"summary"`
	Confidence  float64        `json:"confidence"`
	PDFURL      string         `json:"pdf_url"`
	ContentHash string         `json:"content_hash"`
	TextSource  TextSource     `json:"text_source"`
	CreatedAt   time.Time      `json:"created_at"`
}

// EffectiveDate returns the announcement time when known, else ingestion time.
func (f *Filing) EffectiveDate() time.Time {
	if f.AnnouncedAt != nil {
		return *f.AnnouncedAt
	}
	return f.CreatedAt
}

// FilingArtifact records where a filing's document and extracted text
// landed on disk, one-to-one with Filing.
type FilingArtifact struct {
	ID               string    `json:"id" badgerhold:"key"`
	FilingID         string    `json:"filing_id" badgerhold:"index"`
	PDFPath          string    `json:"pdf_path"`
	TextPath         string    `json:"text_path"`
	OCRUsed          bool      `json:"ocr_used"`
	OCRPages         int       `json:"ocr_pages"`
	OCREngineVersion string    `json:"ocr_engine_version,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
