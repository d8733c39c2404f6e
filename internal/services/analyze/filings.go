package analyze

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
	"github.com/bobmcallan/sentinel/internal/services/extract"
)

// announcedAtLayouts are the timestamp shapes the filing source emits.
var announcedAtLayouts = []string{
	"2006-01-02T15:04:05.00",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02 Jan 2006",
}

// ingestFilings runs the filing pipeline: list, then per announcement
// download, hash-dedup, extract, escalate, summarize, persist. Every
// per-announcement failure is caught and logged on the run; only the
// listing itself is fatal.
func (s *Service) ingestFilings(ctx context.Context, runID, symbol, scripCode string, from, to time.Time) (models.FilingStats, error) {
	stats := models.FilingStats{}

	announcements, err := s.deps.Filings.ListAnnouncements(ctx, scripCode, from, to)
	if err != nil {
		return stats, fmt.Errorf("failed to list announcements: %w", err)
	}
	stats.Fetched = len(announcements)

	for _, ann := range announcements {
		outcome, err := s.ingestOneFiling(ctx, runID, symbol, ann)
		if outcome.downloaded {
			stats.Downloaded++
		}
		switch {
		case err != nil:
			stats.Failed++
			s.runLog(ctx, runID, "ERROR", fmt.Sprintf("Filing ingest failed: %s (%v)", ann.Title, err))
			s.logger.Warn().Str("symbol", symbol).Str("title", ann.Title).Err(err).Msg("Filing ingest failed")
		case outcome.skipped:
			stats.SkippedExisting++
		default:
			stats.Persisted++
			if outcome.ocrUsed {
				stats.OCRUsed++
			}
		}
	}

	return stats, nil
}

type filingOutcome struct {
	downloaded bool
	skipped    bool
	ocrUsed    bool
}

func (s *Service) ingestOneFiling(ctx context.Context, runID, symbol string, ann models.Announcement) (filingOutcome, error) {
	var outcome filingOutcome

	if ann.PDFURL == "" {
		return outcome, fmt.Errorf("announcement has no document URL")
	}

	announcedAt := parseAnnouncedAt(ann.AnnouncedAt)
	dateDir := time.Now().Format("2006-01-02")
	if announcedAt != nil {
		dateDir = announcedAt.Format("2006-01-02")
	}
	baseDir := filepath.Join(s.storage.DataPath(), "filings", symbol, dateDir)

	stagedPath := filepath.Join(baseDir, "download.pdf")
	if err := s.deps.Downloader.Download(ctx, ann.PDFURL, stagedPath); err != nil {
		return outcome, fmt.Errorf("download failed: %w", err)
	}
	outcome.downloaded = true

	contentHash, err := hashFile(stagedPath)
	if err != nil {
		return outcome, fmt.Errorf("failed to hash document: %w", err)
	}

	exists, err := s.storage.Filings().Exists(ctx, symbol, contentHash)
	if err != nil {
		return outcome, err
	}
	if exists {
		os.Remove(stagedPath)
		outcome.skipped = true
		return outcome, nil
	}

	pdfPath := filepath.Join(baseDir, contentHash+".pdf")
	if err := os.Rename(stagedPath, pdfPath); err != nil {
		return outcome, fmt.Errorf("failed to move staged document: %w", err)
	}

	extracted, err := s.deps.Extractor.ExtractText(pdfPath)
	if err != nil {
		return outcome, fmt.Errorf("text extraction failed: %w", err)
	}
	text := strings.TrimSpace(extracted.Text)

	textSource := models.TextSourcePDF
	ocrPages := 0
	ocrVersion := ""
	if extract.NeedsRecognition(text, s.cfg.Pipeline.TextMinChars) {
		recognized, err := s.deps.Recognizer.Recognize(ctx, pdfPath, s.cfg.Pipeline.OCRLanguage, s.cfg.Pipeline.OCRMaxPages)
		if err != nil {
			return outcome, fmt.Errorf("recognition failed: %w", err)
		}
		// Empty OCR output keeps whatever short text extraction found.
		if strings.TrimSpace(recognized.Text) != "" {
			text = strings.TrimSpace(recognized.Text)
		}
		textSource = models.TextSourceOCR
		outcome.ocrUsed = true
		ocrPages = recognized.PagesProcessed
		ocrVersion = recognized.EngineVersion
	}

	summary, err := s.deps.Summarizer.SummarizeWithFallback(ctx, ann.Title, text)
	if err != nil {
		// An escalation failure downgrades to the rule result; the run
		// is told, the filing proceeds.
		s.runLog(ctx, runID, "WARN", fmt.Sprintf("Summary fallback failed: %s (%v)", ann.Title, err))
	}

	textPath := filepath.Join(baseDir, contentHash+".txt")
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return outcome, fmt.Errorf("failed to write text file: %w", err)
	}

	filing := &models.Filing{
		ID:          common.StableID(symbol, contentHash),
		Symbol:      symbol,
		AnnouncedAt: announcedAt,
		Title:       ann.Title,
		Category:    summary.Category,
		Summary:     summary.Summary,
		Confidence:  summary.Confidence,
		PDFURL:      ann.PDFURL,
		ContentHash: contentHash,
		TextSource:  textSource,
	}
	artifact := &models.FilingArtifact{
		ID:               common.StableID(filing.ID, "artifact"),
		PDFPath:          pdfPath,
		TextPath:         textPath,
		OCRUsed:          outcome.ocrUsed,
		OCRPages:         ocrPages,
		OCREngineVersion: ocrVersion,
	}

	if err := s.storage.Filings().Create(ctx, filing, artifact); err != nil {
		if err == interfaces.ErrFilingExists {
			// Lost the conditional insert to a concurrent identical
			// document; same terminal state as the fast-path skip.
			outcome.skipped = true
			return outcome, nil
		}
		return outcome, err
	}

	return outcome, nil
}

// hashFile returns the hex SHA-256 of a file's bytes.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// parseAnnouncedAt parses the source's timestamp string best-effort.
func parseAnnouncedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range announcedAtLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}
