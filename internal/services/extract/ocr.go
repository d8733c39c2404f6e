package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
)

// TesseractRecognizer rasterizes PDF pages with pdftoppm and feeds the
// images to the tesseract binary. Both tools must be on PATH; when
// either is missing every Recognize call fails and the caller keeps
// whatever text it already has.
type TesseractRecognizer struct {
	pdftoppmPath  string
	tesseractPath string
	logger        *common.Logger
	runCommand    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RecognizerOption configures the recognizer
type RecognizerOption func(*TesseractRecognizer)

// WithRecognizerLogger sets the logger
func WithRecognizerLogger(logger *common.Logger) RecognizerOption {
	return func(r *TesseractRecognizer) {
		r.logger = logger
	}
}

// withCommandRunner replaces subprocess execution, for tests.
func withCommandRunner(run func(ctx context.Context, name string, args ...string) ([]byte, error)) RecognizerOption {
	return func(r *TesseractRecognizer) {
		r.runCommand = run
	}
}

// NewTesseractRecognizer creates a new OCR recognizer
func NewTesseractRecognizer(opts ...RecognizerOption) *TesseractRecognizer {
	r := &TesseractRecognizer{
		pdftoppmPath:  "pdftoppm",
		tesseractPath: "tesseract",
		logger:        common.NewSilentLogger(),
	}
	r.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Recognize renders up to maxPages pages to PNG in a scratch directory
// and runs OCR over each image in page order.
func (r *TesseractRecognizer) Recognize(ctx context.Context, documentPath, language string, maxPages int) (*interfaces.RecognizeResult, error) {
	if language == "" {
		language = "eng"
	}
	if maxPages <= 0 {
		maxPages = 1
	}

	workDir, err := os.MkdirTemp("", "sentinel-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	prefix := filepath.Join(workDir, "page")
	_, err = r.runCommand(ctx, r.pdftoppmPath,
		"-png", "-r", "200",
		"-f", "1", "-l", fmt.Sprintf("%d", maxPages),
		documentPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize %s: %w", documentPath, err)
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("rasterization produced no pages for %s", documentPath)
	}
	sort.Strings(images)

	var sb strings.Builder
	processed := 0
	for _, image := range images {
		if processed >= maxPages {
			break
		}
		out, err := r.runCommand(ctx, r.tesseractPath, image, "stdout", "-l", language)
		if err != nil {
			r.logger.Debug().Str("image", image).Err(err).Msg("OCR page failed")
			continue
		}
		sb.Write(out)
		sb.WriteString("\n")
		processed++
	}

	return &interfaces.RecognizeResult{
		Text:           strings.TrimSpace(sb.String()),
		PagesProcessed: processed,
		EngineVersion:  r.engineVersion(ctx),
	}, nil
}

// engineVersion reports the tesseract version line, or "unknown" when
// the binary will not answer.
func (r *TesseractRecognizer) engineVersion(ctx context.Context) string {
	out, err := r.runCommand(ctx, r.tesseractPath, "--version")
	if err != nil {
		return "unknown"
	}
	lines := strings.SplitN(strings.TrimSpace(string(out)), "\n", 2)
	if len(lines) == 0 || lines[0] == "" {
		return "unknown"
	}
	return strings.TrimSpace(lines[0])
}

var _ interfaces.Recognizer = (*TesseractRecognizer)(nil)
