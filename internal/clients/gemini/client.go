// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
)

const (
	DefaultModel = "gemini-2.0-flash"

	// maxInputChars caps the filing text sent to the model.
	maxInputChars = 8000

	// maxSummaryChars caps the returned summary line.
	maxSummaryChars = 280
)

// Client implements the LLMClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SummarizeFiling asks the model for a one-sentence factual summary of
// a regulatory filing. The response is collapsed to a single line and
// truncated to a headline-sized length.
func (c *Client) SummarizeFiling(ctx context.Context, title, text string) (string, error) {
	text = truncateRunes(text, maxInputChars)

	prompt := fmt.Sprintf(
		"Summarize this Indian stock exchange filing in one factual sentence. "+
			"State the key corporate action, amounts and dates. No speculation, no preamble.\n\n"+
			"Title: %s\n\nFiling text:\n%s",
		title, text)

	c.logger.Debug().Str("model", c.model).Int("input_chars", len(text)).Msg("Requesting filing summary")

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := collapseLine(resp.Text())
	if summary == "" {
		return "", fmt.Errorf("model returned empty summary")
	}
	if truncated := truncateRunes(summary, maxSummaryChars); truncated != summary {
		summary = truncated + "..."
	}
	return summary, nil
}

// collapseLine flattens whitespace runs and newlines into single spaces.
func collapseLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes caps s at max characters. Cutting by rune keeps
// multi-byte text (₹ amounts, Devanagari names) valid UTF-8.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

var _ interfaces.LLMClient = (*Client)(nil)
