// Package gemini implements the model client and token counter using
// Google Gemini.
package gemini

import (
	"context"
	"errors"
	"net/http"

	"github.com/fwojciec/scrapemaster"
	"google.golang.org/genai"
)

// Ensure Completer implements scrapemaster.Completer at compile time.
var _ scrapemaster.Completer = (*Completer)(nil)

// Completer sends extraction prompts to the Gemini API.
type Completer struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
}

// NewCompleter creates a new Completer.
func NewCompleter(client *genai.Client, cfg scrapemaster.Config) *Completer {
	return &Completer{
		client:          client,
		model:           cfg.Model,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}
}

// Complete sends the prompt and returns the raw text completion.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(c.maxOutputTokens),
	)
	if err != nil {
		return "", mapError(err)
	}
	if result == nil {
		return "", scrapemaster.Errorf(scrapemaster.EMODEL, "gemini returned nil result")
	}
	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls. The
// extraction role lives in the system instruction; a low temperature keeps
// completions near-deterministic.
func BuildConfig(maxOutputTokens int32) *genai.GenerateContentConfig {
	temp := float32(0.1)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: scrapemaster.SystemPrompt()}},
		},
		Temperature: &temp,
	}
	if maxOutputTokens > 0 {
		cfg.MaxOutputTokens = maxOutputTokens
	}
	return cfg
}

// mapError shapes Gemini API failures into the pipeline's error taxonomy.
// Credential and quota failures are EUNAUTHORIZED and abort the whole run;
// other API errors are EMODEL and degrade a single chunk.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return scrapemaster.Errorf(scrapemaster.EUNAUTHORIZED, "gemini rejected credentials or quota (status %d): %v", apiErr.Code, err)
		default:
			return scrapemaster.Errorf(scrapemaster.EMODEL, "gemini error (status %d): %v", apiErr.Code, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return scrapemaster.Errorf(scrapemaster.EUNAVAILABLE, "gemini unreachable: %v", err)
}
