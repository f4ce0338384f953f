// Package openai implements the model client over OpenAI-compatible chat
// completion endpoints. Together and Groq both expose this API surface,
// so a single implementation covers both providers via the base URL.
package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/fwojciec/scrapemaster"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// extractionTemperature keeps completions near-deterministic; the prompt
// contract leaves no room for creativity.
const extractionTemperature = 0.1

// Ensure Completer implements scrapemaster.Completer at compile time.
var _ scrapemaster.Completer = (*Completer)(nil)

// Completer sends extraction prompts to an OpenAI-compatible chat
// completions endpoint. Each call is independent and the Completer holds
// no mutable state, so it is safe for concurrent use.
type Completer struct {
	client          openai.Client
	model           string
	maxOutputTokens int64
}

// NewCompleter creates a Completer from the extraction configuration.
// Additional request options are applied after the configuration-derived
// ones and can override them.
func NewCompleter(cfg scrapemaster.Config, extra ...option.RequestOption) *Completer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)
	return &Completer{
		client:          openai.NewClient(opts...),
		model:           cfg.Model,
		maxOutputTokens: int64(cfg.MaxOutputTokens),
	}
}

// Complete sends the prompt and returns the raw text completion. The
// system message restates the extraction role on every request; there is
// no conversation memory between chunks.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(scrapemaster.SystemPrompt()),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(extractionTemperature),
		MaxTokens:   openai.Int(c.maxOutputTokens),
	})
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", scrapemaster.Errorf(scrapemaster.EMODEL, "model %q returned no choices", c.model)
	}
	return resp.Choices[0].Message.Content, nil
}

// mapError shapes endpoint failures into the pipeline's error taxonomy:
// bad keys and exhausted quotas are EUNAUTHORIZED (fatal for the whole
// run), endpoint-reported failures are EMODEL (degrade one chunk), and
// anything transport-level is EUNAVAILABLE. Context cancellation passes
// through untouched.
func mapError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusPaymentRequired, http.StatusTooManyRequests:
			return scrapemaster.Errorf(scrapemaster.EUNAUTHORIZED, "model endpoint rejected credentials or quota (status %d): %v", apierr.StatusCode, err)
		default:
			return scrapemaster.Errorf(scrapemaster.EMODEL, "model endpoint error (status %d): %v", apierr.StatusCode, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return scrapemaster.Errorf(scrapemaster.EUNAVAILABLE, "model endpoint unreachable: %v", err)
}
