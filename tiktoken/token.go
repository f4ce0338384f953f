// Package tiktoken implements the token counter for OpenAI-compatible
// providers. Together and Groq serve Llama-family models whose tokenizers
// are not published through tiktoken, so counts fall back to cl100k_base;
// the approximation is close enough for context budgeting.
package tiktoken

import (
	"context"

	"github.com/fwojciec/scrapemaster"
	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

var _ scrapemaster.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens with a cached tiktoken encoder. Encoding is
// pure CPU work; the counter is safe for concurrent use.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter creates a TokenCounter for the given model, falling back
// to the cl100k_base encoding when the model is unknown to tiktoken.
func NewTokenCounter(model string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	return &TokenCounter{enc: enc}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return len(tc.enc.Encode(text, nil, nil)), nil
}
