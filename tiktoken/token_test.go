package tiktoken_test

import (
	"context"
	"testing"

	"github.com/fwojciec/scrapemaster"
	"github.com/fwojciec/scrapemaster/tiktoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	// Llama models are unknown to tiktoken; the counter must fall back
	// rather than fail.
	tc, err := tiktoken.NewTokenCounter("meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo")
	require.NoError(t, err)

	var _ scrapemaster.TokenCounter = tc

	t.Run("counts tokens in text", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "Hello, world!")

		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("longer text returns more tokens", func(t *testing.T) {
		t.Parallel()

		shortCount, err := tc.CountTokens(context.Background(), "Hello")
		require.NoError(t, err)

		longCount, err := tc.CountTokens(context.Background(), "Hello, this is a much longer piece of markdown that should have more tokens than just a single word.")
		require.NoError(t, err)

		assert.Greater(t, longCount, shortCount)
	})
}

func TestTokenCounter_KnownModel(t *testing.T) {
	t.Parallel()

	tc, err := tiktoken.NewTokenCounter("gpt-4o")
	require.NoError(t, err)

	count, err := tc.CountTokens(context.Background(), "token counting sanity check")
	require.NoError(t, err)
	assert.Positive(t, count)
}
