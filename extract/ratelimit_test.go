package extract_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/scrapemaster/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("different domains proceed independently", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(1)
		begin := time.Now()

		require.NoError(t, limiter.Wait(context.Background(), "a.example.com"))
		require.NoError(t, limiter.Wait(context.Background(), "b.example.com"))

		assert.Less(t, time.Since(begin), 500*time.Millisecond)
	})

	t.Run("throttles repeated requests to one domain", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(50)
		begin := time.Now()

		require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		assert.GreaterOrEqual(t, time.Since(begin), 10*time.Millisecond)
	})

	t.Run("returns error when context expires during wait", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(0.001)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx, "example.com")
		require.Error(t, err)
	})
}

func TestNewModelLimiter(t *testing.T) {
	t.Parallel()

	limiter := extract.NewModelLimiter(50)
	begin := time.Now()

	require.NoError(t, limiter.Wait(context.Background()))
	require.NoError(t, limiter.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(begin), 10*time.Millisecond)
}
