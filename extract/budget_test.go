package extract_test

import (
	"testing"

	"github.com/fwojciec/scrapemaster/extract"
	"github.com/stretchr/testify/assert"
)

func TestChunkBudget(t *testing.T) {
	t.Parallel()

	t.Run("reserves completion and prompt overhead", func(t *testing.T) {
		t.Parallel()

		got := extract.ChunkBudget(8000, 1000, 600, 4.0)
		assert.Equal(t, 25600, got)
	})

	t.Run("zero when window too small", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, extract.ChunkBudget(1000, 900, 600, 4.0))
		assert.Zero(t, extract.ChunkBudget(8000, 1000, 600, 0))
	})
}
