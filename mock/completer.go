package mock

import (
	"context"

	"github.com/fwojciec/scrapemaster"
)

var _ scrapemaster.Completer = (*Completer)(nil)

// Completer is a mock implementation of scrapemaster.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, prompt string) (string, error)
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteFn(ctx, prompt)
}
