package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scrapemaster"
)

// Ensure LoggingCompleter implements scrapemaster.Completer.
var _ scrapemaster.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with logging of model call sizes and
// timings.
type LoggingCompleter struct {
	next   scrapemaster.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next scrapemaster.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs the outcome.
func (c *LoggingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	begin := time.Now()
	raw, err := c.next.Complete(ctx, prompt)
	if err != nil {
		c.logger.Error("model call",
			"prompt_bytes", len(prompt),
			"duration", time.Since(begin),
			"code", scrapemaster.ErrorCode(err),
			"err", err,
		)
		return "", err
	}
	c.logger.Info("model call",
		"prompt_bytes", len(prompt),
		"completion_bytes", len(raw),
		"duration", time.Since(begin),
	)
	return raw, nil
}
