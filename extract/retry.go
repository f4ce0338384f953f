package extract

import (
	"context"
	"log/slog"
	"time"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// fetchWithRetry attempts a fetch with backoff delays between attempts,
// len(delays)+1 attempts in total. Passing explicit delays keeps tests fast.
func fetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= len(delays) {
			break
		}

		if logger != nil {
			logger.Warn("retrying fetch",
				"url", url,
				"attempt", attempt+2,
				"err", err,
			)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
