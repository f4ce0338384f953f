package extract_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/scrapemaster"
	"github.com/fwojciec/scrapemaster/extract"
	"github.com/fwojciec/scrapemaster/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contactSchema = scrapemaster.FieldSchema{"name", "email", "phone number"}

// noRetries disables fetch backoff so failure tests run instantly.
var noRetries = []time.Duration{}

// passthrough returns collaborators that hand content through unchanged.
func passthrough() (*mock.Cleaner, *mock.Converter) {
	cleaner := &mock.Cleaner{CleanFn: func(html string) (string, error) { return html, nil }}
	converter := &mock.Converter{ConvertFn: func(html string) (string, error) { return html, nil }}
	return cleaner, converter
}

func TestExtractor_Run(t *testing.T) {
	t.Parallel()

	t.Run("merges partial records across chunks", func(t *testing.T) {
		t.Parallel()

		// Two paragraphs sized so the chunker splits between them.
		page := "PART-ONE alpha.\n\nPART-TWO beta."
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) { return page, nil },
		}
		cleaner, converter := passthrough()
		completer := &mock.Completer{
			CompleteFn: func(ctx context.Context, prompt string) (string, error) {
				if strings.Contains(prompt, "PART-ONE") {
					return `[{"name":"Ann Kowalska","email":"","phone number":"+48 123 456 789"}]`, nil
				}
				return `[{"name":"Ann Kowalska","email":"ann@example.com","phone number":""}]`, nil
			},
		}

		e := &extract.Extractor{
			Fetcher:     fetcher,
			Cleaner:     cleaner,
			Converter:   converter,
			Completer:   completer,
			Schema:      contactSchema,
			ChunkSize:   20,
			RetryDelays: noRetries,
		}

		result, buckets, err := e.Run(context.Background(), []string{"https://example.com/contact"}, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Pages)
		assert.Equal(t, 0, result.Failed)
		assert.Equal(t, 1, result.Records)

		require.Len(t, buckets, 1)
		assert.Equal(t, "example.com", buckets[0].Domain)
		require.Len(t, buckets[0].Pages, 1)
		pr := buckets[0].Pages[0]
		assert.Equal(t, 2, pr.Chunks)
		assert.Zero(t, pr.FailedChunks)
		assert.NotEmpty(t, pr.ContentHash)
		require.Len(t, pr.Records, 1)
		rec := pr.Records[0]
		assert.Equal(t, "Ann Kowalska", rec.Get("name"))
		assert.Equal(t, "ann@example.com", rec.Get("email"))
		assert.Equal(t, "+48 123 456 789", rec.Get("phone number"))
	})

	t.Run("chunk model failure degrades to empty chunk", func(t *testing.T) {
		t.Parallel()

		page := "PART-ONE alpha.\n\nPART-TWO beta."
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) { return page, nil },
		}
		cleaner, converter := passthrough()
		completer := &mock.Completer{
			CompleteFn: func(ctx context.Context, prompt string) (string, error) {
				if strings.Contains(prompt, "PART-TWO") {
					return "", scrapemaster.Errorf(scrapemaster.EMODEL, "overloaded")
				}
				return `[{"name":"Jan Nowak","email":"jan@example.com","phone number":""}]`, nil
			},
		}

		e := &extract.Extractor{
			Fetcher:     fetcher,
			Cleaner:     cleaner,
			Converter:   converter,
			Completer:   completer,
			Schema:      contactSchema,
			ChunkSize:   20,
			RetryDelays: noRetries,
		}

		result, buckets, err := e.Run(context.Background(), []string{"https://example.com/team"}, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Pages)
		assert.Equal(t, 1, result.Records)
		require.Len(t, buckets, 1)
		pr := buckets[0].Pages[0]
		assert.Equal(t, 1, pr.FailedChunks)
		require.Len(t, pr.Records, 1)
		assert.Equal(t, "Jan Nowak", pr.Records[0].Get("name"))
	})

	t.Run("credential rejection aborts the run", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) { return "content", nil },
		}
		cleaner, converter := passthrough()
		completer := &mock.Completer{
			CompleteFn: func(ctx context.Context, prompt string) (string, error) {
				return "", scrapemaster.Errorf(scrapemaster.EUNAUTHORIZED, "invalid api key")
			},
		}

		e := &extract.Extractor{
			Fetcher:     fetcher,
			Cleaner:     cleaner,
			Converter:   converter,
			Completer:   completer,
			Schema:      contactSchema,
			RetryDelays: noRetries,
		}

		urls := []string{"https://a.example.com/", "https://b.example.com/"}
		_, _, err := e.Run(context.Background(), urls, nil)

		require.Error(t, err)
		assert.Equal(t, scrapemaster.EUNAUTHORIZED, scrapemaster.ErrorCode(err))
	})

	t.Run("fetch failure skips only the failing url", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				if strings.Contains(url, "down.example.com") {
					return "", scrapemaster.Errorf(scrapemaster.EFETCH, "connection refused")
				}
				return "PART-ONE alpha.", nil
			},
		}
		cleaner, converter := passthrough()
		completer := &mock.Completer{
			CompleteFn: func(ctx context.Context, prompt string) (string, error) {
				return `[{"name":"Ann","email":"ann@example.com","phone number":""}]`, nil
			},
		}

		e := &extract.Extractor{
			Fetcher:     fetcher,
			Cleaner:     cleaner,
			Converter:   converter,
			Completer:   completer,
			Schema:      contactSchema,
			RetryDelays: noRetries,
		}

		var (
			mu     sync.Mutex
			failed []string
		)
		progress := func(ev extract.ProgressEvent) {
			if ev.Type == extract.ProgressFailed {
				mu.Lock()
				failed = append(failed, ev.URL)
				mu.Unlock()
			}
		}

		urls := []string{"https://down.example.com/", "https://up.example.com/contact"}
		result, buckets, err := e.Run(context.Background(), urls, progress)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, result.Pages)
		assert.Equal(t, []string{"https://down.example.com/"}, failed)
		require.Len(t, buckets, 1)
		assert.Equal(t, "up.example.com", buckets[0].Domain)
	})

	t.Run("retries fetch before giving up", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int64
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				if attempts.Add(1) < 3 {
					return "", scrapemaster.Errorf(scrapemaster.EFETCH, "flaky")
				}
				return "PART-ONE alpha.", nil
			},
		}
		cleaner, converter := passthrough()
		completer := &mock.Completer{
			CompleteFn: func(ctx context.Context, prompt string) (string, error) { return "[]", nil },
		}

		e := &extract.Extractor{
			Fetcher:     fetcher,
			Cleaner:     cleaner,
			Converter:   converter,
			Completer:   completer,
			Schema:      contactSchema,
			RetryDelays: []time.Duration{0, 0, 0},
		}

		result, _, err := e.Run(context.Background(), []string{"https://example.com/"}, nil)
		require.NoError(t, err)

		assert.Equal(t, int64(3), attempts.Load())
		assert.Equal(t, 1, result.Pages)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("empty page yields zero-record page result", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) { return "   \n\t", nil },
		}
		cleaner, converter := passthrough()
		var calls atomic.Int64
		completer := &mock.Completer{
			CompleteFn: func(ctx context.Context, prompt string) (string, error) {
				calls.Add(1)
				return "[]", nil
			},
		}

		e := &extract.Extractor{
			Fetcher:     fetcher,
			Cleaner:     cleaner,
			Converter:   converter,
			Completer:   completer,
			Schema:      contactSchema,
			RetryDelays: noRetries,
		}

		result, buckets, err := e.Run(context.Background(), []string{"https://example.com/empty"}, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Pages)
		assert.Equal(t, 0, result.Records)
		assert.Zero(t, calls.Load(), "no model calls for empty pages")
		require.Len(t, buckets, 1)
		require.Len(t, buckets[0].Pages, 1)
		assert.Empty(t, buckets[0].Pages[0].Records)
	})

	t.Run("reports progress lifecycle", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) { return "PART-ONE alpha.", nil },
		}
		cleaner, converter := passthrough()
		completer := &mock.Completer{
			CompleteFn: func(ctx context.Context, prompt string) (string, error) { return "[]", nil },
		}

		e := &extract.Extractor{
			Fetcher:     fetcher,
			Cleaner:     cleaner,
			Converter:   converter,
			Completer:   completer,
			Schema:      contactSchema,
			RetryDelays: noRetries,
		}

		var (
			mu     sync.Mutex
			events []extract.ProgressType
		)
		progress := func(ev extract.ProgressEvent) {
			mu.Lock()
			events = append(events, ev.Type)
			mu.Unlock()
		}

		urls := []string{"https://example.com/a", "https://example.com/b"}
		_, _, err := e.Run(context.Background(), urls, progress)
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, events, 4)
		assert.Equal(t, extract.ProgressStarted, events[0])
		assert.Equal(t, extract.ProgressCompleted, events[1])
		assert.Equal(t, extract.ProgressCompleted, events[2])
		assert.Equal(t, extract.ProgressFinished, events[3])
	})

	t.Run("invalid schema rejected up front", func(t *testing.T) {
		t.Parallel()

		e := &extract.Extractor{Schema: scrapemaster.FieldSchema{}}

		_, _, err := e.Run(context.Background(), []string{"https://example.com/"}, nil)

		require.Error(t, err)
		assert.Equal(t, scrapemaster.EINVALID, scrapemaster.ErrorCode(err))
	})

	t.Run("no urls is a no-op", func(t *testing.T) {
		t.Parallel()

		e := &extract.Extractor{Schema: contactSchema}

		result, buckets, err := e.Run(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, &extract.Result{}, result)
		assert.Empty(t, buckets)
	})
}
