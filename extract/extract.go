// Package extract provides extraction run orchestration. It coordinates
// fetching, cleaning, markdown conversion, chunking, model calls, response
// parsing and record merging across a list of URLs.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/scrapemaster"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Default concurrency limits for URL and chunk processing.
const (
	DefaultConcurrency      = 4
	DefaultChunkConcurrency = 4
)

// DefaultChunkOverlap is the character overlap carried between adjacent
// chunks so records straddling a chunk boundary appear whole in at least
// one chunk.
const DefaultChunkOverlap = 200

// Extractor orchestrates structured-record extraction over a set of URLs.
// All collaborators are required unless noted otherwise.
type Extractor struct {
	Fetcher      scrapemaster.Fetcher
	Cleaner      scrapemaster.Cleaner
	Converter    scrapemaster.Converter
	Completer    scrapemaster.Completer
	TokenCounter scrapemaster.TokenCounter // optional; enables token stats

	Schema       scrapemaster.FieldSchema
	ChunkSize    int
	ChunkOverlap int

	// Concurrency bounds simultaneous URLs; ChunkConcurrency bounds
	// simultaneous model calls within one URL.
	Concurrency      int
	ChunkConcurrency int

	RetryDelays   []time.Duration
	ModelLimiter  *rate.Limiter  // optional; shared across all chunks
	DomainLimiter *DomainLimiter // optional; paces fetches per domain

	Logger *slog.Logger
}

// Result holds the counters for a finished run.
type Result struct {
	Pages   int // URLs that produced a page result, including empty ones
	Failed  int // URLs abandoned after fetch retries
	Records int // merged records across all pages
	Bytes   int // markdown bytes processed
	Tokens  int // markdown tokens, when a TokenCounter is configured
}

// ProgressEvent reports progress during an extraction run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Records   int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// pageOutcome holds the outcome of processing a single URL.
type pageOutcome struct {
	position int
	url      string
	markdown string
	page     *scrapemaster.PageResult
	err      error
}

// Run processes every URL and returns the run counters together with the
// per-domain buckets of merged records. A URL whose fetch fails after
// retries is counted as failed and skipped; a chunk whose model call or
// parse fails degrades to zero records for that chunk. Only credential or
// quota rejection (EUNAUTHORIZED) aborts the whole run.
func (e *Extractor) Run(ctx context.Context, urls []string, progress ProgressFunc) (*Result, []*scrapemaster.DomainBucket, error) {
	if err := e.Schema.Validate(); err != nil {
		return nil, nil, err
	}
	if len(urls) == 0 {
		return &Result{}, nil, nil
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(urls)
	outcomeCh := make(chan pageOutcome, total)

	var completed atomic.Int64

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, url := range urls {
			g.Go(func() error {
				outcome := e.processURL(gctx, i, url)
				if outcome.err != nil && scrapemaster.ErrorCode(outcome.err) == scrapemaster.EUNAUTHORIZED {
					// Fatal: every remaining model call would fail the
					// same way.
					return outcome.err
				}
				outcomeCh <- outcome
				return nil
			})
		}
		_ = g.Wait()
		close(outcomeCh)
	}()

	outcomes := make([]*pageOutcome, total)
	for outcome := range outcomeCh {
		completed.Add(1)
		outcomes[outcome.position] = &outcome

		if progress == nil {
			continue
		}
		if outcome.err != nil {
			progress(ProgressEvent{
				Type:      ProgressFailed,
				Completed: int(completed.Load()),
				Total:     total,
				URL:       outcome.url,
				Error:     outcome.err,
			})
		} else {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: int(completed.Load()),
				Total:     total,
				URL:       outcome.url,
				Records:   len(outcome.page.Records),
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	result := &Result{}
	var pages []*scrapemaster.PageResult
	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		if outcome.err != nil {
			result.Failed++
			continue
		}
		pages = append(pages, outcome.page)
		result.Pages++
		result.Records += len(outcome.page.Records)
		result.Bytes += len(outcome.markdown)
		if e.TokenCounter != nil {
			if tokens, err := e.TokenCounter.CountTokens(ctx, outcome.markdown); err == nil {
				result.Tokens += tokens
			}
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return result, scrapemaster.AggregateByDomain(pages), nil
}

// processURL runs the full pipeline for one URL: fetch, clean, convert,
// chunk, extract per chunk, merge.
func (e *Extractor) processURL(ctx context.Context, position int, url string) pageOutcome {
	outcome := pageOutcome{position: position, url: url}

	if e.DomainLimiter != nil {
		domain, err := scrapemaster.DomainName(url)
		if err != nil {
			domain = scrapemaster.UnknownDomain
		}
		if err := e.DomainLimiter.Wait(ctx, domain); err != nil {
			outcome.err = err
			return outcome
		}
	}

	delays := e.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := fetchWithRetry(ctx, url, e.Fetcher.Fetch, e.Logger, delays)
	if err != nil {
		outcome.err = scrapemaster.Errorf(scrapemaster.EFETCH, "fetch %q: %v", url, err)
		return outcome
	}

	cleaned, err := e.Cleaner.Clean(html)
	if err != nil {
		outcome.err = err
		return outcome
	}
	markdown, err := e.Converter.Convert(cleaned)
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.markdown = markdown

	// A page with no textual content still yields a page result, so the
	// URL shows up in its domain bucket with zero records.
	if strings.TrimSpace(markdown) == "" {
		outcome.page = &scrapemaster.PageResult{URL: url}
		return outcome
	}

	chunkSize := e.ChunkSize
	if chunkSize <= 0 {
		chunkSize = scrapemaster.DefaultChunkSize
	}
	chunks, err := scrapemaster.Split(markdown, chunkSize, e.ChunkOverlap)
	if err != nil {
		outcome.err = err
		return outcome
	}

	perChunk, failedChunks, err := e.extractChunks(ctx, url, chunks)
	if err != nil {
		outcome.err = err
		return outcome
	}

	outcome.page = &scrapemaster.PageResult{
		URL:          url,
		Records:      scrapemaster.MergeRecords(perChunk),
		ContentHash:  fmt.Sprintf("%016x", xxhash.Sum64String(markdown)),
		Chunks:       len(chunks),
		FailedChunks: failedChunks,
	}
	return outcome
}

// extractChunks runs the model over every chunk of one page and returns
// the per-chunk records in chunk order. Chunk failures other than
// EUNAUTHORIZED degrade to an empty record list for that chunk.
func (e *Extractor) extractChunks(ctx context.Context, url string, chunks []scrapemaster.Chunk) ([][]scrapemaster.Record, int, error) {
	chunkConcurrency := e.ChunkConcurrency
	if chunkConcurrency <= 0 {
		chunkConcurrency = DefaultChunkConcurrency
	}

	perChunk := make([][]scrapemaster.Record, len(chunks))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(chunkConcurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			records, err := e.extractChunk(gctx, chunk)
			if err != nil {
				if scrapemaster.ErrorCode(err) == scrapemaster.EUNAUTHORIZED {
					return err
				}
				failed.Add(1)
				if e.Logger != nil {
					e.Logger.Warn("chunk extraction failed",
						"url", url,
						"chunk", chunk.Index,
						"code", scrapemaster.ErrorCode(err),
						"err", err,
					)
				}
				return nil
			}
			perChunk[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return perChunk, int(failed.Load()), nil
}

func (e *Extractor) extractChunk(ctx context.Context, chunk scrapemaster.Chunk) ([]scrapemaster.Record, error) {
	if e.ModelLimiter != nil {
		if err := e.ModelLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	prompt := scrapemaster.BuildPrompt(e.Schema, chunk.Text)
	raw, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := scrapemaster.ParseRecords(raw, e.Schema)
	if err != nil {
		return nil, err
	}
	if result.Dropped > 0 && e.Logger != nil {
		e.Logger.Debug("dropped malformed elements",
			"chunk", chunk.Index,
			"dropped", result.Dropped,
		)
	}
	return result.Records, nil
}
