package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/scrapemaster"
	"github.com/fwojciec/scrapemaster/extract"
)

// Run executes the preview command. It runs the fetch, clean, convert and
// chunk stages for each URL and reports what the run command would send to
// the model, without making any model calls.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	urls := deps.URLs
	if c.Limit > 0 && len(urls) > c.Limit {
		urls = urls[:c.Limit]
	}

	fmt.Fprintf(deps.Stdout, "Previewing %d URLs (provider %s, model %s, chunk size %d)\n",
		len(urls), deps.Config.Provider, deps.Config.Model, deps.Config.ChunkSize)

	for _, url := range urls {
		html, err := deps.Fetcher.Fetch(deps.Ctx, url)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "  %s: fetch failed: %s\n",
				extract.TruncateURL(url, 60), scrapemaster.ErrorMessage(err))
			continue
		}
		cleaned, err := deps.Cleaner.Clean(html)
		if err != nil {
			return err
		}
		markdown, err := deps.Converter.Convert(cleaned)
		if err != nil {
			return err
		}

		if strings.TrimSpace(markdown) == "" {
			fmt.Fprintf(deps.Stdout, "  %s: no textual content\n", extract.TruncateURL(url, 60))
			continue
		}

		chunks, err := scrapemaster.Split(markdown, deps.Config.ChunkSize, extract.DefaultChunkOverlap)
		if err != nil {
			return err
		}

		tokens := 0
		if deps.TokenCounter != nil {
			if n, err := deps.TokenCounter.CountTokens(deps.Ctx, markdown); err == nil {
				tokens = n
			}
		}

		fmt.Fprintf(deps.Stdout, "  %s: %d chunks (%s, %s)\n",
			extract.TruncateURL(url, 60), len(chunks),
			extract.FormatBytes(len(markdown)), extract.FormatTokens(tokens))
	}

	return nil
}
