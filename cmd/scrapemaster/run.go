package main

import (
	"fmt"

	"github.com/fwojciec/scrapemaster"
	"github.com/fwojciec/scrapemaster/extract"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	progress := func(event extract.ProgressEvent) {
		switch event.Type {
		case extract.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Extracting from %d URLs\n", event.Total)
		case extract.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s: %d records\n",
				event.Completed, event.Total, extract.TruncateURL(event.URL, 60), event.Records)
		case extract.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] skip %s: %s\n",
				event.Completed, event.Total, extract.TruncateURL(event.URL, 60), scrapemaster.ErrorMessage(event.Error))
		}
	}

	result, buckets, err := deps.Extractor.Run(deps.Ctx, deps.URLs, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemaster.ErrorMessage(err))
		return err
	}

	var exported int
	for _, bucket := range buckets {
		if bucket.RecordCount() == 0 {
			continue
		}
		if err := deps.Exporter.Export(deps.Ctx, bucket); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemaster.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "  %s: %d records\n", bucket.Domain, bucket.RecordCount())
		exported++
	}

	fmt.Fprintf(deps.Stdout, "Extracted %d records from %d pages into %d domains (%s, %s)\n",
		result.Records, result.Pages, exported,
		extract.FormatBytes(result.Bytes), extract.FormatTokens(result.Tokens))
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, "  %d URLs failed\n", result.Failed)
	}

	return nil
}
