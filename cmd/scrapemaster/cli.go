package main

import (
	"context"
	"io"

	"github.com/fwojciec/scrapemaster"
	"github.com/fwojciec/scrapemaster/extract"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Config scrapemaster.Config
	Schema scrapemaster.FieldSchema
	URLs   []string

	// Pipeline collaborators. Extractor and Exporter are wired for the
	// run command; the individual stages are also exposed for preview.
	Fetcher      scrapemaster.Fetcher
	Cleaner      scrapemaster.Cleaner
	Converter    scrapemaster.Converter
	TokenCounter scrapemaster.TokenCounter
	Extractor    *extract.Extractor
	Exporter     scrapemaster.Exporter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Config string `default:"config.txt" help:"Path to key=value configuration file"`
	URLs   string `name:"urls" default:"urls.txt" help:"Path to file with one URL per line"`
	Fields string `default:"fields.txt" help:"Path to file with one field name per line"`

	Run     RunCmd     `cmd:"" help:"Extract records from the URLs and export them per domain"`
	Preview PreviewCmd `cmd:"" help:"Fetch and chunk the URLs without calling the model"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Output           string  `short:"o" name:"out" default:"scraping_results" help:"Directory for per-domain result files"`
	Concurrency      int     `short:"c" default:"4" help:"Concurrent URL limit"`
	ChunkConcurrency int     `default:"4" help:"Concurrent model calls per URL"`
	ModelRPS         float64 `default:"1" help:"Model calls per second across the whole run"`
	DomainRPS        float64 `default:"1" help:"Fetches per second per domain"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	Limit int `short:"n" default:"0" help:"Preview at most this many URLs (0 = all)"`
}
