package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/scrapemaster"
	"github.com/fwojciec/scrapemaster/extract"
	"github.com/fwojciec/scrapemaster/fs"
	smgemini "github.com/fwojciec/scrapemaster/gemini"
	"github.com/fwojciec/scrapemaster/goquery"
	"github.com/fwojciec/scrapemaster/htmltomarkdown"
	smopenai "github.com/fwojciec/scrapemaster/openai"
	"github.com/fwojciec/scrapemaster/rod"
	smslog "github.com/fwojciec/scrapemaster/slog"
	"github.com/fwojciec/scrapemaster/tiktoken"
	"google.golang.org/genai"
)

// tokenizerModel is used for Gemini token counting. The tokenizer package
// lags behind the model catalog, so this stays on a supported model.
const tokenizerModel = "gemini-2.5-flash"

func main() {
	ctx := context.Background()

	m := NewMain()
	defer m.Close()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Fetcher is retained so the browser can be shut down on exit.
	Fetcher scrapemaster.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Fetcher != nil {
		return m.Fetcher.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scrapemaster"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'scrapemaster --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := kongCtx.Command()

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	deps.Config = cfg

	// Preview never calls the model, so only run needs credentials.
	if cmd == "run" {
		if cfg.APIKey == "" {
			fmt.Fprintf(stderr, "Hint: set %s or add the key to %s\n", apiKeyEnvVar(cfg.Provider), cli.Config)
			return scrapemaster.Errorf(scrapemaster.EUNAUTHORIZED, "no API key configured for provider %q", cfg.Provider)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	deps.Schema, err = loadSchema(cli.Fields)
	if err != nil {
		return err
	}
	deps.URLs, err = loadURLs(cli.URLs)
	if err != nil {
		return err
	}

	fetcher, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return fmt.Errorf("failed to start browser: %w", err)
	}
	m.Fetcher = fetcher
	deps.Fetcher = smslog.NewLoggingFetcher(fetcher, logger)
	deps.Cleaner = goquery.NewCleaner()
	deps.Converter = htmltomarkdown.NewConverter()

	deps.TokenCounter, err = newTokenCounter(cfg)
	if err != nil {
		return fmt.Errorf("failed to create token counter: %w", err)
	}

	if cmd == "run" {
		completer, err := newCompleter(ctx, cfg)
		if err != nil {
			return err
		}

		// The configured chunk size is clamped to what the model's
		// context window can actually hold.
		chunkSize := cfg.ChunkSize
		budget := extract.ChunkBudget(cfg.MaxContextTokens, cfg.MaxOutputTokens,
			extract.DefaultPromptOverheadToken, extract.DefaultCharsPerToken)
		if budget > 0 && budget < chunkSize {
			chunkSize = budget
		}

		deps.Extractor = &extract.Extractor{
			Fetcher:          deps.Fetcher,
			Cleaner:          deps.Cleaner,
			Converter:        deps.Converter,
			Completer:        smslog.NewLoggingCompleter(completer, logger),
			TokenCounter:     deps.TokenCounter,
			Schema:           deps.Schema,
			ChunkSize:        chunkSize,
			ChunkOverlap:     extract.DefaultChunkOverlap,
			Concurrency:      cli.Run.Concurrency,
			ChunkConcurrency: cli.Run.ChunkConcurrency,
			ModelLimiter:     extract.NewModelLimiter(cli.Run.ModelRPS),
			DomainLimiter:    extract.NewDomainLimiter(cli.Run.DomainRPS),
			Logger:           logger,
		}
		deps.Exporter = fs.NewExporter(cli.Run.Output, deps.Schema)
	}

	return kongCtx.Run(deps)
}

// loadConfig reads the configuration file, falling back to defaults when
// the file does not exist. A missing API key is filled from the provider's
// environment variable.
func loadConfig(path string) (scrapemaster.Config, error) {
	cfg := scrapemaster.DefaultConfig()

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		cfg, err = scrapemaster.ParseConfig(f)
		if err != nil {
			return scrapemaster.Config{}, fmt.Errorf("config %q: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return scrapemaster.Config{}, fmt.Errorf("config %q: %w", path, err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(apiKeyEnvVar(cfg.Provider))
	}
	return cfg, nil
}

func apiKeyEnvVar(provider scrapemaster.Provider) string {
	switch provider {
	case scrapemaster.ProviderGroq:
		return "GROQ_API_KEY"
	case scrapemaster.ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "TOGETHER_API_KEY"
	}
}

func loadSchema(path string) (scrapemaster.FieldSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fields %q: %w", path, err)
	}
	defer f.Close()

	schema, err := scrapemaster.ParseFieldSchema(f)
	if err != nil {
		return nil, fmt.Errorf("fields %q: %w", path, err)
	}
	return schema, nil
}

func loadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("urls %q: %w", path, err)
	}
	defer f.Close()

	urls, err := scrapemaster.ParseLines(f)
	if err != nil {
		return nil, fmt.Errorf("urls %q: %w", path, err)
	}
	if len(urls) == 0 {
		return nil, scrapemaster.Errorf(scrapemaster.EINVALID, "no URLs in %q", path)
	}
	return urls, nil
}

// newCompleter builds the model client for the configured provider.
// Together and Groq go through the OpenAI-compatible client; Gemini uses
// the genai SDK.
func newCompleter(ctx context.Context, cfg scrapemaster.Config) (scrapemaster.Completer, error) {
	if cfg.Provider == scrapemaster.ProviderGemini {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return smgemini.NewCompleter(client, cfg), nil
	}
	return smopenai.NewCompleter(cfg), nil
}

func newTokenCounter(cfg scrapemaster.Config) (scrapemaster.TokenCounter, error) {
	if cfg.Provider == scrapemaster.ProviderGemini {
		return smgemini.NewTokenCounter(tokenizerModel)
	}
	return tiktoken.NewTokenCounter(cfg.Model)
}
