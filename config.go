package scrapemaster

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Provider identifies an LLM API provider.
type Provider string

// Supported providers. Together and Groq expose OpenAI-compatible chat
// completion endpoints; Gemini uses the genai API.
const (
	ProviderTogether Provider = "together"
	ProviderGroq     Provider = "groq"
	ProviderGemini   Provider = "gemini"
)

// Provider presets.
const (
	togetherModel   = "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo"
	togetherBaseURL = "https://api.together.xyz/v1"
	groqModel       = "llama-3.1-70b-versatile"
	groqBaseURL     = "https://api.groq.com/openai/v1"
	geminiModel     = "gemini-2.5-flash"

	maxContextTokensTogether = 131072
	maxContextTokensGroq     = 128000
	maxContextTokensGemini   = 1048576
	maxOutputTokensTogether  = 4096
	maxOutputTokensGroq      = 8000
	maxOutputTokensGemini    = 8192

	// DefaultChunkSize is the default character budget per chunk.
	DefaultChunkSize = 30000
)

// Config holds the process-wide extraction configuration. It is read-only
// after loading and passed explicitly to every component that needs it.
type Config struct {
	Provider         Provider
	Model            string
	APIKey           string
	BaseURL          string
	ChunkSize        int
	MaxContextTokens int
	MaxOutputTokens  int
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return Errorf(EINVALID, "API key required for provider %q", c.Provider)
	}
	if c.Model == "" {
		return Errorf(EINVALID, "model name required")
	}
	if c.ChunkSize <= 0 {
		return Errorf(EINVALID, "chunk size must be positive, got %d", c.ChunkSize)
	}
	return nil
}

// DefaultConfig returns the Together preset.
func DefaultConfig() Config {
	return Config{
		Provider:         ProviderTogether,
		Model:            togetherModel,
		BaseURL:          togetherBaseURL,
		ChunkSize:        DefaultChunkSize,
		MaxContextTokens: maxContextTokensTogether,
		MaxOutputTokens:  maxOutputTokensTogether,
	}
}

// ParseConfig reads line-based key=value configuration. Recognized keys:
// api_provider, together_api_key, groq_api_key, gemini_api_key, model,
// chunk_size. Unknown keys are ignored; lines without '=' are skipped.
// Provider selection fills in the matching model, endpoint, and token
// limit presets; an explicit model key overrides the preset.
func ParseConfig(r io.Reader) (Config, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	cfg.APIKey = values["together_api_key"]

	switch Provider(strings.ToLower(values["api_provider"])) {
	case ProviderGroq:
		cfg.Provider = ProviderGroq
		cfg.Model = groqModel
		cfg.BaseURL = groqBaseURL
		cfg.MaxContextTokens = maxContextTokensGroq
		cfg.MaxOutputTokens = maxOutputTokensGroq
		cfg.APIKey = values["groq_api_key"]
	case ProviderGemini:
		cfg.Provider = ProviderGemini
		cfg.Model = geminiModel
		cfg.BaseURL = ""
		cfg.MaxContextTokens = maxContextTokensGemini
		cfg.MaxOutputTokens = maxOutputTokensGemini
		cfg.APIKey = values["gemini_api_key"]
	case ProviderTogether, "":
		// Defaults already applied.
	default:
		return Config{}, Errorf(EINVALID, "unknown api_provider %q", values["api_provider"])
	}

	if model := values["model"]; model != "" {
		cfg.Model = model
	}
	if raw := values["chunk_size"]; raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return Config{}, Errorf(EINVALID, "invalid chunk_size %q", raw)
		}
		cfg.ChunkSize = size
	}

	return cfg, nil
}
