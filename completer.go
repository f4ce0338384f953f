package scrapemaster

import "context"

// Completer sends a prompt to an LLM endpoint and returns the raw text
// completion. Model name, API key, and endpoint are implementation
// configuration; there is no ambient lookup.
//
// Implementations perform exactly one outbound call per invocation and
// hold no mutable shared state, so calls are independent and safe to
// issue concurrently; retry policy belongs to the calling pipeline.
// Failures carry EUNAVAILABLE (transport), EUNAUTHORIZED (bad key or
// exhausted quota), or EMODEL (endpoint-reported failure).
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
