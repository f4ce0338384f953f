package rod

import (
	"context"
	"sync/atomic"

	"github.com/fwojciec/scrapemaster"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements scrapemaster.Fetcher at compile time.
var _ scrapemaster.Fetcher = (*Fetcher)(nil)

// defaultUserAgents is the rotation pool for outbound page fetches.
// Sites that fingerprint headless traffic get a plausible desktop agent
// instead, varying across requests.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:127.0) Gecko/20100101 Firefox/127.0",
}

// Fetcher retrieves rendered HTML from URLs using Chrome browser
// automation, rotating user agents across requests. The underlying
// browser is recycled periodically to bound Chrome's memory growth.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	agents  []string
	next    atomic.Uint64
}

// NewFetcher creates a new Fetcher that launches a headless Chrome
// browser. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...ManagerOption) (*Fetcher, error) {
	manager, err := NewBrowserManager(opts...)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: manager, agents: defaultUserAgents}, nil
}

// Fetch navigates to the URL, waits for the page to load, and returns
// the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	// Set context for all subsequent operations
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: f.nextUserAgent(),
	}); err != nil {
		return "", err
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	f.manager.PageDone()
	return html, nil
}

// nextUserAgent returns the next agent in the rotation.
func (f *Fetcher) nextUserAgent() string {
	n := f.next.Add(1)
	return f.agents[int((n-1)%uint64(len(f.agents)))]
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
