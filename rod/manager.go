package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the default number of pages rendered before the
// browser is replaced with a fresh instance.
const DefaultRecycleAfter = 75

// BrowserManager owns the browser lifecycle. Chrome accumulates memory
// under sustained page churn and never returns to its baseline even with
// proper page cleanup, so the manager replaces the browser after a fixed
// number of rendered pages.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu           sync.Mutex
	browser      *rod.Browser
	launcher     *launcher.Launcher
	pages        atomic.Int64
	recycleAfter int64
	closed       atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithRecycleAfter sets how many pages are rendered before the browser
// is recycled. Defaults to DefaultRecycleAfter.
func WithRecycleAfter(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.recycleAfter = n
	}
}

// NewBrowserManager launches a headless Chrome browser. Close must be
// called when the manager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{recycleAfter: DefaultRecycleAfter}
	for _, opt := range opts {
		opt(bm)
	}
	if err := bm.launch(); err != nil {
		return nil, err
	}
	return bm, nil
}

// Browser returns the current browser instance, recycling first if the
// rendered-page count has reached the threshold. Callers report finished
// pages via PageDone.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.pages.Load() >= bm.recycleAfter {
		bm.recycle()
	}
	return bm.browser
}

// PageDone records one rendered page toward the recycling threshold.
func (bm *BrowserManager) PageDone() {
	bm.pages.Add(1)
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.shutdown()
}

// launch starts a new browser instance with stability flags.
func (bm *BrowserManager) launch() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// shutdown closes the current browser and launcher. Must be called with
// mu held.
func (bm *BrowserManager) shutdown() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycle swaps in a fresh browser and closes the old one. The old
// browser is kept if the new launch fails. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	oldBrowser := bm.browser
	oldLauncher := bm.launcher
	bm.browser = nil
	bm.launcher = nil

	if err := bm.launch(); err != nil {
		bm.browser = oldBrowser
		bm.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	bm.pages.Store(0)
}
