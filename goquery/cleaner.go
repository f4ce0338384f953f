// Package goquery provides HTML cleaning using the goquery DOM library.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapemaster"
)

// Ensure Cleaner implements scrapemaster.Cleaner at compile time.
var _ scrapemaster.Cleaner = (*Cleaner)(nil)

// removeSelector matches elements that carry no extractable content.
// Navigation, footers, and sidebars are deliberately NOT removed: contact
// records often live there.
const removeSelector = "script, style, iframe, meta, noscript, link, svg"

// Cleaner strips non-content markup from raw HTML while keeping the full
// page structure.
type Cleaner struct{}

// NewCleaner creates a new Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean removes script, style, and similar elements and returns the
// remaining HTML.
func (c *Cleaner) Clean(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", scrapemaster.Errorf(scrapemaster.EINVALID, "parsing HTML: %v", err)
	}

	doc.Find(removeSelector).Remove()

	return doc.Html()
}
