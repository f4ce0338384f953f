package scrapemaster

// Cleaner strips non-content markup from raw HTML before conversion.
// Unlike boilerplate extraction, cleaning keeps the full page: extraction
// targets (contact details, listings) routinely live in footers and
// sidebars that readability-style extractors discard.
type Cleaner interface {
	// Clean removes script, style, and similar non-content elements and
	// returns the remaining HTML.
	Clean(html string) (string, error)
}
