package mock

import "github.com/fwojciec/scrapemaster"

var _ scrapemaster.Cleaner = (*Cleaner)(nil)

// Cleaner is a mock implementation of scrapemaster.Cleaner.
type Cleaner struct {
	CleanFn func(html string) (string, error)
}

func (c *Cleaner) Clean(html string) (string, error) {
	return c.CleanFn(html)
}
