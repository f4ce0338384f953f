package mock

import "github.com/fwojciec/scrapemaster"

var _ scrapemaster.Converter = (*Converter)(nil)

// Converter is a mock implementation of scrapemaster.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
