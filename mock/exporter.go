package mock

import (
	"context"

	"github.com/fwojciec/scrapemaster"
)

var _ scrapemaster.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of scrapemaster.Exporter.
type Exporter struct {
	ExportFn func(ctx context.Context, bucket *scrapemaster.DomainBucket) error
}

func (e *Exporter) Export(ctx context.Context, bucket *scrapemaster.DomainBucket) error {
	return e.ExportFn(ctx, bucket)
}
