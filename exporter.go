package scrapemaster

import "context"

// Exporter serializes a domain's merged records to their final output
// format. Called once per domain after all URLs are processed.
// Implementations skip buckets that hold no records.
type Exporter interface {
	Export(ctx context.Context, bucket *DomainBucket) error
}
