package scrapemaster

// Record is one extracted entity: a closed mapping from each schema field
// to a string value, empty string when absent. The key set is fixed at
// construction so downstream code never branches on key presence.
type Record struct {
	schema FieldSchema
	values []string
}

// NewRecord returns a Record with every field set to the empty string.
func NewRecord(schema FieldSchema) Record {
	return Record{
		schema: schema,
		values: make([]string, len(schema)),
	}
}

// Schema returns the record's field schema.
func (r Record) Schema() FieldSchema {
	return r.schema
}

// Get returns the value for field, or the empty string if the field is
// not part of the schema.
func (r Record) Get(field string) string {
	if i := r.schema.Index(field); i >= 0 {
		return r.values[i]
	}
	return ""
}

// Set assigns value to field. Fields outside the schema are ignored.
func (r *Record) Set(field, value string) {
	if i := r.schema.Index(field); i >= 0 {
		r.values[i] = value
	}
}

// Values returns the record's values in schema order.
func (r Record) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := NewRecord(r.schema)
	copy(out.values, r.values)
	return out
}

// Empty reports whether every field is the empty string.
func (r Record) Empty() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

// PageResult holds the merged records extracted from a single URL.
// It is created once all chunks for the URL have been processed and is
// immutable thereafter.
type PageResult struct {
	URL         string
	Records     []Record
	ContentHash string
	Chunks      int

	// FailedChunks counts chunks whose model call or response parse
	// failed; their contribution degraded to zero records.
	FailedChunks int
}

// DomainBucket groups the page results for URLs under one domain, in
// first-seen URL order.
type DomainBucket struct {
	Domain string
	Pages  []*PageResult
}

// RecordCount returns the total number of records across the bucket's
// pages.
func (b *DomainBucket) RecordCount() int {
	n := 0
	for _, page := range b.Pages {
		n += len(page.Records)
	}
	return n
}
