package scrapemaster_test

import (
	"testing"

	"github.com/fwojciec/scrapemaster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://example.com/contact", "example.com"},
		{"https://www.example.com/about", "example.com"},
		{"http://Example.COM", "example.com"},
		{"https://example.com:8443/team", "example.com"},
		{"https://example.com./people", "example.com"},
		{"https://sub.example.com/x", "sub.example.com"},
		{"http://192.168.1.10/admin", "192.168.1.10"},
	}

	for _, tt := range tests {
		got, err := scrapemaster.DomainName(tt.rawURL)
		require.NoError(t, err, tt.rawURL)
		assert.Equal(t, tt.want, got, tt.rawURL)
	}
}

func TestDomainName_NoHost(t *testing.T) {
	t.Parallel()

	for _, rawURL := range []string{"", "/relative/path", "not a url at all %"} {
		_, err := scrapemaster.DomainName(rawURL)
		require.Error(t, err, rawURL)
		assert.Equal(t, scrapemaster.EINVALID, scrapemaster.ErrorCode(err), rawURL)
	}
}

func TestAggregateByDomain_GroupsByHost(t *testing.T) {
	t.Parallel()

	pages := []*scrapemaster.PageResult{
		{URL: "https://a.com/1"},
		{URL: "https://b.com/1"},
		{URL: "https://www.a.com/2"},
	}

	buckets := scrapemaster.AggregateByDomain(pages)

	require.Len(t, buckets, 2)
	assert.Equal(t, "a.com", buckets[0].Domain)
	require.Len(t, buckets[0].Pages, 2)
	assert.Equal(t, "https://a.com/1", buckets[0].Pages[0].URL)
	assert.Equal(t, "https://www.a.com/2", buckets[0].Pages[1].URL)
	assert.Equal(t, "b.com", buckets[1].Domain)
}

func TestAggregateByDomain_TotalRecordCountPreserved(t *testing.T) {
	t.Parallel()

	schema := scrapemaster.FieldSchema{"name"}
	pages := []*scrapemaster.PageResult{
		{URL: "https://a.com/1", Records: []scrapemaster.Record{scrapemaster.NewRecord(schema), scrapemaster.NewRecord(schema)}},
		{URL: "https://a.com/2", Records: []scrapemaster.Record{scrapemaster.NewRecord(schema)}},
		{URL: "https://b.com/1", Records: nil},
	}

	buckets := scrapemaster.AggregateByDomain(pages)

	total := 0
	for _, b := range buckets {
		total += b.RecordCount()
	}
	assert.Equal(t, 3, total)
}

func TestAggregateByDomain_InvalidURLsBucketedAsUnknown(t *testing.T) {
	t.Parallel()

	buckets := scrapemaster.AggregateByDomain([]*scrapemaster.PageResult{
		{URL: "/no-host"},
	})

	require.Len(t, buckets, 1)
	assert.Equal(t, scrapemaster.UnknownDomain, buckets[0].Domain)
}

func TestAggregateByDomain_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scrapemaster.AggregateByDomain(nil))
}
