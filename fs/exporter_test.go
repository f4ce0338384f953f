package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/scrapemaster"
	"github.com/fwojciec/scrapemaster/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var contactSchema = scrapemaster.FieldSchema{"name", "email", "phone number"}

func testBucket(t *testing.T) *scrapemaster.DomainBucket {
	t.Helper()
	rec1 := scrapemaster.NewRecord(contactSchema)
	rec1.Set("name", "Ann Kowalska")
	rec1.Set("email", "ann@example.com")
	rec2 := scrapemaster.NewRecord(contactSchema)
	rec2.Set("name", "Jan Nowak")
	rec2.Set("phone number", "+48 123 456 789")
	return &scrapemaster.DomainBucket{
		Domain: "example.com",
		Pages: []*scrapemaster.PageResult{
			{URL: "https://example.com/contact", Records: []scrapemaster.Record{rec1}},
			{URL: "https://example.com/team", Records: []scrapemaster.Record{rec2}},
		},
	}
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("writes json csv and xlsx per domain", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		exporter := fs.NewExporter(base, contactSchema)

		err := exporter.Export(context.Background(), testBucket(t))
		require.NoError(t, err)

		dir := filepath.Join(base, "example.com")
		for _, name := range []string{
			"example.com_results.json",
			"example.com_results.csv",
			"example.com_results.xlsx",
		} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, name)
		}
	})

	t.Run("json has listings envelope with source urls", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		exporter := fs.NewExporter(base, contactSchema)
		require.NoError(t, exporter.Export(context.Background(), testBucket(t)))

		data, err := os.ReadFile(filepath.Join(base, "example.com", "example.com_results.json"))
		require.NoError(t, err)

		var out struct {
			Listings []map[string]string `json:"listings"`
		}
		require.NoError(t, json.Unmarshal(data, &out))
		require.Len(t, out.Listings, 2)
		assert.Equal(t, "Ann Kowalska", out.Listings[0]["name"])
		assert.Equal(t, "ann@example.com", out.Listings[0]["email"])
		assert.Equal(t, "https://example.com/contact", out.Listings[0]["source_url"])
		assert.Equal(t, "+48 123 456 789", out.Listings[1]["phone number"])
		assert.Equal(t, "https://example.com/team", out.Listings[1]["source_url"])
	})

	t.Run("csv starts with utf8 bom and header", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		exporter := fs.NewExporter(base, contactSchema)
		require.NoError(t, exporter.Export(context.Background(), testBucket(t)))

		data, err := os.ReadFile(filepath.Join(base, "example.com", "example.com_results.csv"))
		require.NoError(t, err)

		require.True(t, len(data) > 3)
		assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
		assert.Contains(t, string(data), "name,email,phone number,source_url")
		assert.Contains(t, string(data), "Ann Kowalska,ann@example.com,,https://example.com/contact")
	})

	t.Run("xlsx rows round trip", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		exporter := fs.NewExporter(base, contactSchema)
		require.NoError(t, exporter.Export(context.Background(), testBucket(t)))

		f, err := excelize.OpenFile(filepath.Join(base, "example.com", "example.com_results.xlsx"))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Sheet1")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"name", "email", "phone number", "source_url"}, rows[0])
		assert.Equal(t, "Ann Kowalska", rows[1][0])
		assert.Equal(t, "https://example.com/team", rows[2][3])
	})

	t.Run("skips empty bucket", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		exporter := fs.NewExporter(base, contactSchema)

		bucket := &scrapemaster.DomainBucket{
			Domain: "empty.example.com",
			Pages:  []*scrapemaster.PageResult{{URL: "https://empty.example.com/", Records: nil}},
		}
		require.NoError(t, exporter.Export(context.Background(), bucket))

		_, err := os.Stat(filepath.Join(base, "empty.example.com"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("nil bucket is a no-op", func(t *testing.T) {
		t.Parallel()

		exporter := fs.NewExporter(t.TempDir(), contactSchema)
		assert.NoError(t, exporter.Export(context.Background(), nil))
	})
}
