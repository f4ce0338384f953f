// Package fs implements export of extraction results to the local
// filesystem.
package fs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/scrapemaster"
	"github.com/xuri/excelize/v2"
)

// utf8BOM makes the CSV open with correct accents in Excel.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sourceURLField is appended to every exported row so each record can be
// traced back to the page it came from.
const sourceURLField = "source_url"

// Ensure Exporter implements scrapemaster.Exporter at compile time.
var _ scrapemaster.Exporter = (*Exporter)(nil)

// Exporter writes one directory per domain under a base directory, with
// the domain's records in JSON, CSV and XLSX form:
//
//	<base>/<domain>/<domain>_results.json
//	<base>/<domain>/<domain>_results.csv
//	<base>/<domain>/<domain>_results.xlsx
//
// Buckets with no records are skipped entirely, so empty directories never
// appear in the output.
type Exporter struct {
	baseDir string
	schema  scrapemaster.FieldSchema
}

// NewExporter creates a new Exporter rooted at baseDir.
func NewExporter(baseDir string, schema scrapemaster.FieldSchema) *Exporter {
	return &Exporter{baseDir: baseDir, schema: schema}
}

// Export writes the bucket's records to the domain's directory.
func (e *Exporter) Export(ctx context.Context, bucket *scrapemaster.DomainBucket) error {
	if bucket == nil || bucket.RecordCount() == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(e.baseDir, bucket.Domain)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "create export directory %q: %v", dir, err)
	}

	rows := e.flatten(bucket)
	base := filepath.Join(dir, bucket.Domain+"_results")

	if err := e.writeJSON(base+".json", rows); err != nil {
		return err
	}
	if err := e.writeCSV(base+".csv", rows); err != nil {
		return err
	}
	return e.writeXLSX(base+".xlsx", rows)
}

// row is one exported record: schema values in schema order plus the
// source URL.
type row struct {
	values    []string
	sourceURL string
}

func (e *Exporter) flatten(bucket *scrapemaster.DomainBucket) []row {
	var rows []row
	for _, page := range bucket.Pages {
		for _, rec := range page.Records {
			rows = append(rows, row{values: rec.Values(), sourceURL: page.URL})
		}
	}
	return rows
}

func (e *Exporter) writeJSON(path string, rows []row) error {
	listings := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		obj := make(map[string]string, len(e.schema)+1)
		for i, field := range e.schema {
			obj[field] = r.values[i]
		}
		obj[sourceURLField] = r.sourceURL
		listings = append(listings, obj)
	}
	data, err := json.MarshalIndent(map[string]any{"listings": listings}, "", "  ")
	if err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "marshal results: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "write %q: %v", path, err)
	}
	return nil
}

func (e *Exporter) writeCSV(path string, rows []row) error {
	f, err := os.Create(path)
	if err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "write %q: %v", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "write %q: %v", path, err)
	}

	w := csv.NewWriter(f)
	header := append(append([]string{}, e.schema...), sourceURLField)
	if err := w.Write(header); err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "write %q: %v", path, err)
	}
	for _, r := range rows {
		record := append(append([]string{}, r.values...), r.sourceURL)
		if err := w.Write(record); err != nil {
			return scrapemaster.Errorf(scrapemaster.EINTERNAL, "write %q: %v", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "write %q: %v", path, err)
	}
	return f.Close()
}

func (e *Exporter) writeXLSX(path string, rows []row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, field := range e.schema {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return scrapemaster.Errorf(scrapemaster.EINTERNAL, "build %q: %v", path, err)
		}
		if err := f.SetCellValue(sheet, cell, field); err != nil {
			return scrapemaster.Errorf(scrapemaster.EINTERNAL, "build %q: %v", path, err)
		}
	}
	urlHeader, err := excelize.CoordinatesToCellName(len(e.schema)+1, 1)
	if err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "build %q: %v", path, err)
	}
	if err := f.SetCellValue(sheet, urlHeader, sourceURLField); err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "build %q: %v", path, err)
	}

	for i, r := range rows {
		cells := append(append([]string{}, r.values...), r.sourceURL)
		for col, value := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return scrapemaster.Errorf(scrapemaster.EINTERNAL, "build %q: %v", path, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return scrapemaster.Errorf(scrapemaster.EINTERNAL, "build %q: %v", path, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return scrapemaster.Errorf(scrapemaster.EINTERNAL, "write %q: %v", path, err)
	}
	return nil
}
