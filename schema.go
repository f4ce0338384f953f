package scrapemaster

import (
	"bufio"
	"io"
	"strings"
)

// FieldSchema is the ordered set of field names to extract. Order defines
// output column order in exported files.
type FieldSchema []string

// Validate returns an error if the schema is empty or contains duplicate
// or blank field names.
func (s FieldSchema) Validate() error {
	if len(s) == 0 {
		return Errorf(EINVALID, "field schema must contain at least one field")
	}
	seen := make(map[string]struct{}, len(s))
	for _, field := range s {
		if strings.TrimSpace(field) == "" {
			return Errorf(EINVALID, "field schema contains a blank field name")
		}
		if _, ok := seen[field]; ok {
			return Errorf(EINVALID, "duplicate field %q in schema", field)
		}
		seen[field] = struct{}{}
	}
	return nil
}

// Index returns the position of field in the schema, or -1 if absent.
func (s FieldSchema) Index(field string) int {
	for i, f := range s {
		if f == field {
			return i
		}
	}
	return -1
}

// ParseFieldSchema reads a field schema from line-based configuration
// text, one field name per line. Lines are whitespace-trimmed and blank
// lines are skipped.
func ParseFieldSchema(r io.Reader) (FieldSchema, error) {
	fields, err := ParseLines(r)
	if err != nil {
		return nil, err
	}
	schema := FieldSchema(fields)
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// ParseLines reads line-based configuration text, returning trimmed
// non-blank lines in order. This is the shared format for URL lists and
// field lists.
func ParseLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
