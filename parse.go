package scrapemaster

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseResult holds the records recovered from one model response.
type ParseResult struct {
	Records []Record

	// Dropped counts array elements discarded during coercion: elements
	// that were not JSON objects, and objects carrying no value for any
	// schema field. Dropping them is a deliberate permissive choice, but
	// callers should log the count so nothing disappears silently.
	Dropped int
}

// ParseRecords extracts and validates a record array from a raw model
// completion. The output is untrusted and frequently non-conformant: the
// model may wrap the JSON in markdown fences, prepend or append prose,
// return the original's {"listings": […]} envelope, or truncate the
// array. ParseRecords is maximally permissive at the object level while
// being strict about the resulting schema shape: every returned record
// has exactly the schema's fields, missing fields as empty strings,
// extra keys discarded, non-string values rendered as their JSON text.
//
// It fails with EPARSE when no JSON candidate is present at all, or when
// every candidate remains unparseable after one bounded repair pass.
// Parsing is idempotent: the same raw text always yields the same result.
func ParseRecords(raw string, schema FieldSchema) (ParseResult, error) {
	candidates := jsonCandidates(raw)
	if len(candidates) == 0 {
		return ParseResult{}, Errorf(EPARSE, "no JSON array found in model response")
	}

	for _, candidate := range candidates {
		if elems, ok := decodeElements(candidate); ok {
			return coerceRecords(elems, schema), nil
		}
		if elems, ok := decodeElements(repairJSON(candidate)); ok {
			return coerceRecords(elems, schema), nil
		}
	}
	return ParseResult{}, Errorf(EPARSE, "malformed JSON in model response")
}

// jsonCandidates returns substrings of raw that may hold the response
// JSON, most specific first: a ```json fence, any ``` fence, the first
// top-level array, the first top-level object.
func jsonCandidates(raw string) []string {
	var candidates []string

	if body, ok := fencedBlock(raw, "```json"); ok {
		candidates = append(candidates, body)
	}
	if body, ok := fencedBlock(raw, "```"); ok {
		candidates = append(candidates, body)
	}
	if span, ok := bracketSpan(raw, '[', ']'); ok {
		candidates = append(candidates, span)
	}
	if span, ok := bracketSpan(raw, '{', '}'); ok {
		candidates = append(candidates, span)
	}
	return candidates
}

// fencedBlock returns the content of the first markdown fence opened by
// marker.
func fencedBlock(raw, marker string) (string, bool) {
	start := strings.Index(raw, marker)
	if start < 0 {
		return "", false
	}
	body := raw[start+len(marker):]
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", false
	}
	return body, true
}

// bracketSpan returns the substring from the first open bracket to its
// matching close, tracking JSON string and escape state so brackets
// inside values don't miscount. A span left open by truncation is
// returned as-is for the repair pass to close.
func bracketSpan(raw string, open, close byte) (string, bool) {
	start := strings.IndexByte(raw, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == open:
			depth++
		case !inString && c == close:
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return raw[start:], true
}

// decodeElements parses a candidate into a slice of raw elements. Arrays
// decode directly; objects with a "listings" array unwrap it; any other
// object is treated as a single-element array, matching the lenient
// envelope handling of the upstream extraction format.
func decodeElements(candidate string) ([]any, bool) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}

	switch val := v.(type) {
	case []any:
		return val, true
	case map[string]any:
		if listings, ok := val["listings"].([]any); ok {
			return listings, true
		}
		return []any{val}, true
	default:
		return nil, false
	}
}

// repairJSON applies one bounded repair pass for the common ways models
// break JSON: trailing commas before a closing bracket, and strings or
// brackets left unterminated by output truncation.
func repairJSON(candidate string) string {
	var sb strings.Builder
	sb.Grow(len(candidate) + 8)

	var stack []byte
	inString := false
	escaped := false
	lastComma := -1 // index in sb of a comma awaiting a value

	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == '{' || c == '['):
			stack = append(stack, c)
			lastComma = -1
		case !inString && (c == '}' || c == ']'):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			// Drop a trailing comma left dangling before this close.
			if lastComma >= 0 {
				trimmed := strings.TrimRight(sb.String(), " \t\r\n")
				if strings.HasSuffix(trimmed, ",") {
					sb.Reset()
					sb.WriteString(trimmed[:len(trimmed)-1])
				}
				lastComma = -1
			}
		case !inString && c == ',':
			lastComma = sb.Len()
		case !inString && !isJSONSpace(c):
			lastComma = -1
		}
		sb.WriteByte(c)
	}

	// Close anything truncation left open.
	if inString {
		sb.WriteByte('"')
	}
	repaired := strings.TrimRight(sb.String(), " \t\r\n")
	repaired = strings.TrimSuffix(repaired, ",")
	var closers strings.Builder
	closers.WriteString(repaired)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			closers.WriteByte('}')
		} else {
			closers.WriteByte(']')
		}
	}
	return closers.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// coerceRecords shapes raw elements into closed Records.
func coerceRecords(elems []any, schema FieldSchema) ParseResult {
	result := ParseResult{Records: []Record{}}
	for _, elem := range elems {
		obj, ok := elem.(map[string]any)
		if !ok {
			result.Dropped++
			continue
		}
		rec := NewRecord(schema)
		for _, field := range schema {
			if v, ok := obj[field]; ok {
				rec.Set(field, stringifyValue(v))
			}
		}
		if rec.Empty() {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

// stringifyValue coerces a decoded JSON value to its string
// representation.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
