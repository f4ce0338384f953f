package scrapemaster

import "strings"

// MergeRecords combines the per-chunk record lists for one URL into a
// single deduplicated sequence. The input is indexed by chunk order.
//
// Two records are judged the same entity when no non-empty field actively
// conflicts and at least half of the candidate's non-empty fields exactly
// equal the existing record's corresponding non-empty fields, after
// normalization (whitespace trimming, case-folding of email-like fields).
// Records sharing no non-empty field never merge. When records merge,
// non-empty values win over empty ones; when both sides are non-empty the
// earlier chunk's value is kept, so the result is stable and
// deterministic for a given chunk-index ordering.
//
// Output preserves first-seen order across chunks.
func MergeRecords(perChunk [][]Record) []Record {
	var merged []Record
	for _, records := range perChunk {
		for _, candidate := range records {
			candidate = trimRecord(candidate)
			if candidate.Empty() {
				continue
			}
			if i := findMatch(merged, candidate); i >= 0 {
				absorb(&merged[i], candidate)
			} else {
				merged = append(merged, candidate)
			}
		}
	}
	return merged
}

// findMatch returns the index of the first merged record that candidate
// duplicates, or -1.
func findMatch(merged []Record, candidate Record) int {
	for i := range merged {
		if sameEntity(merged[i], candidate) {
			return i
		}
	}
	return -1
}

// sameEntity applies the majority-agreement duplicate rule.
func sameEntity(existing, candidate Record) bool {
	agreeing := 0
	nonEmpty := 0
	overlapping := 0

	for _, field := range candidate.Schema() {
		cv := normalizeValue(field, candidate.Get(field))
		if cv == "" {
			continue
		}
		nonEmpty++

		ev := normalizeValue(field, existing.Get(field))
		if ev == "" {
			continue
		}
		overlapping++

		if ev != cv {
			// A conflicting pair of non-empty values disqualifies the
			// match outright.
			return false
		}
		agreeing++
	}

	if overlapping == 0 {
		return false
	}
	return agreeing*2 >= nonEmpty
}

// absorb merges candidate into existing field-wise: non-empty values fill
// empty fields; existing non-empty values are kept.
func absorb(existing *Record, candidate Record) {
	for _, field := range existing.Schema() {
		if existing.Get(field) == "" {
			if v := candidate.Get(field); v != "" {
				existing.Set(field, v)
			}
		}
	}
}

// trimRecord returns a copy of rec with every value whitespace-trimmed.
func trimRecord(rec Record) Record {
	out := NewRecord(rec.Schema())
	for _, field := range rec.Schema() {
		out.Set(field, strings.TrimSpace(rec.Get(field)))
	}
	return out
}

// normalizeValue prepares a value for duplicate comparison. Email-like
// fields compare case-insensitively; everything else is exact after
// trimming.
func normalizeValue(field, value string) string {
	value = strings.TrimSpace(value)
	if isEmailField(field) {
		return strings.ToLower(value)
	}
	return value
}

func isEmailField(field string) bool {
	return strings.Contains(strings.ToLower(field), "mail")
}
