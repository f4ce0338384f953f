package scrapemaster

import (
	"fmt"
	"strings"
)

// systemPrompt establishes the extraction role. It is sent with every
// request; there is no conversation memory between chunks, so the
// contract must be restated each time.
const systemPrompt = "You are an intelligent text extraction and conversion assistant. " +
	"Your task is to extract structured information from the given text and convert it " +
	"into a pure JSON format. The JSON should contain only the structured data extracted " +
	"from the text, with no additional commentary, explanations, or extraneous information."

// SystemPrompt returns the fixed system message for extraction requests.
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt produces the user prompt for one chunk. It is deterministic:
// the same schema and chunk text always yield the same prompt. The model
// is the only source of extraction logic, so the structural contract
// (array only, exact keys, empty strings for absences, [] for nothing)
// is stated unambiguously; the parser's correctness depends on it.
func BuildPrompt(schema FieldSchema, chunkText string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Extract the following fields from the content: %s.\n\n", strings.Join(schema, ", "))

	sb.WriteString("Respond with ONLY a JSON array, no prose before or after it.\n")
	sb.WriteString("Each array element must be an object with exactly these keys: ")
	for i, field := range schema {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", field)
	}
	sb.WriteString(".\n")
	sb.WriteString("Use an empty string for any field not found in the content.\n")
	sb.WriteString("If the content contains no relevant records, respond with an empty array: [].\n\n")

	sb.WriteString("Format the output EXACTLY as:\n[\n    {")
	for i, field := range schema {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: \"value\"", field)
	}
	sb.WriteString("}\n]\n\n")

	sb.WriteString("Content:\n")
	sb.WriteString(chunkText)

	return sb.String()
}
