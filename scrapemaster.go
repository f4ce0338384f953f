// Package scrapemaster extracts structured records (names, emails, phone
// numbers, job titles) from web pages by sending page content to an LLM
// endpoint and parsing its structured response. Pages are fetched with a
// headless browser, converted to markdown, split into model-sized chunks,
// extracted chunk by chunk, and merged into deduplicated per-URL record
// sets grouped by domain for export.
//
// This package contains domain types, interfaces, and the pure extraction
// core (chunking, prompt building, response parsing, merging, domain
// aggregation) following Ben Johnson's Standard Package Layout.
// Implementations live in subdirectories named after their primary
// dependency (e.g., rod/, openai/, htmltomarkdown/).
package scrapemaster
