package scrapemaster

import (
	"strings"
	"unicode/utf8"
)

// Chunk is a bounded slice of page text sent to the model in one request.
type Chunk struct {
	// Index is the chunk's position within the page.
	Index int

	// Text is the chunk content, including any overlap carried from the
	// previous chunk.
	Text string

	// Overlap is the byte length of the prefix of Text repeated from the
	// previous chunk. Stripping each chunk's overlap prefix and
	// concatenating the remainders restores the original text.
	Overlap int
}

// Split divides text into chunks of at most maxSize bytes, carrying up to
// overlap bytes of trailing context into each subsequent chunk. It cuts
// on structural boundaries (paragraph breaks, then line breaks, then
// sentence ends, then spaces), falling back to a hard cut only when a
// single structural unit exceeds the budget. Split is a pure function:
// the same input always yields the same chunks.
//
// Empty or whitespace-only text yields zero chunks, which callers treat
// as a page with no extractable content rather than an error.
func Split(text string, maxSize, overlap int) ([]Chunk, error) {
	if maxSize <= 0 {
		return nil, Errorf(EINVALID, "chunk size must be positive, got %d", maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, Errorf(EINVALID, "overlap must be non-negative and smaller than chunk size %d, got %d", maxSize, overlap)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var chunks []Chunk
	carry := ""
	pos := 0
	for pos < len(text) {
		// The carry never exceeds overlap, so the budget stays positive.
		budget := maxSize - len(carry)
		end := pos + budget
		if end >= len(text) {
			end = len(text)
		} else {
			end = cutPoint(text, pos, end)
		}
		fresh := text[pos:end]
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Text:    carry + fresh,
			Overlap: len(carry),
		})
		carry = overlapTail(fresh, overlap)
		pos = end
	}
	return chunks, nil
}

// cutPoint returns the best position to end a chunk within (start, limit].
// It prefers paragraph breaks, then line breaks, then sentence ends, then
// spaces, cutting just after the boundary so separators stay with the
// preceding chunk.
func cutPoint(text string, start, limit int) int {
	window := text[start:limit]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return start + i + 2
	}
	if i := strings.LastIndexByte(window, '\n'); i >= 0 {
		return start + i + 1
	}
	if i := strings.LastIndex(window, ". "); i >= 0 {
		return start + i + 2
	}
	if i := strings.LastIndexByte(window, ' '); i >= 0 {
		return start + i + 1
	}

	// Hard cut: back up to a rune boundary. start is always a rune
	// boundary, so this terminates above start.
	cut := limit
	for cut > start && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == start {
		return limit
	}
	return cut
}

// overlapTail returns up to overlap trailing bytes of s to carry into the
// next chunk, preferring to start after a space or newline so the overlap
// begins on a whole word.
func overlapTail(s string, overlap int) string {
	if overlap == 0 || s == "" {
		return ""
	}
	if len(s) <= overlap {
		return s
	}
	start := len(s) - overlap
	if i := strings.IndexAny(s[start:], " \n"); i >= 0 && start+i+1 < len(s) {
		return s[start+i+1:]
	}
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
