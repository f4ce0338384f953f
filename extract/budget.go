package extract

// Defaults for deriving a character budget from a model's token limits.
// Four characters per token approximates prose markdown; the overhead
// reserves room for the prompt template and the field list.
const (
	DefaultCharsPerToken       = 4.0
	DefaultPromptOverheadToken = 600
)

// ChunkBudget derives the largest chunk character budget that fits the
// model's context window once the completion and the prompt template are
// reserved. Returns 0 when the window cannot fit any content.
func ChunkBudget(contextTokens, outputTokens, promptOverhead int, charsPerToken float64) int {
	available := contextTokens - outputTokens - promptOverhead
	if available <= 0 || charsPerToken <= 0 {
		return 0
	}
	return int(float64(available) * charsPerToken)
}
