package memory

import "unicode"

// TranscriptTokenBudget caps how much rendered conversation is used as
// the recall similarity query. Long conversations are never sent
// unbounded to the store.
const TranscriptTokenBudget = 2048

// TruncateTokens returns the prefix of text containing at most n
// whitespace-delimited tokens. The cut is a byte prefix of the input, so
// the same input always yields the same query byte-for-byte.
func TruncateTokens(text string, n int) string {
	if n <= 0 {
		return ""
	}
	tokens := 0
	inToken := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inToken = false
			continue
		}
		if !inToken {
			inToken = true
			tokens++
			if tokens > n {
				return text[:i]
			}
		}
	}
	return text
}
