package transcript

import (
	"strings"
	"unicode"
)

// Conjunctions that mark a natural clause boundary. Long sentences without
// usable commas are split before these words, keeping the conjunction with
// the clause it introduces.
var conjunctions = map[string]struct{}{
	"and": {}, "but": {}, "or": {}, "so": {}, "because": {},
	"when": {}, "if": {}, "that": {}, "which": {}, "where": {},
	"while": {}, "although": {}, "though": {}, "since": {},
	"before": {}, "after": {}, "until": {}, "unless": {},
}

// Segmenter splits utterance text into practice-sized pieces targeting a
// word-count band of [minWords, maxWords]. Pieces below minWords may be
// force-merged up to maxWords+overflow so no fragment is emitted alone.
type Segmenter struct {
	minWords int
	maxWords int
	overflow int
}

// NewSegmenter builds a segmenter for the given band. Out-of-range values
// are clamped to the nearest usable configuration.
func NewSegmenter(minWords, maxWords, overflow int) *Segmenter {
	if minWords <= 0 {
		minWords = 1
	}
	if maxWords < minWords {
		maxWords = minWords
	}
	if overflow < 0 {
		overflow = 0
	}
	return &Segmenter{minWords: minWords, maxWords: maxWords, overflow: overflow}
}

// Split breaks text into ordered pieces within the configured band. It never
// returns an empty result; the worst case is the original text as a single
// piece. Content is never discarded.
func (s *Segmenter) Split(text string) []string {
	original := strings.TrimSpace(text)
	if original == "" {
		// Blank input has no sentences to work with. The noise filter drops
		// such utterances before segmentation, but callers still get a
		// single piece rather than an empty result.
		return []string{text}
	}

	sentences := splitSentences(original)
	if len(sentences) == 0 {
		sentences = []string{original}
	}

	pieces := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		if wordCount(sentence) <= s.maxWords {
			pieces = append(pieces, sentence)
			continue
		}
		pieces = append(pieces, s.splitLong(sentence)...)
	}

	merged := s.mergePieces(pieces)
	if len(merged) == 0 {
		return []string{original}
	}
	return merged
}

// splitSentences breaks text on sentence-terminal punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var parts []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if !isSentenceTerminator(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isSentenceTerminator(runes[i+1]) {
			i++
			b.WriteRune(runes[i])
		}
		if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
			if piece := strings.TrimSpace(b.String()); piece != "" {
				parts = append(parts, piece)
			}
			b.Reset()
		}
	}
	if piece := strings.TrimSpace(b.String()); piece != "" {
		parts = append(parts, piece)
	}
	return parts
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitLong subdivides a sentence exceeding the band, trying comma-delimited
// sub-clauses first, then clause boundaries before conjunctions, and finally
// hard word chunks for anything still too long.
func (s *Segmenter) splitLong(text string) []string {
	if strings.Contains(text, ",") {
		if pieces, ok := s.splitOnCommas(text); ok {
			return pieces
		}
	}

	clauses := splitBeforeConjunctions(text)
	out := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		if wordCount(clause) <= s.maxWords {
			out = append(out, clause)
			continue
		}
		out = append(out, chunkByWords(clause, s.maxWords)...)
	}
	return out
}

// splitOnCommas splits on commas and greedily re-merges adjacent sub-clauses
// up to maxWords. Reports ok=false when the result still contains a piece
// over the limit.
func (s *Segmenter) splitOnCommas(text string) ([]string, bool) {
	var parts []string
	for _, raw := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	var out []string
	current := ""
	for _, part := range parts {
		if current == "" {
			current = part
			continue
		}
		combined := current + ", " + part
		if wordCount(combined) <= s.maxWords {
			current = combined
		} else {
			out = append(out, current)
			current = part
		}
	}
	if current != "" {
		out = append(out, current)
	}

	for _, piece := range out {
		if wordCount(piece) > s.maxWords {
			return nil, false
		}
	}
	return out, true
}

func splitBeforeConjunctions(text string) []string {
	words := strings.Fields(text)
	var clauses []string
	var current []string
	for _, word := range words {
		bare := strings.ToLower(strings.Trim(word, ",.!?;:"))
		if _, ok := conjunctions[bare]; ok && len(current) > 0 {
			clauses = append(clauses, strings.Join(current, " "))
			current = nil
		}
		current = append(current, word)
	}
	if len(current) > 0 {
		clauses = append(clauses, strings.Join(current, " "))
	}
	if len(clauses) == 0 {
		return []string{text}
	}
	return clauses
}

func chunkByWords(text string, size int) []string {
	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// mergePieces walks the pieces left to right, accumulating while the combined
// word count stays within the band. Buffers below minWords are force-merged
// up to maxWords+overflow rather than emitted as fragments, and an undersized
// tail is merged backward into the previous piece under the same bound.
func (s *Segmenter) mergePieces(pieces []string) []string {
	var merged []string
	current := ""

	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if current == "" {
			current = piece
			continue
		}

		combined := current + " " + piece
		combinedWords := wordCount(combined)
		switch {
		case combinedWords <= s.maxWords:
			current = combined
		case wordCount(current) >= s.minWords:
			merged = append(merged, current)
			current = piece
		case combinedWords <= s.maxWords+s.overflow:
			current = combined
		default:
			merged = append(merged, current)
			current = piece
		}
	}

	if current != "" {
		if wordCount(current) < s.minWords && len(merged) > 0 {
			last := merged[len(merged)-1]
			combined := last + " " + current
			if wordCount(combined) <= s.maxWords+s.overflow {
				merged[len(merged)-1] = combined
			} else {
				merged = append(merged, current)
			}
		} else {
			merged = append(merged, current)
		}
	}

	return merged
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
