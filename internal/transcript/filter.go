package transcript

import (
	"regexp"
	"strings"
)

// Non-speech markers emitted by speech recognition models for audio that
// carries no usable speech, in English and Portuguese spelling variants,
// plus note glyphs and phrases the models are known to hallucinate over
// music or silence.
var nonSpeechMarkers = []string{
	// Bracketed markers
	"[music]", "[música]", "[musica]", "[music playing]",
	"[applause]", "[aplausos]", "[clapping]",
	"[laughter]", "[laughing]", "[risadas]", "[risos]",
	"[silence]", "[silêncio]", "[silencio]",
	"[inaudible]", "[inaudível]", "[inaudivel]",
	"[noise]", "[ruído]", "[ruido]", "[background noise]",
	"[crosstalk]", "[cross talk]",
	"[foreign]", "[foreign language]", "[speaking foreign language]",
	"[blank_audio]", "[blank audio]", "[no audio]",
	"[sounds]", "[sound]", "[sound effect]",
	"[breathing]", "[respiração]", "[heavy breathing]",
	"[coughing]", "[tosse]", "[cough]",
	"[sighing]", "[suspiro]", "[sigh]",
	"[singing]", "[cantando]",
	"[humming]",
	"[phone ringing]", "[bell]",
	"[door]", "[footsteps]",
	// Musical symbols
	"♪", "♫", "🎵", "🎶",
	// Common hallucinations over music
	"thank you.", "thanks for watching",
	"please subscribe", "like and subscribe",
	"see you next time", "bye bye",
}

var (
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	bracketedRe   = regexp.MustCompile(`\[[^\]]*\]`)
	notesOnlyRe   = regexp.MustCompile(`^[♪♫🎵🎶\s.,!?]+$`)
	parenCueRe    = regexp.MustCompile(`\([^)]*(music|applause|laughter|singing|humming)[^)]*\)`)
	parenRe       = regexp.MustCompile(`\([^)]*\)`)
)

// IsNonSpeech reports whether text is a non-speech recognition artifact
// (music, applause, silence markers, hallucinated boilerplate) rather than
// actual speech. Utterances matching this predicate are dropped before
// segmentation.
func IsNonSpeech(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	lower := strings.ToLower(trimmed)

	for _, marker := range nonSpeechMarkers {
		if !strings.Contains(lower, marker) {
			continue
		}
		// The marker counts as non-speech only when the text is mostly
		// the marker itself.
		clean := strings.ReplaceAll(lower, marker, "")
		clean = strings.TrimSpace(punctuationRe.ReplaceAllString(clean, ""))
		if len([]rune(clean)) < 5 {
			return true
		}
	}

	// Bracketed content of any kind with almost nothing around it.
	withoutBrackets := strings.TrimSpace(bracketedRe.ReplaceAllString(trimmed, ""))
	if len([]rune(withoutBrackets)) < 3 {
		return true
	}

	if notesOnlyRe.MatchString(trimmed) {
		return true
	}

	// Repetition artifact: a run of four or more copies of one word.
	words := strings.Fields(lower)
	if len(words) >= 4 {
		allSame := true
		for _, w := range words[1:] {
			if w != words[0] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}

	// Parenthesized cues like (Music) or (Applause).
	if parenCueRe.MatchString(lower) {
		withoutParens := strings.TrimSpace(parenRe.ReplaceAllString(trimmed, ""))
		if len([]rune(withoutParens)) < 5 {
			return true
		}
	}

	return false
}
