package transcript

import (
	"fmt"
	"strings"
)

// ProgressFunc receives a completion percentage (0-100) and a human-readable
// message. Callers wanting progress scaled into a sub-range of a larger bar
// pass a pre-scaled function.
type ProgressFunc func(percent float64, message string)

// Assembler composes the noise filter, the segmenter, and timestamp
// interpolation into the full utterance-to-segment transform.
type Assembler struct {
	segmenter *Segmenter
}

// NewAssembler builds an assembler around the given segmenter.
func NewAssembler(segmenter *Segmenter) *Assembler {
	return &Assembler{segmenter: segmenter}
}

// Assemble converts raw utterances into ordered practice segments. Non-speech
// utterances are dropped; long utterances are split and their time span
// distributed across the derived pieces proportionally to character length.
// Segment IDs increase strictly across the whole assembly.
func (a *Assembler) Assemble(utterances []Utterance, report ProgressFunc) []Segment {
	segments := make([]Segment, 0, len(utterances))
	nextID := 0

	for i, utt := range utterances {
		text := strings.TrimSpace(utt.Text)
		if !IsNonSpeech(text) {
			pieces := a.segmenter.Split(text)
			if len(pieces) == 1 {
				segments = append(segments, Segment{ID: nextID, Start: utt.Start, End: utt.End, Text: pieces[0]})
				nextID++
			} else if len(pieces) > 1 {
				spans := interpolateSpans(utt.Start, utt.End, pieces)
				for j, piece := range pieces {
					segments = append(segments, Segment{ID: nextID, Start: spans[j].start, End: spans[j].end, Text: piece})
					nextID++
				}
			}
		}

		if report != nil {
			percent := float64(i+1) / float64(len(utterances)) * 100
			report(percent, fmt.Sprintf("Processing utterance %d/%d", i+1, len(utterances)))
		}
	}

	return segments
}

type timeSpan struct {
	start float64
	end   float64
}

// interpolateSpans distributes the parent [start, end) span across pieces
// proportionally to character length. This is a deliberate approximation:
// without word-level timing data a linear allocation is good enough for
// practice playback. All-empty pieces fall back to an equal split.
func interpolateSpans(start, end float64, pieces []string) []timeSpan {
	totalChars := 0
	for _, piece := range pieces {
		totalChars += len([]rune(piece))
	}

	duration := end - start
	spans := make([]timeSpan, len(pieces))
	current := start
	for i, piece := range pieces {
		var d float64
		if totalChars > 0 {
			d = duration * float64(len([]rune(piece))) / float64(totalChars)
		} else {
			d = duration / float64(len(pieces))
		}
		segEnd := current + d
		// Pin the final boundary to the parent's end so the union of spans
		// covers the utterance exactly despite float accumulation.
		if i == len(pieces)-1 {
			segEnd = end
		}
		spans[i] = timeSpan{start: current, end: segEnd}
		current = segEnd
	}
	return spans
}
