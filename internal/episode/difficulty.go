package episode

import (
	"strings"

	"lingopod/internal/transcript"
)

// Difficulty is the coarse learner-facing classification of an episode.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known classifications.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Rank orders difficulties easy < medium < hard for listing. Unknown values
// sort last.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 3
}

// Classify derives a difficulty from speech rate and vocabulary complexity.
// Words per minute contributes 0-3 points (boundaries inclusive, so exactly
// 100 wpm still counts as the slowest bucket) and mean word length 0-2 points;
// a total of at most 1 is easy, at most 3 is medium, anything above is hard.
// Pure function of the segments and duration.
func Classify(segments []transcript.Segment, duration float64) Difficulty {
	totalWords := 0
	totalWordLen := 0
	for _, seg := range segments {
		for _, word := range strings.Fields(seg.Text) {
			totalWords++
			totalWordLen += len([]rune(word))
		}
	}
	if totalWords == 0 || duration <= 0 {
		return DifficultyEasy
	}

	wpm := float64(totalWords) / (duration / 60)
	meanLen := float64(totalWordLen) / float64(totalWords)

	score := 0
	switch {
	case wpm <= 100:
	case wpm <= 130:
		score++
	case wpm <= 160:
		score += 2
	default:
		score += 3
	}
	switch {
	case meanLen < 4.5:
	case meanLen < 5.5:
		score++
	default:
		score += 2
	}

	switch {
	case score <= 1:
		return DifficultyEasy
	case score <= 3:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}
