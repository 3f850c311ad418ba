// Package episode defines the persisted episode record, its deterministic
// identifier, and the difficulty classification derived from a finished
// transcript.
package episode

import (
	"time"

	"lingopod/internal/transcript"
)

// Record is one processed episode: the source URL, the fetched audio file,
// and the assembled bilingual segments. Records are created once per URL and
// mutated only when the difficulty is edited or the audio path is refreshed.
type Record struct {
	EpisodeID  string               `json:"episode_id"`
	URL        string               `json:"url"`
	Title      string               `json:"title"`
	Language   string               `json:"language"`
	AudioPath  string               `json:"audio_path"`
	Segments   []transcript.Segment `json:"segments"`
	Duration   float64              `json:"duration"`
	Difficulty Difficulty           `json:"difficulty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// Summary is the listing view of a record, without the segment payload.
type Summary struct {
	EpisodeID  string     `json:"episode_id"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Language   string     `json:"language"`
	Duration   float64    `json:"duration"`
	Difficulty Difficulty `json:"difficulty"`
	Segments   int        `json:"segments"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Summarize strips a record down to its listing view.
func (r *Record) Summarize() Summary {
	return Summary{
		EpisodeID:  r.EpisodeID,
		URL:        r.URL,
		Title:      r.Title,
		Language:   r.Language,
		Duration:   r.Duration,
		Difficulty: r.Difficulty,
		Segments:   len(r.Segments),
		UpdatedAt:  r.UpdatedAt,
	}
}
