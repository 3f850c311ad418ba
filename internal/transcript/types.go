package transcript

import "fmt"

// Utterance is one ASR-produced chunk of recognized speech with coarse
// start/end timestamps, as returned by the transcription backend.
type Utterance struct {
	Start float64
	End   float64
	Text  string
}

// Segment is a learner-sized slice of an utterance. Segments carry
// interpolated timestamps and, once the translate phase has run, a
// translation of the text.
type Segment struct {
	ID          int     `json:"id"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Text        string  `json:"text"`
	Translation string  `json:"translation,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// StartMS returns the start time in milliseconds.
func (s Segment) StartMS() int64 {
	return int64(s.Start * 1000)
}

// EndMS returns the end time in milliseconds.
func (s Segment) EndMS() int64 {
	return int64(s.End * 1000)
}

// TimeRange formats the segment span as "MM:SS - MM:SS".
func (s Segment) TimeRange() string {
	return fmt.Sprintf("%s - %s", formatClock(s.Start), formatClock(s.End))
}

func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
