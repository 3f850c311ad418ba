package transcript

import "testing"

func TestIsNonSpeech(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", true},
		{"whitespace only", "   \t ", true},
		{"bracketed music", "[Music]", true},
		{"bracketed portuguese", "[Música]", true},
		{"applause with punctuation", "[Applause]!", true},
		{"note glyphs", "♪ ♪ ♪", true},
		{"notes and punctuation", "♪♫ ... ♪", true},
		{"blank audio", "[BLANK_AUDIO]", true},
		{"hallucinated outro", "Thanks for watching", true},
		{"repeated word artifact", "la la la la la", true},
		{"paren cue", "(Music)", true},
		{"paren cue with noise", "(applause) ...", true},
		{"bracket leaves little", "[laughing] ha", true},
		{"normal speech", "Hello, how are you today?", false},
		{"speech around marker", "The band started playing [music] while we kept talking about the trip", false},
		{"speech with parens", "We visited the museum (the big one) and walked home afterwards", false},
		{"repeated but short", "no no no", false},
		{"real sentence", "I went to the store yesterday.", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNonSpeech(tc.text); got != tc.want {
				t.Errorf("IsNonSpeech(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
