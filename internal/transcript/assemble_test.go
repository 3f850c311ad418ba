package transcript

import (
	"math"
	"strings"
	"testing"
)

func newTestAssembler() *Assembler {
	return NewAssembler(NewSegmenter(5, 7, 2))
}

func TestAssembleDropsNonSpeech(t *testing.T) {
	a := newTestAssembler()
	segments := a.Assemble([]Utterance{
		{Start: 0, End: 2, Text: "[Music]"},
		{Start: 2, End: 5, Text: "Welcome back to the show everyone."},
		{Start: 5, End: 6, Text: "♪ ♪ ♪"},
	}, nil)

	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %#v", len(segments), segments)
	}
	if segments[0].Text != "Welcome back to the show everyone." {
		t.Errorf("unexpected text: %q", segments[0].Text)
	}
	if segments[0].Start != 2 || segments[0].End != 5 {
		t.Errorf("single-piece segment must keep the full span, got [%v, %v]", segments[0].Start, segments[0].End)
	}
}

func TestAssembleInterpolatedSpansCoverParent(t *testing.T) {
	a := newTestAssembler()
	segments := a.Assemble([]Utterance{
		{Start: 0.0, End: 10.0, Text: "I went to the store and I bought some milk and bread for breakfast."},
	}, nil)

	if len(segments) < 2 {
		t.Fatalf("expected the utterance to be split, got %#v", segments)
	}
	if segments[0].Start != 0.0 {
		t.Errorf("first span must start at parent start, got %v", segments[0].Start)
	}
	if segments[len(segments)-1].End != 10.0 {
		t.Errorf("last span must end exactly at parent end, got %v", segments[len(segments)-1].End)
	}
	for i := 1; i < len(segments); i++ {
		if segments[i].Start != segments[i-1].End {
			t.Errorf("spans not contiguous at %d: %v != %v", i, segments[i].Start, segments[i-1].End)
		}
	}
	var total float64
	for _, seg := range segments {
		if seg.End <= seg.Start {
			t.Errorf("segment %d has non-positive duration: [%v, %v]", seg.ID, seg.Start, seg.End)
		}
		total += seg.End - seg.Start
	}
	if math.Abs(total-10.0) > 1e-9 {
		t.Errorf("span durations sum to %v, want 10.0", total)
	}
}

func TestAssembleSpanProportionalToLength(t *testing.T) {
	spans := interpolateSpans(0, 9, []string{"aa", "aaaa"})
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if math.Abs(spans[0].end-3.0) > 1e-9 {
		t.Errorf("short piece should get a third of the span, got end=%v", spans[0].end)
	}
	if spans[1].end != 9 {
		t.Errorf("final span must be pinned to parent end, got %v", spans[1].end)
	}
}

func TestAssembleIDsStrictlyIncrease(t *testing.T) {
	a := newTestAssembler()
	segments := a.Assemble([]Utterance{
		{Start: 0, End: 8, Text: "I went to the store and I bought some milk and bread for breakfast."},
		{Start: 8, End: 9, Text: "[Applause]"},
		{Start: 9, End: 12, Text: "Then I walked straight back home."},
	}, nil)

	if len(segments) < 3 {
		t.Fatalf("expected at least 3 segments, got %#v", segments)
	}
	for i, seg := range segments {
		if seg.ID != i {
			t.Errorf("segment %d has ID %d, IDs must increase from zero without gaps", i, seg.ID)
		}
	}
}

func TestAssembleReportsProgressPerUtterance(t *testing.T) {
	a := newTestAssembler()
	var percents []float64
	var messages []string
	a.Assemble([]Utterance{
		{Start: 0, End: 1, Text: "Hello there my good friend."},
		{Start: 1, End: 2, Text: "[Music]"},
		{Start: 2, End: 3, Text: "See you again next week."},
		{Start: 3, End: 4, Text: "Goodbye everyone and thanks again."},
	}, func(percent float64, message string) {
		percents = append(percents, percent)
		messages = append(messages, message)
	})

	want := []float64{25, 50, 75, 100}
	if len(percents) != len(want) {
		t.Fatalf("expected %d reports, got %d", len(want), len(percents))
	}
	for i := range want {
		if math.Abs(percents[i]-want[i]) > 1e-9 {
			t.Errorf("report %d: percent %v, want %v", i, percents[i], want[i])
		}
	}
	if !strings.Contains(messages[0], "1/4") || !strings.Contains(messages[3], "4/4") {
		t.Errorf("messages should count utterances: %#v", messages)
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	a := newTestAssembler()
	if segments := a.Assemble(nil, nil); len(segments) != 0 {
		t.Fatalf("expected no segments for empty input, got %#v", segments)
	}
}
