package main

import (
	"strings"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{59.4, "0:59"},
		{61, "1:01"},
		{605.7, "10:06"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.seconds); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B"},
		[][]string{{"only"}},
		[]columnAlignment{alignLeft, alignLeft},
	)
	if !strings.Contains(out, "only") {
		t.Fatalf("rendered table missing cell value:\n%s", out)
	}
}
