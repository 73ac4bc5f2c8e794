package transcript

import (
	"testing"

	"github.com/Levilaell/snapcast/models"
)

func entry(text string, start, duration float64) models.TranscriptEntry {
	return models.TranscriptEntry{Text: text, Start: start, Duration: duration}
}

func TestAlign(t *testing.T) {
	tests := []struct {
		name       string
		entries    []models.TranscriptEntry
		start, end float64
		want       string
	}{
		{
			name:    "empty transcript",
			entries: nil,
			start:   0, end: 90,
			want: "",
		},
		{
			name: "no matches",
			entries: []models.TranscriptEntry{
				entry("way before", 0, 5),
				entry("way after", 200, 5),
			},
			start: 50, end: 80,
			want: "",
		},
		{
			name: "entry ending exactly at window start is excluded",
			entries: []models.TranscriptEntry{
				entry("touching", 10, 5), // [10,15) vs [15,20)
				entry("inside", 16, 2),
			},
			start: 15, end: 20,
			want: "inside",
		},
		{
			name: "entry straddling window start is included",
			entries: []models.TranscriptEntry{
				entry("straddles", 14, 2), // [14,16) vs [15,20)
			},
			start: 15, end: 20,
			want: "straddles",
		},
		{
			name: "zero-duration entry inside window matches",
			entries: []models.TranscriptEntry{
				entry("point", 17, 0),
			},
			start: 15, end: 20,
			want: "point",
		},
		{
			name: "original order kept even when entries are unsorted",
			entries: []models.TranscriptEntry{
				entry("second", 30, 5),
				entry("first", 20, 5),
				entry("outside", 100, 5),
			},
			start: 15, end: 60,
			want: "second first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Align(tt.entries, tt.start, tt.end)
			if got != tt.want {
				t.Errorf("Align() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAlignIdempotent(t *testing.T) {
	entries := []models.TranscriptEntry{
		entry("one", 10, 5),
		entry("two", 15, 5),
		entry("three", 20, 5),
	}
	first := Align(entries, 12, 22)
	second := Align(entries, 12, 22)
	if first != second {
		t.Errorf("Align is not deterministic: %q vs %q", first, second)
	}
}
