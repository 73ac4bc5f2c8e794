package timerange

import "testing"

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     float64
		want                           bool
	}{
		{"entry ends exactly at window start", 10, 15, 15, 20, false},
		{"entry starts exactly at window end", 20, 25, 15, 20, false},
		{"entry straddles window start", 14, 16, 15, 20, true},
		{"entry inside window", 16, 18, 15, 20, true},
		{"window inside entry", 10, 30, 15, 20, true},
		{"disjoint before", 1, 5, 15, 20, false},
		{"disjoint after", 25, 30, 15, 20, false},
		// Zero-duration entries still match when strictly inside the window.
		{"zero-length inside", 17, 17, 15, 20, true},
		{"zero-length at window start", 15, 15, 15, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps(%v, %v, %v, %v) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}

func TestValidClipDuration(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		want       bool
	}{
		{"exactly min", 0, 15, true},
		{"exactly max", 10, 100, true},
		{"one over max", 0, 95, false},
		{"too short", 0, 14.9, false},
		{"inverted range", 30, 20, false},
		{"zero length", 30, 30, false},
		{"mid range", 100, 160, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidClipDuration(tt.start, tt.end); got != tt.want {
				t.Errorf("ValidClipDuration(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}
