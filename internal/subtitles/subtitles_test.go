package subtitles

import (
	"strings"
	"testing"
)

func TestBuildCuesChunking(t *testing.T) {
	// 23 words with chunk size 5: four full cues plus a final cue of 3.
	words := make([]string, 23)
	for i := range words {
		words[i] = "word"
	}
	cues := BuildCues(strings.Join(words, " "), 46, 5)

	if len(cues) != 5 {
		t.Fatalf("expected 5 cues, got %d", len(cues))
	}
	for i, c := range cues[:4] {
		if got := len(strings.Fields(c.Text)); got != 5 {
			t.Errorf("cue %d has %d words, want 5", i, got)
		}
	}
	if got := len(strings.Fields(cues[4].Text)); got != 3 {
		t.Errorf("final cue has %d words, want 3", got)
	}
	for i, c := range cues {
		if c.Sequence != i+1 {
			t.Errorf("cue %d sequence = %d, want %d", i, c.Sequence, i+1)
		}
	}
}

func TestBuildCuesEvenTiming(t *testing.T) {
	cues := BuildCues("a b c d e f g h i j k l m n o p q r s t u v w x y", 10, 5)
	if len(cues) != 5 {
		t.Fatalf("expected 5 cues, got %d", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 2 {
		t.Errorf("cue 0 spans [%v,%v), want [0,2)", cues[0].Start, cues[0].End)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start != cues[i-1].End {
			t.Errorf("cue %d starts at %v but previous ends at %v", i, cues[i].Start, cues[i-1].End)
		}
	}
	last := cues[len(cues)-1]
	if last.End != 10 {
		t.Errorf("last cue ends at %v, want total duration 10", last.End)
	}
}

func TestBuildCuesNeverExceedsDuration(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 13) // 65 words, 13 cues
	cues := BuildCues(text, 33.3, 5)
	for _, c := range cues {
		if c.End > 33.3 {
			t.Errorf("cue %d ends at %v, beyond clip duration", c.Sequence, c.End)
		}
	}
}

func TestBuildCuesEmptyInput(t *testing.T) {
	if cues := BuildCues("", 90, 5); cues != nil {
		t.Errorf("expected no cues for empty text, got %d", len(cues))
	}
	if cues := BuildCues("   \n\t ", 90, 5); cues != nil {
		t.Errorf("expected no cues for whitespace text, got %d", len(cues))
	}
	if srt := FormatSRT(nil); srt != "" {
		t.Errorf("expected empty SRT for zero cues, got %q", srt)
	}
}

func TestBuildCuesDefaultChunkSize(t *testing.T) {
	cues := BuildCues("a b c d e f", 12, 0)
	if len(cues) != 2 {
		t.Fatalf("expected default chunk size %d to give 2 cues, got %d", DefaultChunkSize, len(cues))
	}
}

func TestFormatSRT(t *testing.T) {
	cues := BuildCues("one two three four five six seven eight nine ten", 10, 5)
	got := FormatSRT(cues)
	want := "1\n" +
		"00:00:00,000 --> 00:00:05,000\n" +
		"one two three four five\n\n" +
		"2\n" +
		"00:00:05,000 --> 00:00:10,000\n" +
		"six seven eight nine ten\n\n"
	if got != want {
		t.Errorf("FormatSRT() = %q, want %q", got, want)
	}

	// Byte-for-byte round trip on repeated calls.
	if again := FormatSRT(BuildCues("one two three four five six seven eight nine ten", 10, 5)); again != got {
		t.Error("FormatSRT is not deterministic for identical input")
	}
}

func TestFormatSRTTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{2, "00:00:02,000"},
		{61.5, "00:01:01,500"},
		{-3, "00:00:00,000"},
		// Sub-millisecond remainders truncate instead of rounding up.
		{1.2345, "00:00:01,234"},
		{1.9999999, "00:00:01,999"},
	}
	for _, tt := range tests {
		if got := FormatSRTTime(tt.seconds); got != tt.want {
			t.Errorf("FormatSRTTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
