// Package subtitles turns aligned transcript text into timed SRT cues on a
// clip-local timeline. Cue timing is an even distribution across the clip,
// not a re-derivation of per-word timestamps; it keeps the burned-in
// captions readable without needing word-level timing from the source.
package subtitles

import (
	"fmt"
	"strings"
)

// DefaultChunkSize is how many words each cue carries.
const DefaultChunkSize = 5

// Cue is a single caption entry. Start and End are seconds relative to the
// clip's own 0-based timeline, never the source video's.
type Cue struct {
	Sequence int     `json:"sequence"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
}

// BuildCues splits text into fixed-size word groups and distributes them
// evenly across [0, totalDuration). Empty or whitespace-only text yields no
// cues. Cue end times never exceed totalDuration. The output depends only
// on the inputs, so identical calls produce identical cues.
func BuildCues(text string, totalDuration float64, chunkSize int) []Cue {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	words := strings.Fields(text)
	if len(words) == 0 || totalDuration <= 0 {
		return nil
	}

	var cues []Cue
	cueCount := (len(words) + chunkSize - 1) / chunkSize
	cueDuration := totalDuration / float64(cueCount)
	for i := 0; i < cueCount; i++ {
		lo := i * chunkSize
		hi := lo + chunkSize
		if hi > len(words) {
			hi = len(words)
		}
		cues = append(cues, Cue{
			Sequence: i + 1,
			Start:    float64(i) * cueDuration,
			End:      float64(i+1) * cueDuration,
			Text:     strings.Join(words[lo:hi], " "),
		})
	}
	// Guard against float accumulation pushing the last cue past the clip.
	cues[len(cues)-1].End = totalDuration
	return cues
}

// FormatSRT serializes cues in the standard SubRip convention: sequence
// line, "HH:MM:SS,mmm --> HH:MM:SS,mmm" line, text, blank separator.
// Zero cues serialize to the empty string.
func FormatSRT(cues []Cue) string {
	var b strings.Builder
	for _, c := range cues {
		fmt.Fprintf(&b, "%d\n", c.Sequence)
		fmt.Fprintf(&b, "%s --> %s\n", FormatSRTTime(c.Start), FormatSRTTime(c.End))
		fmt.Fprintf(&b, "%s\n\n", c.Text)
	}
	return b.String()
}

// FormatSRTTime renders seconds as an SRT timestamp (HH:MM:SS,mmm). The
// sub-millisecond remainder is truncated, never rounded up, so a timestamp
// can only understate the instant it marks.
func FormatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	// Truncate in whole milliseconds so the H/M/S parts stay consistent
	// with the dropped remainder.
	total := int(seconds * 1000)
	hours := total / 3600000
	minutes := (total % 3600000) / 60000
	secs := (total % 60000) / 1000
	millis := total % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
