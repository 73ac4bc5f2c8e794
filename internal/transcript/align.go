package transcript

import (
	"strings"

	"github.com/Levilaell/snapcast/internal/timerange"
	"github.com/Levilaell/snapcast/models"
)

// Align extracts the transcript text overlapping the window
// [startTime, endTime). Matching entries are kept in their original
// relative order — the source order is assumed chronological even though
// the caption API does not enforce it — and joined with single spaces.
//
// An empty transcript or a window with no matches yields "", which callers
// treat as "no subtitles", not as an error.
func Align(entries []models.TranscriptEntry, startTime, endTime float64) string {
	var parts []string
	for _, e := range entries {
		if timerange.Overlaps(e.Start, e.Start+e.Duration, startTime, endTime) {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, " ")
}
