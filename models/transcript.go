package models

// TranscriptEntry is a single time-stamped piece of transcript text as
// fetched from the caption source. Start and Duration are in seconds.
// Entries are usually chronological, but the source does not guarantee it,
// so consumers must not assume sorted input.
type TranscriptEntry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}
