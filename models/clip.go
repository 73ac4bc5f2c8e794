package models

import (
	"time"

	"github.com/google/uuid"
)

// Clip represents one extraction-to-vertical-clip pipeline run in the
// database. Start/end are absolute offsets into the source video, in
// seconds; subtitle cue timing is local to the clip's own timeline.
type Clip struct {
	ID                 uuid.UUID `json:"id"`
	VideoID            uuid.UUID `json:"video_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	StartTime          float64   `json:"start_time"`
	EndTime            float64   `json:"end_time"`
	Duration           float64   `json:"duration"`
	SubtitleText       string    `json:"subtitle_text,omitempty"`
	ViralScore         float64   `json:"viral_score"`
	ViralReason        string    `json:"viral_reason,omitempty"`
	Category           string    `json:"category,omitempty"`
	OriginalClipPath   string    `json:"original_clip_path,omitempty"`
	ProcessedClipPath  string    `json:"processed_clip_path,omitempty"`
	Status             string    `json:"status"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	ProgressPercentage int       `json:"progress_percentage"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// OutputFilePath returns the final processed file when available, falling
// back to the raw downloaded segment.
func (c *Clip) OutputFilePath() string {
	if c.ProcessedClipPath != "" {
		return c.ProcessedClipPath
	}
	return c.OriginalClipPath
}
