package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Levilaell/snapcast/internal/moments"
)

// Video analysis statuses. Clip-level statuses live in internal/clipstate;
// videos only go through the coarse analyze lifecycle.
const (
	VideoStatusPending    = "pending"
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"
	VideoStatusFailed     = "failed"
)

// Video represents a YouTube source video and its analysis results in the
// database. The transcript is immutable once fetched; viral moments are
// stored already validated and ranked so that moment_index selection stays
// stable across requests.
type Video struct {
	ID                uuid.UUID         `json:"id"`
	YoutubeURL        string            `json:"youtube_url"`
	YoutubeID         string            `json:"youtube_id"`
	Title             string            `json:"title,omitempty"`
	Duration          int               `json:"duration,omitempty"` // seconds
	ThumbnailURL      string            `json:"thumbnail_url,omitempty"`
	Transcript        string            `json:"transcript,omitempty"`
	TranscriptEntries []TranscriptEntry `json:"transcript_with_timestamps,omitempty"`
	ViralMoments      []moments.Moment  `json:"viral_moments,omitempty"`
	Status            string            `json:"status"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
