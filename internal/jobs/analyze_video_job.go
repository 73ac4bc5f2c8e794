package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Levilaell/snapcast/internal/moments"
	"github.com/Levilaell/snapcast/internal/youtube"
	"github.com/Levilaell/snapcast/models"
)

// Transcript languages tried in order when fetching captions.
var preferredLanguages = []string{"pt-BR", "pt", "en"}

// TranscriptSource provides video metadata and time-stamped transcripts.
type TranscriptSource interface {
	GetVideoDetails(ctx context.Context, urlOrID string) (*youtube.VideoDetails, error)
	GetTranscript(ctx context.Context, urlOrID string, preferred ...string) ([]models.TranscriptEntry, error)
}

// MomentSource proposes raw candidate moments for a transcript.
type MomentSource interface {
	AnalyzeViralMoments(ctx context.Context, transcript string, entries []models.TranscriptEntry) ([]moments.RawMoment, error)
}

// VideoUpdater is the slice of the video store this job writes through.
type VideoUpdater interface {
	Update(id uuid.UUID, fields map[string]interface{}) (models.Video, error)
}

// AnalyzeVideoJob fetches metadata and transcript for a video, asks the
// moment source for candidates and persists the validated, ranked result.
// A video without transcript or without viral moments completes with an
// empty moment list; only metadata failures mark the video failed.
type AnalyzeVideoJob struct {
	VideoID    uuid.UUID
	YoutubeURL string
	Videos     VideoUpdater
	Transcript TranscriptSource
	Moments    MomentSource
	Log        *logrus.Logger
}

// ID identifies the job in queue and worker logs.
func (j *AnalyzeVideoJob) ID() string {
	return fmt.Sprintf("analyze_video_%s", j.VideoID)
}

// Execute runs the analysis.
func (j *AnalyzeVideoJob) Execute(ctx context.Context) error {
	logger := j.Log.WithField("video_id", j.VideoID)

	if _, err := j.Videos.Update(j.VideoID, map[string]interface{}{
		"status": models.VideoStatusProcessing,
	}); err != nil {
		return err
	}

	details, err := j.Transcript.GetVideoDetails(ctx, j.YoutubeURL)
	if err != nil {
		logger.WithError(err).Error("fetching video details")
		j.fail(fmt.Sprintf("could not fetch video details: %v", err))
		return err
	}

	entries, err := j.Transcript.GetTranscript(ctx, j.YoutubeURL, preferredLanguages...)
	if err != nil {
		// No transcript is a valid outcome, not a failure; analysis just
		// has nothing to rank.
		logger.WithError(err).Warn("fetching transcript, continuing without one")
		entries = nil
	}

	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, e.Text)
	}
	fullText := strings.Join(texts, " ")

	var ranked []moments.Moment
	if fullText != "" {
		raw, err := j.Moments.AnalyzeViralMoments(ctx, fullText, entries)
		if err != nil {
			// Analysis failure degrades to "no viral moments found".
			logger.WithError(err).Warn("moment analysis failed, storing empty moment list")
			raw = nil
		}
		ranked = moments.ValidateAndRank(raw)
	}

	fields := map[string]interface{}{
		"title":                      details.Title,
		"duration":                   int(details.Duration.Seconds()),
		"thumbnail_url":              details.ThumbnailURL,
		"transcript":                 fullText,
		"transcript_with_timestamps": entries,
		"viral_moments":              ranked,
		"status":                     models.VideoStatusCompleted,
	}
	if _, err := j.Videos.Update(j.VideoID, fields); err != nil {
		logger.WithError(err).Error("persisting analysis result")
		return err
	}

	logger.WithField("moments", len(ranked)).Info("video analysis completed")
	return nil
}

func (j *AnalyzeVideoJob) fail(message string) {
	if _, err := j.Videos.Update(j.VideoID, map[string]interface{}{
		"status":        models.VideoStatusFailed,
		"error_message": message,
	}); err != nil {
		j.Log.WithError(err).WithField("video_id", j.VideoID).Error("persisting failed status")
	}
}
