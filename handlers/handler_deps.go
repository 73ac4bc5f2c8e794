// Package handlers implements the HTTP surface: video submission and
// analysis results, clip creation from ranked moments, and clip lifecycle
// operations. Handlers validate and persist, then hand long-running work to
// the job queue.
package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Levilaell/snapcast/internal/jobs"
	"github.com/Levilaell/snapcast/internal/pipeline"
	"github.com/Levilaell/snapcast/internal/worker"
	"github.com/Levilaell/snapcast/models"
)

// VideoStore is the video persistence surface handlers depend on.
type VideoStore interface {
	Create(video models.Video) (models.Video, error)
	GetByID(id uuid.UUID) (models.Video, bool, error)
	GetByYoutubeID(youtubeID string) (models.Video, bool, error)
	List() ([]models.Video, error)
	Update(id uuid.UUID, fields map[string]interface{}) (models.Video, error)
}

// ClipStore is the clip persistence surface handlers depend on.
type ClipStore interface {
	Create(clip models.Clip) (models.Clip, error)
	GetByID(id uuid.UUID) (models.Clip, bool, error)
	ListByVideo(videoID uuid.UUID) ([]models.Clip, error)
	FindByRange(videoID uuid.UUID, startTime, endTime float64) (models.Clip, bool, error)
	Update(id uuid.UUID, fields map[string]interface{}) (models.Clip, error)
	Delete(id uuid.UUID) (bool, error)
}

// JobQueue accepts background jobs without blocking the request.
type JobQueue interface {
	SubmitJob(job worker.Job) error
}

// ApplicationHandler holds the shared dependencies for all handlers.
type ApplicationHandler struct {
	Videos     VideoStore
	Clips      ClipStore
	Queue      JobQueue
	Processor  *pipeline.Processor
	Transcript jobs.TranscriptSource
	Moments    jobs.MomentSource
	Log        *logrus.Logger
	Validate   *validator.Validate
}

// NewApplicationHandler wires an ApplicationHandler from its dependencies.
func NewApplicationHandler(
	videos VideoStore,
	clips ClipStore,
	queue JobQueue,
	processor *pipeline.Processor,
	transcript jobs.TranscriptSource,
	momentSource jobs.MomentSource,
	log *logrus.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		Videos:     videos,
		Clips:      clips,
		Queue:      queue,
		Processor:  processor,
		Transcript: transcript,
		Moments:    momentSource,
		Log:        log,
		Validate:   validator.New(),
	}
}
