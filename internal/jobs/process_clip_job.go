// Package jobs holds the work units submitted to the worker pool.
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Levilaell/snapcast/internal/pipeline"
	"github.com/Levilaell/snapcast/models"
)

// ProcessClipJob runs the download/transcode pipeline for one clip. The
// processor persists all status, progress and error fields itself; the
// returned error only feeds worker logging.
type ProcessClipJob struct {
	ClipID    uuid.UUID
	Video     models.Video
	Processor *pipeline.Processor
}

// ID identifies the job in queue and worker logs.
func (j *ProcessClipJob) ID() string {
	return fmt.Sprintf("process_clip_%s", j.ClipID)
}

// Execute runs the pipeline.
func (j *ProcessClipJob) Execute(ctx context.Context) error {
	return j.Processor.Process(ctx, j.ClipID, j.Video)
}
