package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Levilaell/snapcast/internal/clipstate"
	"github.com/Levilaell/snapcast/internal/jobs"
	"github.com/Levilaell/snapcast/internal/pipeline"
	"github.com/Levilaell/snapcast/internal/timerange"
	"github.com/Levilaell/snapcast/models"
	"github.com/Levilaell/snapcast/utils"
)

// CreateClipPayload is the body of POST /videos/:videoId/clips. The index
// addresses the video's ranked moment list.
type CreateClipPayload struct {
	MomentIndex *int `json:"moment_index" validate:"required,min=0"`
}

// CreateClip creates a clip job from one of the video's ranked moments and
// queues it for processing. A clip already covering exactly the same time
// range of the same video is returned as-is, so repeated submissions never
// download twice.
func (h *ApplicationHandler) CreateClip(c *fiber.Ctx) error {
	video, ok, err := h.videoFromParams(c)
	if err != nil || !ok {
		return err
	}

	payload := new(CreateClipPayload)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	if video.Status != models.VideoStatusCompleted {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("video analysis is not complete (status: %s)", video.Status))
	}
	idx := *payload.MomentIndex
	if idx >= len(video.ViralMoments) {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("moment_index %d out of range, video has %d moments", idx, len(video.ViralMoments)))
	}
	moment := video.ViralMoments[idx]

	existing, found, err := h.Clips.FindByRange(video.ID, moment.StartTime, moment.EndTime)
	if err != nil {
		h.Log.WithError(err).WithField("video_id", video.ID).Error("checking for existing clip")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not check for existing clip")
	}
	if found {
		return utils.RespondWithJSON(c, fiber.StatusOK, existing)
	}

	now := time.Now()
	clip, err := h.Clips.Create(models.Clip{
		ID:                 uuid.New(),
		VideoID:            video.ID,
		Title:              moment.Title,
		Description:        moment.Description,
		StartTime:          moment.StartTime,
		EndTime:            moment.EndTime,
		Duration:           moment.Duration,
		ViralScore:         moment.ViralScore,
		ViralReason:        moment.ViralReason,
		Category:           moment.Category,
		Status:             string(clipstate.StatusPending),
		ProgressPercentage: 0,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		h.Log.WithError(err).WithField("video_id", video.ID).Error("creating clip record")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not create clip")
	}

	if err := h.queueClip(clip.ID, video); err != nil {
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "processing queue is full, try again later")
	}
	return utils.RespondWithJSON(c, fiber.StatusAccepted, clip)
}

// ListClips returns all clips of a video, best score first.
func (h *ApplicationHandler) ListClips(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid video ID format")
	}
	clips, err := h.Clips.ListByVideo(videoID)
	if err != nil {
		h.Log.WithError(err).WithField("video_id", videoID).Error("listing clips")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not retrieve clips")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, clips)
}

// GetClip returns one clip with its processing status and progress.
func (h *ApplicationHandler) GetClip(c *fiber.Ctx) error {
	clip, ok, err := h.clipFromParams(c)
	if err != nil || !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, clip)
}

// UpdateClipPayload is the body of PATCH /videos/:videoId/clips/:clipId.
// Pointers distinguish omitted fields from explicit zero values.
type UpdateClipPayload struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	StartTime   *float64 `json:"start_time,omitempty"`
	EndTime     *float64 `json:"end_time,omitempty"`
}

// UpdateClip edits a clip. Title and description edits are plain updates;
// changing either boundary of the time range resets the clip to pending,
// wipes the previous run's outputs and error, and queues it again.
func (h *ApplicationHandler) UpdateClip(c *fiber.Ctx) error {
	clip, ok, err := h.clipFromParams(c)
	if err != nil || !ok {
		return err
	}

	payload := new(UpdateClipPayload)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid request body")
	}

	fields := make(map[string]interface{})
	if payload.Title != nil {
		fields["title"] = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		fields["description"] = *payload.Description
	}

	timeEdited := payload.StartTime != nil || payload.EndTime != nil
	if timeEdited {
		// A reset while a job is in flight would leave two jobs writing the
		// same record; the edit has to wait for the current run to finish.
		if clipstate.Running(clipstate.Status(clip.Status)) {
			return utils.RespondWithError(c, fiber.StatusConflict,
				fmt.Sprintf("clip is being processed (status: %s), retry the time edit when it finishes", clip.Status))
		}

		newStart, newEnd := clip.StartTime, clip.EndTime
		if payload.StartTime != nil {
			newStart = *payload.StartTime
		}
		if payload.EndTime != nil {
			newEnd = *payload.EndTime
		}
		if newStart < 0 || !timerange.ValidClipDuration(newStart, newEnd) {
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				fmt.Sprintf("clip duration must be between %d and %d seconds", timerange.MinClipSeconds, timerange.MaxClipSeconds))
		}

		tr, err := clipstate.Advance(clipstate.Status(clip.Status), clipstate.EventReset)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
		}
		fields["start_time"] = newStart
		fields["end_time"] = newEnd
		fields["duration"] = newEnd - newStart
		fields["status"] = string(tr.To)
		fields["progress_percentage"] = tr.Progress[0]
		if tr.ClearError {
			fields["error_message"] = ""
		}
		// The previous run's artifacts no longer describe this range.
		fields["original_clip_path"] = ""
		fields["processed_clip_path"] = ""
		fields["subtitle_text"] = ""
	}

	if len(fields) == 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "no update fields provided")
	}

	updated, err := h.Clips.Update(clip.ID, fields)
	if err != nil {
		h.Log.WithError(err).WithField("clip_id", clip.ID).Error("updating clip")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not update clip")
	}

	if timeEdited {
		video, found, err := h.Videos.GetByID(clip.VideoID)
		if err != nil || !found {
			h.Log.WithError(err).WithField("video_id", clip.VideoID).Error("fetching video for reprocessing")
			return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not queue clip for reprocessing")
		}
		if err := h.queueClip(updated.ID, video); err != nil {
			return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "processing queue is full, try again later")
		}
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, updated)
}

// DeleteClip removes a clip record.
func (h *ApplicationHandler) DeleteClip(c *fiber.Ctx) error {
	clip, ok, err := h.clipFromParams(c)
	if err != nil || !ok {
		return err
	}
	deleted, err := h.Clips.Delete(clip.ID)
	if err != nil {
		h.Log.WithError(err).WithField("clip_id", clip.ID).Error("deleting clip")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not delete clip")
	}
	if !deleted {
		return utils.RespondWithError(c, fiber.StatusNotFound, "clip not found")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"id": clip.ID})
}

// DownloadClip hands out the processed file location once processing has
// finished, with a filename derived from the clip title.
func (h *ApplicationHandler) DownloadClip(c *fiber.Ctx) error {
	clip, ok, err := h.clipFromParams(c)
	if err != nil || !ok {
		return err
	}
	if clip.Status != string(clipstate.StatusCompleted) {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("clip is not ready for download (status: %s)", clip.Status))
	}
	path := clip.OutputFilePath()
	if path == "" {
		notAvail := &pipeline.NotAvailableError{What: "processed clip file"}
		return utils.RespondWithError(c, fiber.StatusNotFound, notAvail.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"file_path": path,
		"file_name": downloadFileName(clip),
	})
}

func (h *ApplicationHandler) queueClip(clipID uuid.UUID, video models.Video) error {
	job := &jobs.ProcessClipJob{ClipID: clipID, Video: video, Processor: h.Processor}
	if err := h.Queue.SubmitJob(job); err != nil {
		h.Log.WithError(err).WithField("clip_id", clipID).Error("queueing clip job")
		return err
	}
	return nil
}

// clipFromParams parses :videoId and :clipId and fetches the clip, scoped
// to the video in the route. When the returned bool is false the response
// has already been written.
func (h *ApplicationHandler) clipFromParams(c *fiber.Ctx) (models.Clip, bool, error) {
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return models.Clip{}, false, utils.RespondWithError(c, fiber.StatusBadRequest, "invalid video ID format")
	}
	clipID, err := uuid.Parse(c.Params("clipId"))
	if err != nil {
		return models.Clip{}, false, utils.RespondWithError(c, fiber.StatusBadRequest, "invalid clip ID format")
	}
	clip, found, err := h.Clips.GetByID(clipID)
	if err != nil {
		h.Log.WithError(err).WithField("clip_id", clipID).Error("fetching clip")
		return models.Clip{}, false, utils.RespondWithError(c, fiber.StatusInternalServerError, "could not retrieve clip")
	}
	if !found || clip.VideoID != videoID {
		return models.Clip{}, false, utils.RespondWithError(c, fiber.StatusNotFound, "clip not found")
	}
	return clip, true, nil
}

// downloadFileName builds a filesystem-safe filename from the clip title.
func downloadFileName(clip models.Clip) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, clip.Title)
	if name == "" {
		name = "clip_" + clip.ID.String()
	}
	return name + ".mp4"
}
