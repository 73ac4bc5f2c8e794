package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Levilaell/snapcast/internal/jobs"
	"github.com/Levilaell/snapcast/internal/moments"
	"github.com/Levilaell/snapcast/internal/youtube"
	"github.com/Levilaell/snapcast/models"
	"github.com/Levilaell/snapcast/utils"
)

// CreateVideoPayload is the body of POST /videos.
type CreateVideoPayload struct {
	YoutubeURL string `json:"youtube_url" validate:"required,url"`
}

// CreateVideo registers a YouTube video and queues its analysis. Submitting
// a URL that was analyzed before returns the existing record instead of
// re-running the analysis.
func (h *ApplicationHandler) CreateVideo(c *fiber.Ctx) error {
	payload := new(CreateVideoPayload)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	youtubeID := youtube.ExtractVideoID(payload.YoutubeURL)
	if youtubeID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "not a recognized YouTube URL")
	}

	existing, found, err := h.Videos.GetByYoutubeID(youtubeID)
	if err != nil {
		h.Log.WithError(err).Error("looking up video by youtube id")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not check for existing video")
	}
	if found {
		return utils.RespondWithJSON(c, fiber.StatusOK, existing)
	}

	now := time.Now()
	video, err := h.Videos.Create(models.Video{
		ID:         uuid.New(),
		YoutubeURL: payload.YoutubeURL,
		YoutubeID:  youtubeID,
		Status:     models.VideoStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		h.Log.WithError(err).Error("creating video record")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not create video")
	}

	job := &jobs.AnalyzeVideoJob{
		VideoID:    video.ID,
		YoutubeURL: video.YoutubeURL,
		Videos:     h.Videos,
		Transcript: h.Transcript,
		Moments:    h.Moments,
		Log:        h.Log,
	}
	if err := h.Queue.SubmitJob(job); err != nil {
		h.Log.WithError(err).WithField("video_id", video.ID).Error("queueing analysis job")
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "analysis queue is full, try again later")
	}

	return utils.RespondWithJSON(c, fiber.StatusAccepted, video)
}

// ListVideos returns all registered videos, newest first.
func (h *ApplicationHandler) ListVideos(c *fiber.Ctx) error {
	videos, err := h.Videos.List()
	if err != nil {
		h.Log.WithError(err).Error("listing videos")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "could not retrieve videos")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, videos)
}

// GetVideo returns one video with its analysis state and moments.
func (h *ApplicationHandler) GetVideo(c *fiber.Ctx) error {
	video, ok, err := h.videoFromParams(c)
	if err != nil || !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, video)
}

// GetVideoMoments returns the validated, ranked viral moments of a video.
// The list order is stable, so moment_index in clip creation addresses the
// same moment a previous read showed.
func (h *ApplicationHandler) GetVideoMoments(c *fiber.Ctx) error {
	video, ok, err := h.videoFromParams(c)
	if err != nil || !ok {
		return err
	}
	if video.Status != models.VideoStatusCompleted {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("video analysis is not complete (status: %s)", video.Status))
	}
	ranked := video.ViralMoments
	if ranked == nil {
		ranked = []moments.Moment{}
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, ranked)
}

// videoFromParams parses :videoId and fetches the record. When the returned
// bool is false the response has already been written.
func (h *ApplicationHandler) videoFromParams(c *fiber.Ctx) (models.Video, bool, error) {
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return models.Video{}, false, utils.RespondWithError(c, fiber.StatusBadRequest, "invalid video ID format")
	}
	video, found, err := h.Videos.GetByID(videoID)
	if err != nil {
		h.Log.WithError(err).WithField("video_id", videoID).Error("fetching video")
		return models.Video{}, false, utils.RespondWithError(c, fiber.StatusInternalServerError, "could not retrieve video")
	}
	if !found {
		return models.Video{}, false, utils.RespondWithError(c, fiber.StatusNotFound, "video not found")
	}
	return video, true, nil
}
