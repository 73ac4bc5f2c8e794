package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Levilaell/snapcast/internal/clipstate"
	"github.com/Levilaell/snapcast/internal/moments"
	"github.com/Levilaell/snapcast/internal/worker"
	"github.com/Levilaell/snapcast/models"
)

type fakeVideos struct {
	videos map[uuid.UUID]models.Video
}

func (f *fakeVideos) Create(v models.Video) (models.Video, error) {
	f.videos[v.ID] = v
	return v, nil
}

func (f *fakeVideos) GetByID(id uuid.UUID) (models.Video, bool, error) {
	v, ok := f.videos[id]
	return v, ok, nil
}

func (f *fakeVideos) GetByYoutubeID(youtubeID string) (models.Video, bool, error) {
	for _, v := range f.videos {
		if v.YoutubeID == youtubeID {
			return v, true, nil
		}
	}
	return models.Video{}, false, nil
}

func (f *fakeVideos) List() ([]models.Video, error) { return nil, nil }

func (f *fakeVideos) Update(id uuid.UUID, fields map[string]interface{}) (models.Video, error) {
	return f.videos[id], nil
}

type fakeClips struct {
	clips map[uuid.UUID]models.Clip
}

func (f *fakeClips) Create(c models.Clip) (models.Clip, error) {
	f.clips[c.ID] = c
	return c, nil
}

func (f *fakeClips) GetByID(id uuid.UUID) (models.Clip, bool, error) {
	c, ok := f.clips[id]
	return c, ok, nil
}

func (f *fakeClips) ListByVideo(videoID uuid.UUID) ([]models.Clip, error) {
	var out []models.Clip
	for _, c := range f.clips {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClips) FindByRange(videoID uuid.UUID, startTime, endTime float64) (models.Clip, bool, error) {
	for _, c := range f.clips {
		if c.VideoID == videoID && c.StartTime == startTime && c.EndTime == endTime {
			return c, true, nil
		}
	}
	return models.Clip{}, false, nil
}

func (f *fakeClips) Update(id uuid.UUID, fields map[string]interface{}) (models.Clip, error) {
	c, ok := f.clips[id]
	if !ok {
		return models.Clip{}, fmt.Errorf("clip %s not found", id)
	}
	if v, ok := fields["status"].(string); ok {
		c.Status = v
	}
	if v, ok := fields["progress_percentage"].(int); ok {
		c.ProgressPercentage = v
	}
	if v, ok := fields["start_time"].(float64); ok {
		c.StartTime = v
	}
	if v, ok := fields["end_time"].(float64); ok {
		c.EndTime = v
	}
	if v, ok := fields["title"].(string); ok {
		c.Title = v
	}
	f.clips[id] = c
	return c, nil
}

func (f *fakeClips) Delete(id uuid.UUID) (bool, error) {
	_, ok := f.clips[id]
	delete(f.clips, id)
	return ok, nil
}

type fakeQueue struct {
	jobs []worker.Job
}

func (q *fakeQueue) SubmitJob(job worker.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func newTestHandler() (*ApplicationHandler, *fakeVideos, *fakeClips, *fakeQueue) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	videos := &fakeVideos{videos: make(map[uuid.UUID]models.Video)}
	clips := &fakeClips{clips: make(map[uuid.UUID]models.Clip)}
	queue := &fakeQueue{}
	h := NewApplicationHandler(videos, clips, queue, nil, nil, nil, log)
	return h, videos, clips, queue
}

func newTestApp(h *ApplicationHandler) *fiber.App {
	app := fiber.New()
	api := app.Group("/api/v1")
	clipRoutes := api.Group("/videos/:videoId/clips")
	clipRoutes.Post("", h.CreateClip)
	clipRoutes.Patch("/:clipId", h.UpdateClip)
	clipRoutes.Get("/:clipId/download", h.DownloadClip)
	return app
}

func analyzedVideo() models.Video {
	return models.Video{
		ID:        uuid.New(),
		YoutubeID: "abc123def45",
		Status:    models.VideoStatusCompleted,
		ViralMoments: []moments.Moment{
			{StartTime: 30, EndTime: 75, Duration: 45, Title: "Best moment", ViralScore: 88},
			{StartTime: 120, EndTime: 150, Duration: 30, Title: "Second", ViralScore: 60},
		},
		CreatedAt: time.Now(),
	}
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateClipQueuesJob(t *testing.T) {
	h, videos, clips, queue := newTestHandler()
	video := analyzedVideo()
	videos.videos[video.ID] = video
	app := newTestApp(h)

	resp, err := app.Test(jsonRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/videos/%s/clips", video.ID),
		fiber.Map{"moment_index": 0}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("queued %d jobs, want 1", len(queue.jobs))
	}
	if len(clips.clips) != 1 {
		t.Fatalf("stored %d clips, want 1", len(clips.clips))
	}
	for _, c := range clips.clips {
		if c.StartTime != 30 || c.EndTime != 75 {
			t.Errorf("clip range = [%g, %g], want [30, 75]", c.StartTime, c.EndTime)
		}
		if c.Status != string(clipstate.StatusPending) {
			t.Errorf("clip status = %s, want pending", c.Status)
		}
	}
}

func TestCreateClipIdempotentOnRange(t *testing.T) {
	h, videos, clips, queue := newTestHandler()
	video := analyzedVideo()
	videos.videos[video.ID] = video
	existing := models.Clip{
		ID:        uuid.New(),
		VideoID:   video.ID,
		StartTime: 30,
		EndTime:   75,
		Status:    string(clipstate.StatusProcessing),
	}
	clips.clips[existing.ID] = existing
	app := newTestApp(h)

	resp, err := app.Test(jsonRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/videos/%s/clips", video.ID),
		fiber.Map{"moment_index": 0}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200 for an existing range", resp.StatusCode)
	}
	if len(queue.jobs) != 0 {
		t.Errorf("queued %d jobs, want 0", len(queue.jobs))
	}
	if len(clips.clips) != 1 {
		t.Errorf("stored %d clips, want the original only", len(clips.clips))
	}
}

func TestCreateClipRejectsBadRequests(t *testing.T) {
	h, videos, _, _ := newTestHandler()
	analyzing := analyzedVideo()
	analyzing.Status = models.VideoStatusProcessing
	videos.videos[analyzing.ID] = analyzing
	done := analyzedVideo()
	videos.videos[done.ID] = done
	app := newTestApp(h)

	tests := []struct {
		name    string
		videoID string
		body    fiber.Map
		want    int
	}{
		{"unknown video", uuid.NewString(), fiber.Map{"moment_index": 0}, fiber.StatusNotFound},
		{"analysis incomplete", analyzing.ID.String(), fiber.Map{"moment_index": 0}, fiber.StatusBadRequest},
		{"index out of range", done.ID.String(), fiber.Map{"moment_index": 2}, fiber.StatusBadRequest},
		{"missing index", done.ID.String(), fiber.Map{}, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(http.MethodPost,
				fmt.Sprintf("/api/v1/videos/%s/clips", tt.videoID), tt.body))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestUpdateClipTimeEditResetsAndRequeues(t *testing.T) {
	h, videos, clips, queue := newTestHandler()
	video := analyzedVideo()
	videos.videos[video.ID] = video
	clip := models.Clip{
		ID:                 uuid.New(),
		VideoID:            video.ID,
		StartTime:          30,
		EndTime:            75,
		Status:             string(clipstate.StatusCompleted),
		ProgressPercentage: 100,
		ProcessedClipPath:  "/media/clips/old_final.mp4",
	}
	clips.clips[clip.ID] = clip
	app := newTestApp(h)

	resp, err := app.Test(jsonRequest(http.MethodPatch,
		fmt.Sprintf("/api/v1/videos/%s/clips/%s", video.ID, clip.ID),
		fiber.Map{"start_time": 35, "end_time": 80}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	got := clips.clips[clip.ID]
	if got.Status != string(clipstate.StatusPending) {
		t.Errorf("status = %s, want pending after a time edit", got.Status)
	}
	if got.ProgressPercentage != 0 {
		t.Errorf("progress = %d, want 0 after reset", got.ProgressPercentage)
	}
	if got.StartTime != 35 || got.EndTime != 80 {
		t.Errorf("range = [%g, %g], want [35, 80]", got.StartTime, got.EndTime)
	}
	if len(queue.jobs) != 1 {
		t.Errorf("queued %d jobs, want 1 reprocess job", len(queue.jobs))
	}
}

func TestUpdateClipTimeEditRejectedWhileRunning(t *testing.T) {
	for _, status := range []clipstate.Status{clipstate.StatusDownloading, clipstate.StatusProcessing} {
		t.Run(string(status), func(t *testing.T) {
			h, videos, clips, queue := newTestHandler()
			video := analyzedVideo()
			videos.videos[video.ID] = video
			clip := models.Clip{
				ID:                 uuid.New(),
				VideoID:            video.ID,
				StartTime:          30,
				EndTime:            75,
				Status:             string(status),
				ProgressPercentage: 40,
			}
			clips.clips[clip.ID] = clip
			app := newTestApp(h)

			resp, err := app.Test(jsonRequest(http.MethodPatch,
				fmt.Sprintf("/api/v1/videos/%s/clips/%s", video.ID, clip.ID),
				fiber.Map{"start_time": 35, "end_time": 80}))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != fiber.StatusConflict {
				t.Errorf("status = %d, want 409 while a job is in flight", resp.StatusCode)
			}
			if len(queue.jobs) != 0 {
				t.Errorf("queued %d jobs, want 0", len(queue.jobs))
			}
			got := clips.clips[clip.ID]
			if got.Status != string(status) || got.StartTime != 30 || got.EndTime != 75 {
				t.Errorf("record changed to %+v, want untouched", got)
			}
		})
	}
}

func TestUpdateClipTitleEditAllowedWhileRunning(t *testing.T) {
	h, videos, clips, queue := newTestHandler()
	video := analyzedVideo()
	videos.videos[video.ID] = video
	clip := models.Clip{ID: uuid.New(), VideoID: video.ID, StartTime: 30, EndTime: 75, Status: string(clipstate.StatusDownloading)}
	clips.clips[clip.ID] = clip
	app := newTestApp(h)

	resp, err := app.Test(jsonRequest(http.MethodPatch,
		fmt.Sprintf("/api/v1/videos/%s/clips/%s", video.ID, clip.ID),
		fiber.Map{"title": "New title"}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200 for a metadata-only edit", resp.StatusCode)
	}
	if got := clips.clips[clip.ID]; got.Title != "New title" {
		t.Errorf("title = %q, want updated", got.Title)
	}
	if len(queue.jobs) != 0 {
		t.Errorf("queued %d jobs, want 0 for a metadata-only edit", len(queue.jobs))
	}
}

func TestUpdateClipRejectsInvalidDuration(t *testing.T) {
	h, videos, clips, queue := newTestHandler()
	video := analyzedVideo()
	videos.videos[video.ID] = video
	clip := models.Clip{ID: uuid.New(), VideoID: video.ID, StartTime: 30, EndTime: 75, Status: string(clipstate.StatusCompleted)}
	clips.clips[clip.ID] = clip
	app := newTestApp(h)

	resp, err := app.Test(jsonRequest(http.MethodPatch,
		fmt.Sprintf("/api/v1/videos/%s/clips/%s", video.ID, clip.ID),
		fiber.Map{"start_time": 30, "end_time": 35}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a 5-second clip", resp.StatusCode)
	}
	if len(queue.jobs) != 0 {
		t.Errorf("queued %d jobs, want 0", len(queue.jobs))
	}
	if got := clips.clips[clip.ID]; got.StartTime != 30 || got.EndTime != 75 {
		t.Errorf("range changed to [%g, %g], want untouched", got.StartTime, got.EndTime)
	}
}

func TestDownloadClipRequiresCompleted(t *testing.T) {
	h, videos, clips, _ := newTestHandler()
	video := analyzedVideo()
	videos.videos[video.ID] = video
	processing := models.Clip{ID: uuid.New(), VideoID: video.ID, Status: string(clipstate.StatusProcessing)}
	completed := models.Clip{
		ID:                uuid.New(),
		VideoID:           video.ID,
		Title:             "Best moment!",
		Status:            string(clipstate.StatusCompleted),
		ProcessedClipPath: "/media/clips/final.mp4",
	}
	clips.clips[processing.ID] = processing
	clips.clips[completed.ID] = completed
	app := newTestApp(h)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/videos/%s/clips/%s/download", video.ID, processing.ID), nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400 while still processing", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/videos/%s/clips/%s/download", video.ID, completed.ID), nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 when completed", resp.StatusCode)
	}
	var body struct {
		Data struct {
			FilePath string `json:"file_path"`
			FileName string `json:"file_name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Data.FilePath != "/media/clips/final.mp4" {
		t.Errorf("file_path = %q", body.Data.FilePath)
	}
	if body.Data.FileName != "Best_moment.mp4" {
		t.Errorf("file_name = %q, want sanitized title", body.Data.FileName)
	}
}
