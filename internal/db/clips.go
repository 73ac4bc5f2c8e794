package db

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/Levilaell/snapcast/internal/clipstate"
	"github.com/Levilaell/snapcast/models"
)

const clipsTable = "clips"

// ClipStore persists clip jobs. Status and progress writes for one clip go
// through UpdateStatus so they hit the database in submission order.
type ClipStore struct {
	client *postgrest.Client
}

// NewClipStore returns a store backed by the given PostgREST client.
func NewClipStore(client *postgrest.Client) *ClipStore {
	return &ClipStore{client: client}
}

// Create inserts a new clip record and returns the stored row.
func (s *ClipStore) Create(clip models.Clip) (models.Clip, error) {
	var results []models.Clip
	_, err := s.client.From(clipsTable).
		Insert(clip, false, "", "representation", "").
		ExecuteTo(&results)
	if err != nil {
		return models.Clip{}, fmt.Errorf("inserting clip: %w", err)
	}
	if len(results) == 0 {
		return models.Clip{}, fmt.Errorf("no record returned after clip insert")
	}
	return results[0], nil
}

// GetByID fetches one clip. The bool result is false when no row matches.
func (s *ClipStore) GetByID(id uuid.UUID) (models.Clip, bool, error) {
	var clips []models.Clip
	_, err := s.client.From(clipsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		ExecuteTo(&clips)
	if err != nil {
		return models.Clip{}, false, fmt.Errorf("fetching clip %s: %w", id, err)
	}
	if len(clips) == 0 {
		return models.Clip{}, false, nil
	}
	return clips[0], true, nil
}

// ListByVideo returns a video's clips, best score first.
func (s *ClipStore) ListByVideo(videoID uuid.UUID) ([]models.Clip, error) {
	var clips []models.Clip
	_, err := s.client.From(clipsTable).
		Select("*", "", false).
		Eq("video_id", videoID.String()).
		Order("viral_score", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&clips)
	if err != nil {
		return nil, fmt.Errorf("listing clips for video %s: %w", videoID, err)
	}
	if clips == nil {
		clips = []models.Clip{}
	}
	return clips, nil
}

// ListByRange returns every clip covering exactly the same window of the
// same video. The pipeline re-reads this under its range lock to detect a
// sibling record that already owns the range.
func (s *ClipStore) ListByRange(videoID uuid.UUID, startTime, endTime float64) ([]models.Clip, error) {
	var clips []models.Clip
	_, err := s.client.From(clipsTable).
		Select("*", "", false).
		Eq("video_id", videoID.String()).
		Eq("start_time", formatSeconds(startTime)).
		Eq("end_time", formatSeconds(endTime)).
		ExecuteTo(&clips)
	if err != nil {
		return nil, fmt.Errorf("listing clips by range for video %s: %w", videoID, err)
	}
	return clips, nil
}

// FindByRange looks up an existing clip covering exactly the same window of
// the same video. Used as the idempotency check before any download work.
func (s *ClipStore) FindByRange(videoID uuid.UUID, startTime, endTime float64) (models.Clip, bool, error) {
	clips, err := s.ListByRange(videoID, startTime, endTime)
	if err != nil {
		return models.Clip{}, false, err
	}
	if len(clips) == 0 {
		return models.Clip{}, false, nil
	}
	return clips[0], true, nil
}

// Update applies a partial update and returns the stored row.
func (s *ClipStore) Update(id uuid.UUID, fields map[string]interface{}) (models.Clip, error) {
	fields["updated_at"] = time.Now()

	var results []models.Clip
	_, err := s.client.From(clipsTable).
		Update(fields, "representation", "").
		Eq("id", id.String()).
		ExecuteTo(&results)
	if err != nil {
		return models.Clip{}, fmt.Errorf("updating clip %s: %w", id, err)
	}
	if len(results) == 0 {
		return models.Clip{}, fmt.Errorf("clip %s not found for update", id)
	}
	return results[0], nil
}

// UpdateStatus persists a status value, and the progress percentage unless
// progress is clipstate.ProgressUnchanged.
func (s *ClipStore) UpdateStatus(id uuid.UUID, status clipstate.Status, progress int) error {
	fields := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if progress != clipstate.ProgressUnchanged {
		fields["progress_percentage"] = progress
	}

	_, _, err := s.client.From(clipsTable).
		Update(fields, "", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("updating clip %s status to %s: %w", id, status, err)
	}
	return nil
}

// Delete removes a clip, reporting whether a row was actually deleted.
func (s *ClipStore) Delete(id uuid.UUID) (bool, error) {
	_, count, err := s.client.From(clipsTable).
		Delete("minimal", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return false, fmt.Errorf("deleting clip %s: %w", id, err)
	}
	return count > 0, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
