// Package db wraps the Supabase PostgREST tables behind small repository
// types. Clients are injected at construction so tests and tools can point
// the stores anywhere.
package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/Levilaell/snapcast/models"
)

const videosTable = "videos"

// VideoStore persists source videos and their analysis results.
type VideoStore struct {
	client *postgrest.Client
}

// NewVideoStore returns a store backed by the given PostgREST client.
func NewVideoStore(client *postgrest.Client) *VideoStore {
	return &VideoStore{client: client}
}

// Create inserts a new video record and returns the stored row.
func (s *VideoStore) Create(video models.Video) (models.Video, error) {
	var results []models.Video
	_, err := s.client.From(videosTable).
		Insert(video, false, "", "representation", "").
		ExecuteTo(&results)
	if err != nil {
		return models.Video{}, fmt.Errorf("inserting video: %w", err)
	}
	if len(results) == 0 {
		return models.Video{}, fmt.Errorf("no record returned after video insert")
	}
	return results[0], nil
}

// GetByID fetches one video. The bool result is false when no row matches.
func (s *VideoStore) GetByID(id uuid.UUID) (models.Video, bool, error) {
	var videos []models.Video
	_, err := s.client.From(videosTable).
		Select("*", "", false).
		Eq("id", id.String()).
		ExecuteTo(&videos)
	if err != nil {
		return models.Video{}, false, fmt.Errorf("fetching video %s: %w", id, err)
	}
	if len(videos) == 0 {
		return models.Video{}, false, nil
	}
	return videos[0], true, nil
}

// GetByYoutubeID finds an existing record for a YouTube video ID, so the
// same source is not analyzed twice.
func (s *VideoStore) GetByYoutubeID(youtubeID string) (models.Video, bool, error) {
	var videos []models.Video
	_, err := s.client.From(videosTable).
		Select("*", "", false).
		Eq("youtube_id", youtubeID).
		ExecuteTo(&videos)
	if err != nil {
		return models.Video{}, false, fmt.Errorf("fetching video by youtube id %s: %w", youtubeID, err)
	}
	if len(videos) == 0 {
		return models.Video{}, false, nil
	}
	return videos[0], true, nil
}

// List returns all videos, newest first.
func (s *VideoStore) List() ([]models.Video, error) {
	var videos []models.Video
	_, err := s.client.From(videosTable).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&videos)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, nil
}

// Update applies a partial update and returns the stored row.
func (s *VideoStore) Update(id uuid.UUID, fields map[string]interface{}) (models.Video, error) {
	fields["updated_at"] = time.Now()

	var results []models.Video
	_, err := s.client.From(videosTable).
		Update(fields, "representation", "").
		Eq("id", id.String()).
		ExecuteTo(&results)
	if err != nil {
		return models.Video{}, fmt.Errorf("updating video %s: %w", id, err)
	}
	if len(results) == 0 {
		return models.Video{}, fmt.Errorf("video %s not found for update", id)
	}
	return results[0], nil
}
