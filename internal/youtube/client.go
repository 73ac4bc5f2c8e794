// Package youtube fetches source video metadata and time-stamped
// transcripts. A video without captions is a valid, non-error outcome; the
// analysis flow treats the empty transcript as "nothing to align".
package youtube

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	ytdl "github.com/kkdai/youtube/v2"

	"github.com/Levilaell/snapcast/models"
)

// VideoDetails is the metadata slice of a source video we persist.
type VideoDetails struct {
	ID           string
	Title        string
	Author       string
	Duration     time.Duration
	ThumbnailURL string
	Captions     []CaptionTrack
}

// CaptionTrack identifies one subtitle track of a video.
type CaptionTrack struct {
	LanguageCode string
	Name         string
	BaseURL      string
}

// Client wraps the YouTube scraping client plus the plain HTTP client used
// for timedtext caption downloads.
type Client struct {
	yt         ytdl.Client
	httpClient *http.Client
}

// NewClient builds a Client. httpClient may be nil, in which case a
// 30-second-timeout default is used.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
}

// ExtractVideoID pulls the 11-character video ID out of the usual YouTube
// URL shapes. It returns "" when the URL matches none of them.
func ExtractVideoID(url string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// GetVideoDetails fetches title, duration, thumbnail and the available
// caption tracks for a video URL or ID.
func (c *Client) GetVideoDetails(ctx context.Context, urlOrID string) (*VideoDetails, error) {
	video, err := c.yt.GetVideoContext(ctx, urlOrID)
	if err != nil {
		return nil, fmt.Errorf("fetching video details: %w", err)
	}

	captions := make([]CaptionTrack, len(video.CaptionTracks))
	for i, track := range video.CaptionTracks {
		captions[i] = CaptionTrack{
			LanguageCode: track.LanguageCode,
			Name:         track.Name.SimpleText,
			BaseURL:      track.BaseURL,
		}
	}

	thumbnail := ""
	if n := len(video.Thumbnails); n > 0 {
		// Thumbnails are ordered smallest first.
		thumbnail = video.Thumbnails[n-1].URL
	}

	return &VideoDetails{
		ID:           video.ID,
		Title:        video.Title,
		Author:       video.Author,
		Duration:     video.Duration,
		ThumbnailURL: thumbnail,
		Captions:     captions,
	}, nil
}

// FindCaption picks the caption track for one of the preferred language
// codes, in order, falling back to the first available track. It returns
// nil when the video has no captions at all.
func (d *VideoDetails) FindCaption(preferred ...string) *CaptionTrack {
	if len(d.Captions) == 0 {
		return nil
	}
	for _, lang := range preferred {
		for i := range d.Captions {
			if d.Captions[i].LanguageCode == lang {
				return &d.Captions[i]
			}
		}
	}
	return &d.Captions[0]
}

// GetTranscript fetches the transcript for a video in the first available
// preferred language. A video without captions yields an empty slice and
// no error.
func (c *Client) GetTranscript(ctx context.Context, urlOrID string, preferred ...string) ([]models.TranscriptEntry, error) {
	details, err := c.GetVideoDetails(ctx, urlOrID)
	if err != nil {
		return nil, err
	}
	track := details.FindCaption(preferred...)
	if track == nil {
		return nil, nil
	}
	return c.FetchCaptionByURL(ctx, track.BaseURL)
}
