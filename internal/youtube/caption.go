package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/Levilaell/snapcast/models"
)

// Timedtext XML as served by the caption endpoint. Times are milliseconds.
type xmlTranscript struct {
	XMLName xml.Name  `xml:"timedtext"`
	Text    []xmlText `xml:"body>p"`
}

type xmlText struct {
	Start    int64        `xml:"t,attr"`
	Duration int64        `xml:"d,attr"`
	Segments []xmlSegment `xml:"s"`
}

type xmlSegment struct {
	Text string `xml:",chardata"`
}

// FetchCaptionByURL downloads and parses a timedtext caption track into
// transcript entries with second-based timestamps.
func (c *Client) FetchCaptionByURL(ctx context.Context, url string) ([]models.TranscriptEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building caption request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caption request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading caption response: %w", err)
	}
	return parseTranscriptXML(body)
}

func parseTranscriptXML(data []byte) ([]models.TranscriptEntry, error) {
	var transcript xmlTranscript
	if err := xml.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("parsing caption XML: %w", err)
	}

	entries := make([]models.TranscriptEntry, 0, len(transcript.Text))
	for _, p := range transcript.Text {
		var text string
		for _, seg := range p.Segments {
			text += seg.Text
		}
		if text == "" {
			continue
		}
		entries = append(entries, models.TranscriptEntry{
			Text:     text,
			Start:    float64(p.Start) / 1000,
			Duration: float64(p.Duration) / 1000,
		})
	}
	return entries, nil
}
