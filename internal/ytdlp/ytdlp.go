// Package ytdlp shells out to yt-dlp for sub-range segment downloads. Only
// the requested [start, end] window is fetched, never the whole source.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// DownloadSegment fetches the [startTime, endTime] window of youtubeURL
// into outputPath as mp4. The context bounds the external process; on any
// failure a partially written output file is removed best-effort.
func DownloadSegment(ctx context.Context, youtubeURL string, startTime, endTime float64, outputPath string) error {
	section := fmt.Sprintf("*%g-%g", startTime, endTime)

	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--download-sections", section,
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--merge-output-format", "mp4",
		"-o", outputPath,
		youtubeURL,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Do not leave half-written segments behind for the transcoder or a
		// retry to trip over.
		os.Remove(outputPath)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("yt-dlp timed out: %w", ctx.Err())
		}
		return fmt.Errorf("yt-dlp failed: %w\nstderr: %s", err, stderr.String())
	}
	return nil
}
