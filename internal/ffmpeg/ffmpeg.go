package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// FFProbeOutput captures the slice of ffprobe JSON output we care about.
type FFProbeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetVideoDuration uses ffprobe to read the duration of a media file. The
// pipeline runs it against freshly downloaded segments to catch truncated
// or empty files before spending a transcode on them.
func GetVideoDuration(ctx context.Context, filePath string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\nstderr: %s", err, stderr.String())
	}

	var probed FFProbeOutput
	if err := json.Unmarshal(out.Bytes(), &probed); err != nil {
		return 0, fmt.Errorf("unmarshalling ffprobe output: %w\noutput: %s", err, out.String())
	}
	if probed.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in ffprobe output: %s", out.String())
	}

	durationFloat, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", probed.Format.Duration, err)
	}
	return time.Duration(durationFloat * float64(time.Second)), nil
}

// Fixed output frame and burned-subtitle style for vertical clips.
const (
	verticalFilter = "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920"

	subtitleStyle = "FontName=Arial Bold," +
		"FontSize=32," +
		"PrimaryColour=&H00FFFFFF," +
		"OutlineColour=&H00000000," +
		"BackColour=&H80000000," +
		"BorderStyle=3," +
		"Outline=2," +
		"Shadow=0," +
		"MarginV=100," +
		"Alignment=2"
)

// CreateVerticalClip re-encodes inputFile into a 1080x1920 vertical frame
// (scale up then center-crop, never letterbox) and writes it to outputFile.
// When srtPath is non-empty the captions are burned in with the fixed
// style. The caller owns the srt file's lifecycle; cancellation of ctx
// kills the ffmpeg process.
func CreateVerticalClip(ctx context.Context, inputFile, outputFile, srtPath string) error {
	filter := verticalFilter
	if srtPath != "" {
		filter = fmt.Sprintf("%s,subtitles=%s:force_style='%s'", verticalFilter, srtPath, subtitleStyle)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputFile,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "44100",
		"-y",
		outputFile,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("ffmpeg timed out: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg failed: %w\nstderr: %s", err, stderr.String())
	}
	return nil
}
