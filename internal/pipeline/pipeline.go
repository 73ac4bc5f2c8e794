// Package pipeline drives one clip job through download, subtitle
// alignment and vertical transcode, persisting every state transition
// before the next stage starts. Stage legality is owned by clipstate; the
// external tools and the store are injected so tests can fake them.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Levilaell/snapcast/internal/clipstate"
	"github.com/Levilaell/snapcast/internal/subtitles"
	"github.com/Levilaell/snapcast/internal/transcript"
	"github.com/Levilaell/snapcast/models"
)

// Downloader fetches a sub-range of a remote source into a local file.
type Downloader interface {
	DownloadSegment(ctx context.Context, sourceURL string, startTime, endTime float64, outputPath string) error
}

// Transcoder re-encodes a local file to the vertical frame, optionally
// burning an SRT file in.
type Transcoder interface {
	CreateVerticalClip(ctx context.Context, inputPath, outputPath, srtPath string) error
}

// Prober inspects a local media file. Used to reject unreadable downloads
// before spending a transcode on them.
type Prober interface {
	GetVideoDuration(ctx context.Context, path string) (time.Duration, error)
}

// ClipStore is the slice of the persistence layer the pipeline needs.
type ClipStore interface {
	GetByID(id uuid.UUID) (models.Clip, bool, error)
	ListByRange(videoID uuid.UUID, startTime, endTime float64) ([]models.Clip, error)
	Update(id uuid.UUID, fields map[string]interface{}) (models.Clip, error)
	UpdateStatus(id uuid.UUID, status clipstate.Status, progress int) error
}

// Options configures a Processor.
type Options struct {
	ClipsDir         string
	DownloadTimeout  time.Duration // default 5 minutes
	TranscodeTimeout time.Duration // default 10 minutes
	ChunkSize        int           // words per subtitle cue, default 5
}

// Processor runs clip jobs. Safe for concurrent use; jobs for the same
// (video, start, end) range serialize on an internal lock acquired before
// any external tool is invoked.
type Processor struct {
	store     ClipStore
	download  Downloader
	transcode Transcoder
	probe     Prober
	log       *logrus.Logger
	opts      Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProcessor wires a Processor from its collaborators.
func NewProcessor(store ClipStore, download Downloader, transcode Transcoder, probe Prober, log *logrus.Logger, opts Options) *Processor {
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 5 * time.Minute
	}
	if opts.TranscodeTimeout <= 0 {
		opts.TranscodeTimeout = 10 * time.Minute
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = subtitles.DefaultChunkSize
	}
	return &Processor{
		store:     store,
		download:  download,
		transcode: transcode,
		probe:     probe,
		log:       log,
		opts:      opts,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Process runs the full pipeline for one clip. It returns the error that
// failed the job, already persisted on the record; a nil return means the
// clip reached completed. Callers racing on the same range block on the
// range lock, and whoever loses the race finds the clip no longer pending
// and returns without touching any external tool.
func (p *Processor) Process(ctx context.Context, clipID uuid.UUID, video models.Video) error {
	clip, found, err := p.store.GetByID(clipID)
	if err != nil {
		return err
	}
	if !found {
		return &ValidationError{Reason: fmt.Sprintf("clip %s not found", clipID)}
	}

	// The range lock happens-before any external tool invocation, so two
	// jobs racing on the same (video, start, end) cannot both download.
	unlock := p.lockRange(rangeKey(video.ID, clip.StartTime, clip.EndTime))
	defer unlock()

	// Re-read under the lock: a racer that just finished this range has
	// already moved the clip out of pending.
	clip, found, err = p.store.GetByID(clipID)
	if err != nil {
		return err
	}
	if !found {
		return &ValidationError{Reason: fmt.Sprintf("clip %s not found", clipID)}
	}

	status := clipstate.Status(clip.Status)
	if status != clipstate.StatusPending {
		p.log.WithFields(logrus.Fields{"clip_id": clip.ID, "status": clip.Status}).
			Info("clip is not pending, skipping")
		return nil
	}

	// Racing creates can insert two pending records for the same range
	// before either job runs. Still under the lock, check whether a sibling
	// record already took the range past pending; if so this job yields
	// instead of downloading the same segment again.
	owner, err := p.rangeOwner(clip)
	if err != nil {
		return err
	}
	if owner != uuid.Nil {
		p.log.WithFields(logrus.Fields{"clip_id": clip.ID, "owner_clip_id": owner}).
			Info("range already owned by another clip, skipping")
		return nil
	}

	logger := p.log.WithFields(logrus.Fields{
		"clip_id":  clip.ID,
		"video_id": video.ID,
		"start":    clip.StartTime,
		"end":      clip.EndTime,
	})

	// pending -> downloading (10)
	status, err = p.applyTransition(clip.ID, status, clipstate.EventAccepted)
	if err != nil {
		return err
	}

	logger.Info("downloading segment")
	originalPath := filepath.Join(p.opts.ClipsDir, fmt.Sprintf("clip_%s_original.mp4", clip.ID))
	if err := p.runDownload(ctx, video.YoutubeURL, clip, originalPath); err != nil {
		p.failJob(clip.ID, status, err)
		return err
	}
	if _, err := p.store.Update(clip.ID, map[string]interface{}{"original_clip_path": originalPath}); err != nil {
		p.failJob(clip.ID, status, err)
		return err
	}

	// downloading -> processing (40, 50)
	status, err = p.applyTransition(clip.ID, status, clipstate.EventSegmentFetched)
	if err != nil {
		return err
	}

	subtitleText := transcript.Align(video.TranscriptEntries, clip.StartTime, clip.EndTime)
	if _, err := p.store.Update(clip.ID, map[string]interface{}{"subtitle_text": subtitleText}); err != nil {
		p.failJob(clip.ID, status, err)
		return err
	}

	logger.Info("transcoding to vertical")
	processedPath := filepath.Join(p.opts.ClipsDir, fmt.Sprintf("clip_%s_final.mp4", clip.ID))
	if err := p.runTranscode(ctx, clip, subtitleText, originalPath, processedPath); err != nil {
		p.failJob(clip.ID, status, err)
		return err
	}
	if _, err := p.store.Update(clip.ID, map[string]interface{}{"processed_clip_path": processedPath}); err != nil {
		p.failJob(clip.ID, status, err)
		return err
	}

	// processing -> completed (90, 100)
	if _, err := p.applyTransition(clip.ID, status, clipstate.EventTranscodeFinished); err != nil {
		return err
	}
	logger.Info("clip completed")
	return nil
}

// runDownload fetches the clip's sub-range and verifies the result is a
// readable media file. Any failure comes back as a DownloadError.
func (p *Processor) runDownload(ctx context.Context, sourceURL string, clip models.Clip, outputPath string) error {
	dlCtx, cancel := context.WithTimeout(ctx, p.opts.DownloadTimeout)
	defer cancel()

	if err := p.download.DownloadSegment(dlCtx, sourceURL, clip.StartTime, clip.EndTime, outputPath); err != nil {
		return &DownloadError{Reason: "fetching segment", Err: err}
	}
	if _, err := p.probe.GetVideoDuration(ctx, outputPath); err != nil {
		os.Remove(outputPath)
		return &DownloadError{Reason: "downloaded segment is not readable", Err: err}
	}
	return nil
}

// runTranscode builds the clip-local SRT file, burns it into the vertical
// re-encode and removes it again on every exit path.
func (p *Processor) runTranscode(ctx context.Context, clip models.Clip, subtitleText, inputPath, outputPath string) error {
	tcCtx, cancel := context.WithTimeout(ctx, p.opts.TranscodeTimeout)
	defer cancel()

	srtPath := ""
	cues := subtitles.BuildCues(subtitleText, clip.EndTime-clip.StartTime, p.opts.ChunkSize)
	if len(cues) > 0 {
		srtPath = outputPath + ".srt"
		if err := os.WriteFile(srtPath, []byte(subtitles.FormatSRT(cues)), 0o644); err != nil {
			return &TranscodeError{Reason: "writing caption file", Err: err}
		}
		defer os.Remove(srtPath)
	}

	if err := p.transcode.CreateVerticalClip(tcCtx, inputPath, outputPath, srtPath); err != nil {
		return &TranscodeError{Reason: "creating vertical clip", Err: err}
	}
	return nil
}

// applyTransition asks the state machine for the move and persists its
// progress checkpoints in order: intermediate values under the old status,
// the final one under the new status.
func (p *Processor) applyTransition(clipID uuid.UUID, current clipstate.Status, event clipstate.Event) (clipstate.Status, error) {
	tr, err := clipstate.Advance(current, event)
	if err != nil {
		return current, err
	}
	for i, progress := range tr.Progress {
		status := tr.From
		if i == len(tr.Progress)-1 {
			status = tr.To
		}
		if err := p.store.UpdateStatus(clipID, status, progress); err != nil {
			return current, err
		}
	}
	return tr.To, nil
}

// failJob moves the clip to failed, keeping whatever prior fields were
// persisted (a successful download path survives for diagnosis) and
// leaving progress where it was.
func (p *Processor) failJob(clipID uuid.UUID, current clipstate.Status, cause error) {
	tr, err := clipstate.Advance(current, clipstate.EventFailed)
	if err != nil {
		p.log.WithError(err).WithField("clip_id", clipID).Error("cannot transition to failed")
		return
	}
	if err := p.store.UpdateStatus(clipID, tr.To, tr.Progress[0]); err != nil {
		p.log.WithError(err).WithField("clip_id", clipID).Error("persisting failed status")
		return
	}
	if _, err := p.store.Update(clipID, map[string]interface{}{"error_message": cause.Error()}); err != nil {
		p.log.WithError(err).WithField("clip_id", clipID).Error("persisting error message")
	}
}

// rangeOwner reports the ID of a different clip on the same
// (video, start, end) range that has advanced past pending and not failed,
// or uuid.Nil when no such sibling exists. Must be called under the range
// lock so the answer cannot change before this job acts on it.
func (p *Processor) rangeOwner(clip models.Clip) (uuid.UUID, error) {
	siblings, err := p.store.ListByRange(clip.VideoID, clip.StartTime, clip.EndTime)
	if err != nil {
		return uuid.Nil, err
	}
	for _, s := range siblings {
		if s.ID == clip.ID {
			continue
		}
		switch clipstate.Status(s.Status) {
		case clipstate.StatusPending, clipstate.StatusFailed:
			// A sibling that never started, or gave up, does not own the
			// range; this job may proceed.
		default:
			return s.ID, nil
		}
	}
	return uuid.Nil, nil
}

func (p *Processor) lockRange(key string) func() {
	p.mu.Lock()
	m, ok := p.locks[key]
	if !ok {
		m = &sync.Mutex{}
		p.locks[key] = m
	}
	p.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func rangeKey(videoID uuid.UUID, start, end float64) string {
	return fmt.Sprintf("%s:%g-%g", videoID, start, end)
}
