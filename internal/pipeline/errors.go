package pipeline

import "fmt"

// ValidationError marks a malformed or out-of-policy request (bad moment
// index, illegal time range). It is always raised before any external tool
// runs, so no partial state exists when the caller sees one.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// DownloadError marks a failure of the segment download stage: non-zero
// yt-dlp exit, timeout, or an unreadable output file.
type DownloadError struct {
	Reason string
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("download failed: %s", e.Reason)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// TranscodeError marks a failure of the vertical re-encode stage: non-zero
// ffmpeg exit or timeout.
type TranscodeError struct {
	Reason string
	Err    error
}

func (e *TranscodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("processing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("processing failed: %s", e.Reason)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// NotAvailableError marks a valid empty outcome: no transcript published
// for the video, or analysis found no viral moments. It is not a failure
// and never transitions a job to failed.
type NotAvailableError struct {
	What string
}

func (e *NotAvailableError) Error() string { return e.What + " not available" }
