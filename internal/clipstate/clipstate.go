// Package clipstate owns the clip processing lifecycle as a pure transition
// table. The surrounding layer persists whatever a Transition describes;
// this package only decides which moves are legal.
package clipstate

import "fmt"

// Status is a clip's position in the processing lifecycle.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Event is something that happened to a clip job.
type Event string

const (
	// EventAccepted: the job was picked up and the download stage starts.
	EventAccepted Event = "accepted"
	// EventSegmentFetched: the sub-range download finished.
	EventSegmentFetched Event = "segment_fetched"
	// EventTranscodeFinished: the vertical re-encode finished.
	EventTranscodeFinished Event = "transcode_finished"
	// EventFailed: any stage reported an error.
	EventFailed Event = "failed"
	// EventReset: explicit caller-initiated restart, e.g. after the clip's
	// time range was edited. The only way out of a terminal state.
	EventReset Event = "reset"
)

// ProgressUnchanged marks a transition that must not touch the persisted
// progress value.
const ProgressUnchanged = -1

// Transition describes a legal state change and what to persist for it.
// Progress holds the checkpoint values to publish, in order; persisting
// them in order keeps progress monotonically non-decreasing within a run.
type Transition struct {
	From       Status
	To         Status
	Progress   []int
	SetError   bool // persist an error message with this transition
	ClearError bool // wipe any previous error message
}

// ErrIllegalTransition is returned (wrapped) when an event is not accepted
// in the current state.
type ErrIllegalTransition struct {
	From  Status
	Event Event
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal transition: event %q not accepted in state %q", e.Event, e.From)
}

// Advance computes the transition for an event in the given state. It has
// no side effects; callers persist the returned descriptor before starting
// the next stage so a crash leaves a durable last-known-good record.
func Advance(current Status, event Event) (Transition, error) {
	// Reset is accepted everywhere, including terminal states.
	if event == EventReset {
		return Transition{From: current, To: StatusPending, Progress: []int{0}, ClearError: true}, nil
	}

	switch current {
	case StatusPending:
		if event == EventAccepted {
			return Transition{From: current, To: StatusDownloading, Progress: []int{10}}, nil
		}
	case StatusDownloading:
		if event == EventSegmentFetched {
			return Transition{From: current, To: StatusProcessing, Progress: []int{40, 50}}, nil
		}
	case StatusProcessing:
		if event == EventTranscodeFinished {
			return Transition{From: current, To: StatusCompleted, Progress: []int{90, 100}}, nil
		}
	case StatusCompleted, StatusFailed:
		// Terminal; only the reset handled above gets out.
		return Transition{}, &ErrIllegalTransition{From: current, Event: event}
	}

	if event == EventFailed {
		return Transition{From: current, To: StatusFailed, Progress: []int{ProgressUnchanged}, SetError: true}, nil
	}

	return Transition{}, &ErrIllegalTransition{From: current, Event: event}
}

// Terminal reports whether a status accepts no stage-advance events.
func Terminal(s Status) bool {
	return s == StatusCompleted || s == StatusFailed
}

// Running reports whether a job in this status may have a stage in flight.
// Callers must not reset a running clip: the in-flight job would keep
// writing status and paths against the reset record.
func Running(s Status) bool {
	return s == StatusDownloading || s == StatusProcessing
}
