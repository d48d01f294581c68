package domain

import "errors"

// StateKind discriminates the variants of TrackingState.
type StateKind string

const (
	StateEmpty            StateKind = "empty"
	StateNoLocationAccess StateKind = "no_location_access"
	StateTimeline         StateKind = "timeline"
)

var ErrLoopStopped = errors.New("main loop stopped")

// TrackingState is the externally visible state of the walk feed. Distance,
// Images and IsRecording are only meaningful for StateTimeline.
type TrackingState struct {
	Kind        StateKind        `json:"kind"`
	Distance    string           `json:"distance,omitempty"`
	Images      []CaptionedImage `json:"images,omitempty"`
	IsRecording bool             `json:"is_recording"`
}

func EmptyState() TrackingState {
	return TrackingState{Kind: StateEmpty}
}

func NoLocationAccessState() TrackingState {
	return TrackingState{Kind: StateNoLocationAccess}
}

// TimelineState copies images so the caller can keep mutating its slice.
func TimelineState(distance string, images []CaptionedImage, isRecording bool) TrackingState {
	return TrackingState{
		Kind:        StateTimeline,
		Distance:    distance,
		Images:      append([]CaptionedImage(nil), images...),
		IsRecording: isRecording,
	}
}

// Recording reports whether a timeline session is actively recording.
func (s TrackingState) Recording() bool {
	return s.Kind == StateTimeline && s.IsRecording
}

// RecordingAvailable reports whether a new session may be started from s.
func (s TrackingState) RecordingAvailable() bool {
	return s.Kind != StateNoLocationAccess
}

// WithRecording returns a copy of a timeline state with IsRecording replaced.
// Other variants are returned unchanged.
func (s TrackingState) WithRecording(isRecording bool) TrackingState {
	if s.Kind != StateTimeline {
		return s
	}
	return TimelineState(s.Distance, s.Images, isRecording)
}

// Headline is the distance badge text shown above the feed.
func (s TrackingState) Headline() string {
	if s.Kind != StateTimeline {
		return ""
	}
	return "You've walked " + s.Distance
}
