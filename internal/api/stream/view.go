package stream

import "github.com/morozkin/Point2Image/internal/core/domain"

// StateView is the wire form of domain.TrackingState shared by the REST and
// websocket surfaces.
type StateView struct {
	Kind               domain.StateKind        `json:"kind"`
	Distance           string                  `json:"distance,omitempty"`
	Headline           string                  `json:"headline,omitempty"`
	Images             []domain.CaptionedImage `json:"images"`
	IsRecording        bool                    `json:"is_recording"`
	RecordingAvailable bool                    `json:"recording_available"`
}

func NewStateView(s domain.TrackingState) StateView {
	images := s.Images
	if images == nil {
		images = []domain.CaptionedImage{}
	}
	return StateView{
		Kind:               s.Kind,
		Distance:           s.Distance,
		Headline:           s.Headline(),
		Images:             images,
		IsRecording:        s.IsRecording,
		RecordingAvailable: s.RecordingAvailable(),
	}
}
