package location

import (
	"github.com/morozkin/Point2Image/internal/core/domain"
)

// PushDevice is a Device whose fixes arrive from outside the process, e.g.
// a phone posting to the ingestion API. It has nothing to start or stop.
type PushDevice struct {
	autoGrant bool
}

// NewPushDevice returns a PushDevice. With autoGrant, authorization requests
// are granted immediately instead of waiting for an explicit status update.
func NewPushDevice(autoGrant bool) *PushDevice {
	return &PushDevice{autoGrant: autoGrant}
}

func (d *PushDevice) StartUpdating(Sink) {}

func (d *PushDevice) StopUpdating() {}

func (d *PushDevice) RequestAuthorization(sink Sink) {
	if d.autoGrant {
		sink.SetAuthorization(domain.AuthorizationAuthorized)
	}
}
