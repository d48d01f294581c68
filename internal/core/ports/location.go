package ports

import (
	"context"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

// AuthorizationProvider exposes the current location permission and its changes.
type AuthorizationProvider interface {
	CurrentAuthorization() domain.AuthorizationStatus
	// AuthorizationChanges delivers the current status first, then every
	// distinct change. The returned func releases the subscription.
	AuthorizationChanges() (<-chan domain.AuthorizationStatus, func())
}

// AuthorizationManager can additionally prompt for permission.
type AuthorizationManager interface {
	AuthorizationProvider
	// RequestAuthorization resolves once the status is no longer
	// not-determined, or returns ctx.Err().
	RequestAuthorization(ctx context.Context) (domain.AuthorizationStatus, error)
}

// LocationManager is the full location capability consumed by sessions.
type LocationManager interface {
	AuthorizationManager
	// StartUpdates and StopUpdates are reference counted.
	StartUpdates()
	StopUpdates()
	// LiveUpdates subscribes to raw updates through a bounded, drop-oldest
	// queue. The returned func releases the subscription.
	LiveUpdates() (<-chan domain.LocationUpdate, func())
}

// SessionStreamFactory creates a fresh snapshot stream per tracking session.
// The channel is closed when the session ends or ctx is cancelled.
type SessionStreamFactory interface {
	NewStream(ctx context.Context) <-chan domain.SessionSnapshot
}
