package ports

import (
	"context"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

// TrackingService is the surface offered to presentation layers.
type TrackingService interface {
	State(ctx context.Context) (domain.TrackingState, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Executor runs fn on the single main execution context and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// StateObserver is notified of every state change, on the main context.
// Implementations must not block.
type StateObserver interface {
	Publish(state domain.TrackingState)
}

// DistanceFormatter renders meters for display.
type DistanceFormatter interface {
	Format(meters float64) string
}
