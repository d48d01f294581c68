package ports

import (
	"context"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

// PhotoSearcher maps a coordinate to geotagged photo candidates.
type PhotoSearcher interface {
	Search(ctx context.Context, latitude, longitude float64) ([]domain.PhotoCandidate, error)
}

// SeenStore holds the ids of photos already displayed in a session.
type SeenStore interface {
	// Reset empties the set for sessionID.
	Reset(ctx context.Context, sessionID string) error
	Contains(ctx context.Context, sessionID, photoID string) (bool, error)
	Add(ctx context.Context, sessionID, photoID string) error
}
