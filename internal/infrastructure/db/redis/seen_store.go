package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSeenTTL bounds how long an idle session's set survives.
const DefaultSeenTTL = 12 * time.Hour

// SeenStore records displayed photo ids per tracking session in a Redis set.
// Key format: point2image:seen:<session_id>
type SeenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenStore creates a SeenStore wrapping the given Redis client. Each write
// refreshes the key expiry to ttl (DefaultSeenTTL when ttl <= 0).
func NewSeenStore(client *redis.Client, ttl time.Duration) *SeenStore {
	if ttl <= 0 {
		ttl = DefaultSeenTTL
	}
	return &SeenStore{client: client, ttl: ttl}
}

// Reset empties the set for sessionID.
func (s *SeenStore) Reset(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("seen reset: %w", err)
	}
	return nil
}

// Contains reports whether photoID was already displayed in the session.
func (s *SeenStore) Contains(ctx context.Context, sessionID, photoID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key(sessionID), photoID).Result()
	if err != nil {
		return false, fmt.Errorf("seen check: %w", err)
	}
	return ok, nil
}

// Add marks photoID as displayed.
func (s *SeenStore) Add(ctx context.Context, sessionID, photoID string) error {
	key := s.key(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, photoID)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("seen add: %w", err)
	}
	return nil
}

func (s *SeenStore) key(sessionID string) string {
	return "point2image:seen:" + sessionID
}
