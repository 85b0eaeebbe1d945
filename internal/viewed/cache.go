package viewed

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache key prefix and lifetime for per-user exclusion sets.
const (
	cacheKeyPrefix = "viewed:"
	cacheTTL       = 15 * time.Minute
)

// CachedStore wraps a Store with a Redis set per user so repeated deck
// loads across API instances skip the Postgres scan. All cache failures
// are fail-open: the wrapped store is the authority and a Redis outage
// degrades to direct reads, never to an error.
type CachedStore struct {
	inner  Store
	client *redis.Client
	logger *slog.Logger
}

// NewCachedStore creates a CachedStore around inner.
func NewCachedStore(inner Store, client *redis.Client, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{
		inner:  inner,
		client: client,
		logger: logger,
	}
}

func cacheKey(userID string) string {
	return cacheKeyPrefix + userID
}

// LoadIDs returns the user's decided event IDs, serving from the Redis set
// when warm and falling back to the inner store on miss or error.
func (s *CachedStore) LoadIDs(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	key := cacheKey(userID)
	ids, err := s.client.SMembers(ctx, key).Result()
	if err == nil && len(ids) > 0 {
		return ids, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Warn("viewed cache read failed, falling back to store",
			"error", err, "user_id", userID)
	}

	ids, err = s.inner.LoadIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		// Best-effort warm; an empty set is never cached so a fresh user
		// does not pin an empty key.
		pipe := s.client.Pipeline()
		members := make([]interface{}, len(ids))
		for i, id := range ids {
			members[i] = id
		}
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, cacheTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			s.logger.Warn("viewed cache warm failed", "error", err, "user_id", userID)
		}
	}
	return ids, nil
}

// Record writes through to the inner store, then adds the ID to the cached
// set so the next load sees it without a rescan.
func (s *CachedStore) Record(ctx context.Context, userID, eventID string, action Action, viewedAt time.Time) error {
	if err := s.inner.Record(ctx, userID, eventID, action, viewedAt); err != nil {
		return err
	}

	if err := s.client.SAdd(ctx, cacheKey(userID), eventID).Err(); err != nil {
		s.logger.Warn("viewed cache add failed", "error", err, "user_id", userID, "event_id", eventID)
	}
	return nil
}

// IsViewed checks the cached set first, then the inner store.
func (s *CachedStore) IsViewed(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}

	ok, err := s.client.SIsMember(ctx, cacheKey(userID), eventID).Result()
	if err == nil && ok {
		return true, nil
	}

	return s.inner.IsViewed(ctx, userID, eventID)
}

// Stats delegates to the inner store; counts are not cached.
func (s *CachedStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	return s.inner.Stats(ctx, userID)
}
