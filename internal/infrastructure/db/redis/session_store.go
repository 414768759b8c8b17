package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/session"
)

// SessionStore implements session.Store on Redis.
// Key format: session:<id>. Keys expire after the idle timeout so abandoned
// sessions clean themselves up; expiry is still decided by the policy.
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSessionStore wraps client. ttl is normally the session idle timeout.
func NewSessionStore(client redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, id string) (*session.Record, error) {
	b, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("session load: %w", err)
	}

	var rec session.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &rec, nil
}

func (s *SessionStore) Save(ctx context.Context, id string, rec *session.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}
