// Package session keeps login sessions and flash messages in Redis.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:" // Hash per session: session:{id}
	flashKeySuffix   = ":flashes" // List of pending messages: session:{id}:flashes

	fieldUserID    = "user_id"
	fieldCreatedAt = "created_at"
)

var ErrSessionNotFound = errors.New("session not found")

// Data is what a session carries between requests. UserID is nil for
// anonymous sessions that only exist to hold flash messages.
type Data struct {
	UserID    *uuid.UUID
	CreatedAt time.Time
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a new session, bound to userID when it is non-nil.
func (s *Store) Create(ctx context.Context, userID *uuid.UUID) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	values := map[string]interface{}{
		fieldCreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if userID != nil {
		values[fieldUserID] = userID.String()
	}

	key := s.sessionKey(id)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, values)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return id, nil
}

func (s *Store) Load(ctx context.Context, id string) (*Data, error) {
	values, err := s.client.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrSessionNotFound
	}

	data := &Data{}
	if raw := values[fieldUserID]; raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt user id in session: %w", err)
		}
		data.UserID = &userID
	}
	if raw := values[fieldCreatedAt]; raw != "" {
		if createdAt, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			data.CreatedAt = createdAt
		}
	}

	return data, nil
}

// Delete removes the session and any flashes still queued on it.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.sessionKey(id), s.flashKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) AddFlash(ctx context.Context, id, message string) error {
	key := s.flashKey(id)

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, message)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add flash: %w", err)
	}
	return nil
}

// Flashes returns the queued messages in insertion order and clears them.
func (s *Store) Flashes(ctx context.Context, id string) ([]string, error) {
	key := s.flashKey(id)

	var lrange *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read flashes: %w", err)
	}

	return lrange.Val(), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *Store) flashKey(id string) string {
	return sessionKeyPrefix + id + flashKeySuffix
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
