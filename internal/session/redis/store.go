// Package redis stores portal sessions in Redis so they survive restarts and
// can be shared by several portal instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

const (
	defaultKeyPrefix  = "portal:session:"
	connectionTimeout = 5 * time.Second
)

// ErrEmptyAddress is returned when the Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// Config holds Redis connection and keying options.
type Config struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
	// TTL bounds session lifetime; zero keeps sessions until logout.
	TTL time.Duration
}

// Store implements portal.SessionStore on top of a Redis client.
type Store struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg Config) (*goredis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewStore wraps an existing client.
func NewStore(client goredis.UniversalClient, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

// Get loads and decodes the session for token.
func (s *Store) Get(ctx context.Context, token string) (portal.Session, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return portal.Session{}, portal.ErrSessionNotFound
		}
		return portal.Session{}, fmt.Errorf("redis get session: %w", err)
	}
	var sess portal.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return portal.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// Set stores the session under its token, applying the configured TTL.
func (s *Store) Set(ctx context.Context, session portal.Session) error {
	if session.Token == "" {
		return errors.New("session token is required")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.Token), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Update rewrites an existing session with SET XX, so a token deleted by a
// concurrent logout is not recreated. The key's remaining TTL is kept.
func (s *Store) Update(ctx context.Context, token string, fn func(*portal.Session)) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	fn(&sess)
	sess.Token = token
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.client.SetXX(ctx, s.key(token), raw, goredis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("redis update session: %w", err)
	}
	if !ok {
		return portal.ErrSessionNotFound
	}
	return nil
}

// Clear deletes the session for token.
func (s *Store) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

func (s *Store) key(token string) string {
	return s.prefix + token
}
