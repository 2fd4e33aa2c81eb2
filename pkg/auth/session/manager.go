// Package session keeps one Redis key per issued access token (its jti). The
// key holds the owning user id and expires with the token, so deleting it
// revokes the token early.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/hourstay-backend/pkg/config"
	redisclient "github.com/angelmondragon/hourstay-backend/pkg/redis"
)

var errAccessIDRequired = errors.New("access id is required")

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type keyer interface {
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is the read side used by the auth middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string, userID uuid.UUID) (bool, error)
}

type Manager struct {
	store store
	keys  keyer
	ttl   time.Duration
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return newManager(client, client, cfg)
}

func newManager(s store, k keyer, cfg config.JWTConfig) (*Manager, error) {
	ttl := cfg.TokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive")
	}
	return &Manager{store: s, keys: k, ttl: ttl}, nil
}

// NewAccessID returns the identifier used as both jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func (m *Manager) key(accessID string) (string, error) {
	accessID = strings.TrimSpace(accessID)
	if accessID == "" {
		return "", errAccessIDRequired
	}
	return m.keys.AccessSessionKey(accessID), nil
}

// Start opens a session for userID lasting as long as the token.
func (m *Manager) Start(ctx context.Context, accessID string, userID uuid.UUID) error {
	key, err := m.key(accessID)
	if err != nil {
		return err
	}
	if userID == uuid.Nil {
		return errors.New("user id is required")
	}
	return m.store.Set(ctx, key, userID.String(), m.ttl)
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	key, err := m.key(accessID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

// HasSession reports whether accessID is live and was issued to userID.
func (m *Manager) HasSession(ctx context.Context, accessID string, userID uuid.UUID) (bool, error) {
	key, err := m.key(accessID)
	if err != nil {
		return false, err
	}
	owner, err := m.store.Get(ctx, key)
	switch {
	case redisclient.IsMiss(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return owner == userID.String(), nil
}
