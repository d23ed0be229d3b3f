// Package session maps opaque client-held tokens to a server-side
// authentication fact with an expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"science-ecosystem/metrics"
)

// DefaultTTL is how long a login stays valid.
const DefaultTTL = 30 * 24 * time.Hour

// tokenBytes of randomness back every token (hex encoded: 64 chars).
const tokenBytes = 32

// Payload is what a token stands for. Signed-in sessions carry ORCID;
// in-progress logins carry State and Verifier.
type Payload struct {
	ORCID    string `json:"orcid,omitempty"`
	State    string `json:"state,omitempty"`
	Verifier string `json:"verifier,omitempty"`
}

// Record is one stored session.
type Record struct {
	Token     string
	Payload   Payload
	ExpiresAt time.Time
}

// Store persists records. Get reports a missing token with ok=false and a
// nil error; Delete of a missing token is not an error.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, token string) (rec Record, ok bool, err error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Manager issues, validates and revokes tokens on top of a Store.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager over store.
func NewManager(store Store, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{store: store, ttl: DefaultTTL, now: time.Now, log: log}
	for _, o := range opts {
		o(m)
	}
	return m
}

// NewToken returns a hex encoded random token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create stores payload under a fresh token valid for the manager TTL.
func (m *Manager) Create(ctx context.Context, p Payload) (string, error) {
	return m.CreateWithTTL(ctx, p, m.ttl)
}

// CreateWithTTL stores payload under a fresh token valid for ttl. Errors
// are returned to the caller; a login must not silently fail.
func (m *Manager) CreateWithTTL(ctx context.Context, p Payload, ttl time.Duration) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	rec := Record{Token: token, Payload: p, ExpiresAt: m.now().Add(ttl)}
	if err := m.store.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// Read returns the payload for token. Unknown, expired and unreadable
// sessions are all reported as absent; an expired row is removed on the way.
func (m *Manager) Read(ctx context.Context, token string) (Payload, bool) {
	if token == "" {
		return Payload{}, false
	}
	rec, ok, err := m.store.Get(ctx, token)
	if err != nil {
		m.log.Warn("Session lookup failed, treating as signed out", zap.Error(err))
		return Payload{}, false
	}
	if !ok {
		return Payload{}, false
	}
	if rec.ExpiresAt.Before(m.now()) {
		if err := m.store.Delete(ctx, token); err != nil {
			m.log.Debug("Could not delete expired session", zap.Error(err))
		}
		return Payload{}, false
	}
	return rec.Payload, true
}

// Destroy removes token. Missing tokens are fine.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// Sweep deletes every expired session and returns how many were removed.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

// SweepOnce runs Sweep as a maintenance job: failures are logged and
// swallowed.
func (m *Manager) SweepOnce(ctx context.Context) {
	n, err := m.Sweep(ctx)
	if err != nil {
		m.log.Error("Session sweep failed", zap.Error(err))
		return
	}
	metrics.SessionsSwept.Add(float64(n))
	m.log.Info("Session sweep completed", zap.Int64("removed", n))
}
