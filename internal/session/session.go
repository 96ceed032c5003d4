package session

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CookieName carries the session token for browser clients.
const CookieName = "session"

const localsKey = "session"

var (
	// ErrNotFound is returned for unknown, expired or revoked tokens.
	ErrNotFound = errors.New("session not found")
	// ErrNoIdentifier guards against issuing anonymous sessions.
	ErrNoIdentifier = errors.New("session requires an identifier")
)

// Session is the per-interaction context established by a successful
// authentication. It is the only carrier of the current identifier.
type Session struct {
	Token      string    `json:"token"`
	Identifier string    `json:"identifier"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions by token.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// Manager issues, resolves and ends sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager builds a session manager with the given lifetime.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime given to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start opens a session for an authenticated identifier.
func (m *Manager) Start(ctx context.Context, identifier string) (Session, error) {
	if identifier == "" {
		return Session{}, ErrNoIdentifier
	}
	now := m.now().UTC()
	s := Session{
		Token:      uuid.NewString(),
		Identifier: identifier,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Resolve looks up a live session by token.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNotFound
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, token)
		return Session{}, ErrNotFound
	}
	return s, nil
}

// End revokes the session; ending an unknown token is not an error.
func (m *Manager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// Attach stores the resolved session on the request.
func Attach(c *fiber.Ctx, s Session) {
	c.Locals(localsKey, s)
}

// FromRequest returns the session attached by the session middleware.
func FromRequest(c *fiber.Ctx) (Session, bool) {
	s, ok := c.Locals(localsKey).(Session)
	if !ok || s.Identifier == "" {
		return Session{}, false
	}
	return s, true
}
