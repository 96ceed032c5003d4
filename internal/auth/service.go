package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/calories-tracker/calories_tracker/internal/identity"
	"github.com/calories-tracker/calories_tracker/internal/session"
)

// ErrInvalidCredentials covers both unknown identifiers and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service turns a successful authentication into a session.
type Service struct {
	ids      *identity.Service
	sessions *session.Manager
}

// NewService builds the login service.
func NewService(ids *identity.Service, sessions *session.Manager) *Service {
	return &Service{ids: ids, sessions: sessions}
}

// Login authenticates the credentials and opens a session for the identifier.
func (s *Service) Login(ctx context.Context, creds identity.Credentials) (session.Session, error) {
	if !s.ids.Authenticate(ctx, creds) {
		return session.Session{}, ErrInvalidCredentials
	}
	sess, err := s.sessions.Start(ctx, identity.Normalize(creds.Identifier))
	if err != nil {
		return session.Session{}, fmt.Errorf("start session: %w", err)
	}
	return sess, nil
}

// Logout ends the session behind token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.End(ctx, token)
}
