package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calories-tracker/calories_tracker/internal/hashing"
	"github.com/calories-tracker/calories_tracker/internal/logging"
)

var (
	// ErrMissingFields is returned when an identifier or password is blank.
	ErrMissingFields = errors.New("email and password are required")
	// ErrInvalidIdentifier is returned for identifiers containing line breaks.
	ErrInvalidIdentifier = errors.New("email must not contain line breaks")
)

// Service manages the credential lifecycle.
type Service struct {
	repo   Repository
	hasher hashing.Hasher
	log    *slog.Logger
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher hashing.Hasher, logger *slog.Logger) *Service {
	if hasher == nil {
		hasher = hashing.SHA256{}
	}
	return &Service{repo: repo, hasher: hasher, log: logging.Component(logger, "identity")}
}

// Register stores a digest of the password for a new identifier. It returns
// false without error when the identifier is already registered.
func (s *Service) Register(ctx context.Context, creds Credentials) (bool, error) {
	identifier := Normalize(creds.Identifier)
	if identifier == "" || creds.Password == "" {
		return false, ErrMissingFields
	}
	if strings.ContainsAny(identifier, "\r\n") {
		return false, ErrInvalidIdentifier
	}

	digest, err := s.hasher.Hash(creds.Password)
	if errors.Is(err, hashing.ErrPasswordTooLong) {
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, Credential{Identifier: identifier, Digest: digest, CreatedAt: time.Now().UTC()})
	if err != nil {
		return false, fmt.Errorf("store credential: %w", err)
	}
	if !created {
		s.log.InfoContext(ctx, "registration rejected, identifier exists", slog.String("identifier", identifier))
	}
	return created, nil
}

// Authenticate reports whether the identifier exists and the password matches.
// Unknown identifiers, wrong passwords and unreadable stores all yield false.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) bool {
	identifier := Normalize(creds.Identifier)
	if identifier == "" {
		return false
	}

	cred, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WarnContext(ctx, "credential lookup failed", slog.Any("error", err))
		}
		return false
	}
	return s.hasher.Verify(cred.Digest, creds.Password)
}

// Normalize drops surrounding whitespace. Identifiers are otherwise matched
// case-sensitively.
func Normalize(identifier string) string {
	return strings.TrimSpace(identifier)
}
