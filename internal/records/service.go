package records

import (
	"context"
	"log/slog"

	"github.com/calories-tracker/calories_tracker/internal/logging"
)

// Service exposes dedup-on-write saving and per-identifier retrieval.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService builds a record service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, log: logging.Component(logger, "records")}
}

// Save stores rec if its identifier has no record yet. A later submission for
// the same identifier is dropped and reported as false.
func (s *Service) Save(ctx context.Context, rec Record) (bool, error) {
	saved, err := s.repo.Save(ctx, rec)
	if err != nil {
		return false, err
	}
	if !saved {
		s.log.InfoContext(ctx, "record already exists, submission dropped", slog.String("identifier", rec.Identifier))
	}
	return saved, nil
}

// Load returns the identifier's records. Read failures degrade to an empty
// result and are logged.
func (s *Service) Load(ctx context.Context, identifier string) []Record {
	recs, err := s.repo.Load(ctx, identifier)
	if err != nil {
		s.log.WarnContext(ctx, "record lookup failed", slog.String("identifier", identifier), slog.Any("error", err))
		return []Record{}
	}
	if recs == nil {
		return []Record{}
	}
	return recs
}
