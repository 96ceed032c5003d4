package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/calories-tracker/calories_tracker/internal/form"
	"github.com/calories-tracker/calories_tracker/internal/logging"
	"github.com/calories-tracker/calories_tracker/internal/prediction"
	"github.com/calories-tracker/calories_tracker/internal/records"
	"github.com/calories-tracker/calories_tracker/internal/session"
)

// ErrUnauthenticated is returned when no session backs the call.
var ErrUnauthenticated = errors.New("authentication required")

// Estimator produces the calorie figure for a set of features.
type Estimator interface {
	Estimate(ctx context.Context, f prediction.Features) (float64, error)
}

// Result is the outcome of one form submission.
type Result struct {
	Record  records.Record
	Display string
	Saved   bool
	Notes   []string
}

// Service orchestrates validation, prediction and persistence for a session.
type Service struct {
	estimator Estimator
	records   *records.Service
	log       *slog.Logger
}

// NewService builds the form controller.
func NewService(estimator Estimator, recs *records.Service, logger *slog.Logger) *Service {
	return &Service{estimator: estimator, records: recs, log: logging.Component(logger, "tracker")}
}

// Submit validates the form, estimates calories and stores the record for the
// session's identifier. A *form.ValidationError leaves the store and the model
// untouched. Saved is false when the identifier already had a record.
func (s *Service) Submit(ctx context.Context, sess session.Session, in form.RawInput) (Result, error) {
	res, err := s.Estimate(ctx, sess, in)
	if err != nil {
		return Result{}, err
	}

	saved, err := s.records.Save(ctx, res.Record)
	if err != nil {
		return Result{}, fmt.Errorf("save record: %w", err)
	}
	res.Saved = saved
	s.log.InfoContext(ctx, "submission processed",
		slog.String("identifier", sess.Identifier),
		slog.Bool("saved", saved),
		slog.Float64("calories_burnt", res.Record.CaloriesBurnt),
	)
	return res, nil
}

// Estimate validates the form and runs the model without persisting anything.
func (s *Service) Estimate(ctx context.Context, sess session.Session, in form.RawInput) (Result, error) {
	if sess.Identifier == "" {
		return Result{}, ErrUnauthenticated
	}
	sub, err := form.Parse(in)
	if err != nil {
		return Result{}, err
	}
	calories, err := s.estimator.Estimate(ctx, sub.Features)
	if err != nil {
		return Result{}, fmt.Errorf("estimate calories: %w", err)
	}
	f := sub.Features
	rec := records.Record{
		Identifier:    sess.Identifier,
		Name:          sub.Name,
		Age:           f.Age,
		Gender:        sub.Gender,
		ActivityLevel: sub.ActivityLevel,
		Height:        f.Height,
		Weight:        f.Weight,
		Duration:      f.Duration,
		HeartRate:     f.HeartRate,
		BodyTemp:      f.BodyTemp,
		CaloriesBurnt: calories,
	}
	return Result{Record: rec, Display: prediction.FormatKcal(calories), Notes: sub.Notes}, nil
}

// Records returns the stored records of the session's identifier.
func (s *Service) Records(ctx context.Context, sess session.Session) ([]records.Record, error) {
	if sess.Identifier == "" {
		return nil, ErrUnauthenticated
	}
	return s.records.Load(ctx, sess.Identifier), nil
}
