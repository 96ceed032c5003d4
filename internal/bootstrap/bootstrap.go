// Package bootstrap builds the storage and model backends selected by config.
// Both the HTTP server and the admin CLI go through it so they always agree on
// where credentials and records live.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calories-tracker/calories_tracker/internal/config"
	"github.com/calories-tracker/calories_tracker/internal/identity"
	"github.com/calories-tracker/calories_tracker/internal/prediction"
	"github.com/calories-tracker/calories_tracker/internal/records"
)

// Repositories picks Postgres when a pool is available and the CSV files otherwise.
func Repositories(cfg config.Config, db *pgxpool.Pool, logger *slog.Logger) (identity.Repository, records.Repository, error) {
	if db != nil {
		return identity.NewPostgresRepository(db), records.NewPostgresRepository(db), nil
	}

	credentials, err := identity.NewCSVRepository(cfg.CredentialsFile, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open credentials store: %w", err)
	}
	recs, err := records.NewCSVRepository(cfg.RecordsFile, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open records store: %w", err)
	}
	return credentials, recs, nil
}

// Estimator prefers a model server over a local model file.
func Estimator(cfg config.Config) (*prediction.Estimator, error) {
	if err := cfg.ValidateModel(); err != nil {
		return nil, err
	}
	if cfg.ModelURL != "" {
		return prediction.NewEstimator(prediction.NewRemoteModel(cfg.ModelURL, 0), cfg.SquarePrediction), nil
	}
	model, err := prediction.LoadLinearModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.ModelPath, err)
	}
	return prediction.NewEstimator(model, cfg.SquarePrediction), nil
}
