package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/calories-tracker/calories_tracker/internal/bootstrap"
	"github.com/calories-tracker/calories_tracker/internal/config"
	"github.com/calories-tracker/calories_tracker/internal/hashing"
	"github.com/calories-tracker/calories_tracker/internal/identity"
	"github.com/calories-tracker/calories_tracker/internal/infra"
	"github.com/calories-tracker/calories_tracker/internal/logging"
	"github.com/calories-tracker/calories_tracker/internal/records"
)

// env holds what every subcommand needs once the configuration is loaded.
type env struct {
	cfg        config.Config
	log        *slog.Logger
	db         *pgxpool.Pool
	identities *identity.Service
	records    *records.Service
}

// close releases the pool; it is safe to call more than once.
func (e *env) close() {
	if e.db != nil {
		e.db.Close()
		e.db = nil
	}
}

// newRootCmd builds the command tree. The caller owns e and must close it after
// Execute, which also covers subcommands that fail.
func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "calories-admin",
		Short:         "Maintain the calories tracker credential and record stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.open(cmd.Context())
		},
	}

	root.AddCommand(
		newRegisterCmd(e),
		newVerifyCmd(e),
		newRecordsCmd(e),
		newEstimateCmd(e),
		newMigrateCmd(e),
	)
	return root
}

func (e *env) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	e.cfg = cfg
	e.log = logging.NewWithWriter(os.Stderr, cfg.LogLevel)

	e.db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL, e.log)
	if err != nil {
		return err
	}

	credentialRepo, recordRepo, err := bootstrap.Repositories(cfg, e.db, e.log)
	if err != nil {
		e.close()
		return err
	}
	e.identities = identity.NewService(credentialRepo, hashing.New(cfg.PasswordHasher), e.log)
	e.records = records.NewService(recordRepo, e.log)
	return nil
}
