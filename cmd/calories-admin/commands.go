package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/calories-tracker/calories_tracker/internal/bootstrap"
	"github.com/calories-tracker/calories_tracker/internal/form"
	"github.com/calories-tracker/calories_tracker/internal/identity"
	"github.com/calories-tracker/calories_tracker/internal/infra"
	"github.com/calories-tracker/calories_tracker/internal/prediction"
)

func newRegisterCmd(e *env) *cobra.Command {
	var creds identity.Credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Add a credential unless the email is already registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := e.identities.Register(cmd.Context(), creds)
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("%s is already registered", identity.Normalize(creds.Identifier))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", identity.Normalize(creds.Identifier))
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Identifier, "email", "", "email to register")
	cmd.Flags().StringVar(&creds.Password, "password", "", "password to store as a digest")
	return cmd
}

func newVerifyCmd(e *env) *cobra.Command {
	var creds identity.Credentials
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check an email and password against the credential store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.identities.Authenticate(cmd.Context(), creds) {
				return errors.New("invalid credentials")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Identifier, "email", "", "email to check")
	cmd.Flags().StringVar(&creds.Password, "password", "", "password to check")
	return cmd
}

func newRecordsCmd(e *env) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List the stored session records of an email",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs := e.records.Load(cmd.Context(), identity.Normalize(email))
			if len(recs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no records for %s\n", email)
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tNAME\tGENDER\tACTIVITY\tCALORIES")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Identifier, r.Name, r.Gender, r.ActivityLevel, prediction.FormatKcal(r.CaloriesBurnt))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email whose records to list")
	return cmd
}

func newEstimateCmd(e *env) *cobra.Command {
	var in form.RawInput
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Run the configured model on one set of measurements",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := form.Parse(in)
			if err != nil {
				return err
			}
			est, err := bootstrap.Estimator(e.cfg)
			if err != nil {
				return err
			}
			calories, err := est.Estimate(cmd.Context(), sub.Features)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prediction.FormatKcal(calories))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.Age, "age", "", "age in years")
	flags.StringVar(&in.Height, "height", "", "height in cm")
	flags.StringVar(&in.Weight, "weight", "", "weight in kg")
	flags.StringVar(&in.Duration, "duration", "", "exercise duration in minutes")
	flags.StringVar(&in.HeartRate, "heart-rate", "", "heart rate in bpm")
	flags.StringVar(&in.BodyTemp, "body-temp", "", "body temperature in °C")
	return cmd
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema (requires DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.db == nil {
				return errors.New("DATABASE_URL is not set; the csv stores need no migration")
			}
			// Opening the pool already applied pending migrations; this is a no-op rerun.
			if err := infra.RunMigrations(cmd.Context(), e.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
