package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODEL_PATH", "model.json")
	t.Setenv("DATA_DIR", "/tmp/calories")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CredentialsFile != filepath.Join("/tmp/calories", "credentials.csv") {
		t.Fatalf("unexpected credentials file %s", cfg.CredentialsFile)
	}
	if cfg.RecordsFile != filepath.Join("/tmp/calories", "records.csv") {
		t.Fatalf("unexpected records file %s", cfg.RecordsFile)
	}
	if cfg.PasswordHasher != HasherSHA256 {
		t.Fatalf("expected sha256 hasher, got %s", cfg.PasswordHasher)
	}
	if !cfg.SquarePrediction {
		t.Fatalf("expected squared predictions by default")
	}
	if cfg.SessionTTL != defaultSessionTTL {
		t.Fatalf("expected session ttl %s, got %s", defaultSessionTTL, cfg.SessionTTL)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}

func TestLoadDurationsPreferSeconds(t *testing.T) {
	t.Setenv("MODEL_URL", "http://model:9000/predict")
	t.Setenv("SESSION_TTL_SECONDS", "60")
	t.Setenv("SESSION_TTL", "5h")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != time.Minute {
		t.Fatalf("expected 1m session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s shutdown, got %s", cfg.ShutdownPeriod)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad hasher":      {"MODEL_PATH": "m.json", "PASSWORD_HASHER": "md5"},
		"bad square flag": {"MODEL_PATH": "m.json", "SQUARE_PREDICTION": "maybe"},
		"bad ttl":         {"MODEL_PATH": "m.json", "SESSION_TTL": "soon"},
		"zero ttl":        {"MODEL_PATH": "m.json", "SESSION_TTL_SECONDS": "0"},
		"bad attempts":    {"MODEL_PATH": "m.json", "LOGIN_ATTEMPTS_PER_MINUTE": "many"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("MODEL_PATH", "")
			t.Setenv("MODEL_URL", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadWithoutModel(t *testing.T) {
	t.Setenv("MODEL_PATH", "")
	t.Setenv("MODEL_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load without a model must succeed: %v", err)
	}
	if !errors.Is(cfg.ValidateModel(), ErrNoModel) {
		t.Fatalf("expected ErrNoModel from ValidateModel")
	}
	cfg.ModelURL = "http://model:9000/predict"
	if err := cfg.ValidateModel(); err != nil {
		t.Fatalf("expected model url to satisfy validation: %v", err)
	}
}

func TestIsDev(t *testing.T) {
	if !(Config{AppEnv: "Local"}).IsDev() {
		t.Fatalf("expected local to be dev")
	}
	if (Config{AppEnv: "production"}).IsDev() {
		t.Fatalf("expected production not to be dev")
	}
}
