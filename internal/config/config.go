package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "CaloriesTracker"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultDataDir         = "var/data"
	defaultHasher          = HasherSHA256
	defaultLoginAttempts   = 5
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultSessionTTL      = 12 * time.Hour
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	sessionSecondsEnvVar   = "SESSION_TTL_SECONDS"
	sessionDurationEnvVar  = "SESSION_TTL"
)

// Supported PASSWORD_HASHER values.
const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName          string
	AppEnv           string
	Port             string
	LogLevel         string
	DataDir          string
	CredentialsFile  string
	RecordsFile      string
	DatabaseURL      string
	RedisURL         string
	PasswordHasher   string
	ModelPath        string
	ModelURL         string
	SquarePrediction bool
	LoginAttempts    int
	ShutdownPeriod   time.Duration
	IdempotencyTTL   time.Duration
	SessionTTL       time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	dataDir := getEnv("DATA_DIR", defaultDataDir)
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DataDir:          dataDir,
		CredentialsFile:  getEnv("CREDENTIALS_FILE", filepath.Join(dataDir, "credentials.csv")),
		RecordsFile:      getEnv("RECORDS_FILE", filepath.Join(dataDir, "records.csv")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		PasswordHasher:   strings.ToLower(getEnv("PASSWORD_HASHER", defaultHasher)),
		ModelPath:        os.Getenv("MODEL_PATH"),
		ModelURL:         os.Getenv("MODEL_URL"),
		SquarePrediction: true,
		LoginAttempts:    defaultLoginAttempts,
		ShutdownPeriod:   defaultShutdownDelay,
		IdempotencyTTL:   defaultIdempotencyTTL,
		SessionTTL:       defaultSessionTTL,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationFromEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationFromEnv(sessionSecondsEnvVar, sessionDurationEnvVar, cfg.SessionTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("SQUARE_PREDICTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SQUARE_PREDICTION: %w", err)
		}
		cfg.SquarePrediction = b
	}

	if v := os.Getenv("LOGIN_ATTEMPTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOGIN_ATTEMPTS_PER_MINUTE: %w", err)
		}
		cfg.LoginAttempts = n
	}

	switch cfg.PasswordHasher {
	case HasherSHA256, HasherBcrypt:
	default:
		return Config{}, fmt.Errorf("invalid PASSWORD_HASHER %q: want %s or %s", cfg.PasswordHasher, HasherSHA256, HasherBcrypt)
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", sessionDurationEnvVar)
	}

	return cfg, nil
}

// ErrNoModel is returned by ValidateModel when neither model source is set.
var ErrNoModel = errors.New("MODEL_PATH or MODEL_URL must be set")

// ValidateModel checks that a model source is configured. Only components that
// predict need one, so Load does not enforce it.
func (c Config) ValidateModel() error {
	if c.ModelPath == "" && c.ModelURL == "" {
		return ErrNoModel
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the service runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// durationFromEnv prefers the integer seconds variable over the Go duration one.
func durationFromEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
