// Package config resolves shouldi settings from the environment.
//
// A .env file in the working directory is loaded first when present.
// Variables already set in the process environment win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/roach88/shouldi/internal/dataflow"
	"github.com/roach88/shouldi/internal/operations"
)

// Environment variable names.
const (
	EnvPyPIURL     = "SHOULDI_PYPI_URL"
	EnvSafetyBin   = "SHOULDI_SAFETY_BIN"
	EnvBanditBin   = "SHOULDI_BANDIT_BIN"
	EnvConcurrency = "SHOULDI_CONCURRENCY"
	EnvTimeout     = "SHOULDI_TIMEOUT"
)

// DefaultTimeout is the per-operation timeout when SHOULDI_TIMEOUT is unset.
const DefaultTimeout = 5 * time.Minute

// Config holds resolved settings. Command-line flags override these.
type Config struct {
	PyPIURL     string
	SafetyBin   string
	BanditBin   string
	Concurrency int
	Timeout     time.Duration
}

// Load reads the given env files (".env" when none are named) and resolves
// the configuration. Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	concurrency, err := intFromEnv(EnvConcurrency, dataflow.DefaultConcurrency)
	if err != nil {
		return nil, err
	}
	timeout, err := durationFromEnv(EnvTimeout, DefaultTimeout)
	if err != nil {
		return nil, err
	}

	return &Config{
		PyPIURL:     firstNonEmpty(env(EnvPyPIURL), operations.DefaultPyPIURL),
		SafetyBin:   firstNonEmpty(env(EnvSafetyBin), operations.DefaultSafetyBin),
		BanditBin:   firstNonEmpty(env(EnvBanditBin), operations.DefaultBanditBin),
		Concurrency: concurrency,
		Timeout:     timeout,
	}, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func intFromEnv(key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

// durationFromEnv accepts Go durations ("90s") or bare seconds ("90").
func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("%s must not be negative, got %q", key, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a duration like 90s, got %q", key, raw)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
