// Package config loads the YAML configuration, applies environment
// overrides, and supports hot reload of the config file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/leadflowhq/leadflow/internal/model"
)

// Load reads the config file at path over the defaults. A missing file
// is not an error: the defaults stand.
func Load(path string) (model.Config, error) {
	cfg := model.DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults stand; env overrides still apply below.
	case err != nil:
		return model.Config{}, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yamlv3.Unmarshal(data, &cfg); err != nil {
			return model.Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LoadEnv loads .env files into the process environment before Load
// picks the overrides up. Missing files are ignored.
func LoadEnv(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

// applyEnv overrides selected config fields from the environment.
func applyEnv(cfg *model.Config) {
	if v := os.Getenv("LEADFLOW_LOCAL_URL"); v != "" {
		cfg.Router.LocalURL = v
	}
	if v := os.Getenv("LEADFLOW_TRAINING_DIR"); v != "" {
		cfg.Feedback.TrainingDir = v
	}
	if v := os.Getenv("LEADFLOW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v, err := strconv.Atoi(os.Getenv("LEADFLOW_FREE_PLAN_LIMIT")); err == nil {
		cfg.Billing.FreePlanLimit = v
	}
	if v, err := strconv.Atoi(os.Getenv("LEADFLOW_MAX_ATTEMPTS")); err == nil && v > 0 {
		cfg.Workflow.MaxAttempts = v
	}
}
