package config

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflowhq/leadflow/internal/model"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	defaults := model.DefaultConfig()
	assert.Equal(t, defaults.Workflow.MaxAttempts, cfg.Workflow.MaxAttempts)
	assert.Equal(t, defaults.Router.CacheSize, cfg.Router.CacheSize)
	assert.Equal(t, defaults.Billing.FreePlanLimit, cfg.Billing.FreePlanLimit)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
workflow:
  max_attempts: 5
router:
  cache_size: 16
  escalate_keywords: [legal]
billing:
  free_plan_limit: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Workflow.MaxAttempts)
	assert.Equal(t, 16, cfg.Router.CacheSize)
	assert.Equal(t, []string{"legal"}, cfg.Router.EscalateKeywords)
	assert.Equal(t, 100, cfg.Billing.FreePlanLimit)
	// Untouched sections keep their defaults.
	assert.Equal(t, model.DefaultConfig().Reward.Epochs, cfg.Reward.Epochs)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workflow: ["), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LEADFLOW_LOCAL_URL", "http://gpu-box:11434/api/generate")
	t.Setenv("LEADFLOW_MAX_ATTEMPTS", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://gpu-box:11434/api/generate", cfg.Router.LocalURL)
	assert.Equal(t, 7, cfg.Workflow.MaxAttempts)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LEADFLOW_TRAINING_DIR=/tmp/leadflow-data\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("LEADFLOW_TRAINING_DIR") })

	LoadEnv(envPath, filepath.Join(dir, "missing.env"))
	assert.Equal(t, "/tmp/leadflow-data", os.Getenv("LEADFLOW_TRAINING_DIR"))
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workflow:\n  max_attempts: 3\n"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reloaded := make(chan model.Config, 1)
	go func() {
		_ = Watch(ctx, path, log.New(io.Discard, "", 0), func(cfg model.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to install.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("workflow:\n  max_attempts: 9\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 9, cfg.Workflow.MaxAttempts)
	case <-ctx.Done():
		t.Fatal("config reload not observed")
	}
}
