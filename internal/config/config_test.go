package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "MAX_RESUME_SIZE", "MAX_DOCUMENT_SIZE", "WORKER_POLL_INTERVAL", "MIN_TEXT_LENGTH", "LOG_JSON"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, int64(16<<20), cfg.Storage.MaxResumeSize)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxDocumentSize)
	assert.Equal(t, 10*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, 50, cfg.Extraction.MinTextLength)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("WORKER_CONCURRENCY", "7")
	t.Setenv("EXTRACTION_TIMEOUT", "2m")
	t.Setenv("LOG_DEBUG", "true")
	t.Setenv("UPLOAD_RATE_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 7, cfg.Worker.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Worker.ExtractionTimeout)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, 30, cfg.Redis.UploadRateLimit)
}

func TestGetEnvAsDurationFallsBack(t *testing.T) {
	t.Setenv("WATCHDOG_CEILING", "soon")
	assert.Equal(t, 5*time.Minute, getEnvAsDuration("WATCHDOG_CEILING", "5m"))
}

func TestMaxUploadSize(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{MaxResumeSize: 16 << 20, MaxDocumentSize: 10 << 20}}
	assert.Equal(t, int64(21<<20), cfg.MaxUploadSize())
}

func TestInitRepository(t *testing.T) {
	repo, err := InitRepository(&Config{Database: DatabaseConfig{Driver: DriverMemory}}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = InitRepository(&Config{Database: DatabaseConfig{Driver: "sqlite"}}, zap.NewNop())
	assert.Error(t, err)
}
