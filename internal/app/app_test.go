package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/config"
)

func testConfig(t *testing.T, stream bool) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "lab.db")},
		Lock:     config.LockConfig{Backend: "local"},
		Booking:  config.BookingConfig{MaxRetries: 1},
		SSE:      config.SSEConfig{Enabled: stream, HeartbeatInterval: time.Hour},
	}
}

func TestOpen_WiresStream(t *testing.T) {
	a, err := Open(context.Background(), testConfig(t, true), logger.NewNop())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Streamer)
	assert.NotNil(t, a.Services().AuditStream)

	version, err := a.Gateway.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Positive(t, version)
}

func TestOpen_StreamDisabled(t *testing.T) {
	a, err := Open(context.Background(), testConfig(t, false), logger.NewNop())
	require.NoError(t, err)

	assert.Nil(t, a.Streamer)
	assert.Nil(t, a.Services().AuditStream)
	assert.NotPanics(t, a.StopStreams)
	assert.NoError(t, a.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Database.Driver = "mysql"

	_, err := Open(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
