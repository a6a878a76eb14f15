package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFromEnvDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://app@db/recruitment")

	settings, err := SettingsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@db/recruitment", settings.DSN)
	assert.Equal(t, 20, settings.MaxOpenConns)
	assert.Equal(t, 5, settings.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, settings.ConnMaxLifetime)
	assert.False(t, settings.LogSQL)
}

func TestSettingsFromEnvRejectsBadPool(t *testing.T) {
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "many")
	_, err := SettingsFromEnv()
	assert.Error(t, err)
}

func TestConnectRequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), Settings{DSN: "   "})
	assert.Error(t, err)
}

func TestConnectFromEnvWithoutDSNFallsBack(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	db, cleanup := ConnectFromEnv(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer cleanup()
	assert.Nil(t, db)
}
