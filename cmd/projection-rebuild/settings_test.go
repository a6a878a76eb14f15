package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, 500, s.BatchSize)
	assert.Equal(t, 30*time.Minute, s.Timeout)
}

func TestLoadSettingsReadsEnv(t *testing.T) {
	t.Setenv("PROJECTION_BATCH_SIZE", "50")
	t.Setenv("PROJECTION_REBUILD_TIMEOUT", "5m")

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, 50, s.BatchSize)
	assert.Equal(t, 5*time.Minute, s.Timeout)
}

func TestLoadSettingsRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"zero batch":       {"PROJECTION_BATCH_SIZE", "0"},
		"negative batch":   {"PROJECTION_BATCH_SIZE", "-10"},
		"non-numeric":      {"PROJECTION_BATCH_SIZE", "lots"},
		"negative timeout": {"PROJECTION_REBUILD_TIMEOUT", "-1m"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := loadSettings()
			assert.Error(t, err)
		})
	}
}
