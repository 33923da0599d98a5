package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLoggingLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	_, err := ConfigureLogging(types.AppConfig{Logging: types.LoggingConfig{Level: "warn"}})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	_, err = ConfigureLogging(types.AppConfig{DebugMode: true, Logging: types.LoggingConfig{Level: "warn"}})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	_, err = ConfigureLogging(types.AppConfig{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	_, err = ConfigureLogging(types.AppConfig{Logging: types.LoggingConfig{Level: "loud"}})
	assert.Error(t, err)
}

func TestConfigureLoggingFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	path := filepath.Join(t.TempDir(), "dockerfs.log")

	closer, err := ConfigureLogging(types.AppConfig{Logging: types.LoggingConfig{Level: "info", File: path, MaxSizeMB: 1}})
	require.NoError(t, err)
	require.NotNil(t, closer)

	log.Info().Str("mount_point", "/mnt/docker").Msg("filesystem mounted")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "filesystem mounted")
	assert.Contains(t, string(data), `"mount_point":"/mnt/docker"`)
}
