package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsproxy_go/internal/types"
)

func TestInit_JSONToFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	path := filepath.Join(t.TempDir(), "wsproxy.log")

	require.NoError(t, Init(types.LogConf{Level: "warn", Format: "json", File: path}))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	Info().Msg("dropped")
	Warn().Str("k", "v").Msg("kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"k":"v"`)
	assert.Contains(t, string(data), `"message":"kept"`)
}

func TestInit_Rejects(t *testing.T) {
	assert.Error(t, Init(types.LogConf{Level: "loud"}))
	assert.Error(t, Init(types.LogConf{Level: "info", Format: "xml"}))
}
