package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIni = `
[common]
buffer  = 4096
timeout = 5

[gateway]
addr             = 127.0.0.1
port             = 8080
frkey            = dest
haproxy_protocol = true

[log]
level = debug
`

func writeIni(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wsproxy.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := NewFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func TestLoad_DefaultsWithPort(t *testing.T) {
	cfg, err := Load(parseFlags(t, "--port", "9000"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Addr)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 1024, cfg.BufferSize)
	assert.Equal(t, 3*time.Second, cfg.DialTimeout())
	assert.Equal(t, "X-Real-IP", cfg.RealIPHeader)
	assert.Empty(t, cfg.FrKey)
	assert.False(t, cfg.ProxyProtocol)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr())
}

func TestLoad_MissingPort(t *testing.T) {
	_, err := Load(parseFlags(t))
	require.Error(t, err)
}

func TestLoad_IniFile(t *testing.T) {
	path := writeIni(t, sampleIni)
	cfg, err := Load(parseFlags(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Addr)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "dest", cfg.FrKey)
	assert.True(t, cfg.ProxyProtocol)
	assert.Equal(t, 4096, cfg.BufferSize)
	assert.Equal(t, 5, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Level)
	// 未出现在文件中的键保留默认值
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "X-Real-IP", cfg.RealIPHeader)
}

func TestLoad_FlagsOverrideIniAndEnv(t *testing.T) {
	path := writeIni(t, sampleIni)
	t.Setenv("WSPROXY_TIMEOUT", "7")
	t.Setenv("WSPROXY_FRKEY", "target")

	cfg, err := Load(parseFlags(t, "--config", path, "--port", "9100", "--realip-header", "CF-Connecting-IP"))
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 7, cfg.Timeout)
	assert.Equal(t, "target", cfg.FrKey)
	assert.Equal(t, "CF-Connecting-IP", cfg.RealIPHeader)
	// 未显式设置的参数不覆盖 ini
	assert.Equal(t, "127.0.0.1", cfg.Addr)
}

func TestLoad_AESOnlyRequiresSecret(t *testing.T) {
	_, err := Load(parseFlags(t, "--port", "9000", "--aes-only"))
	require.Error(t, err)

	cfg, err := Load(parseFlags(t, "--port", "9000", "--aes-only", "--secret", "s3cret"))
	require.NoError(t, err)
	assert.True(t, cfg.AESOnly)
	assert.Equal(t, "s3cret", cfg.Secret)
}

func TestValidate_Ranges(t *testing.T) {
	cfg := Default()
	cfg.Port = 70000
	assert.Error(t, Validate(cfg))

	cfg.Port = 80
	cfg.BufferSize = 0
	assert.Error(t, Validate(cfg))

	cfg.BufferSize = 1
	cfg.Timeout = 0
	assert.Error(t, Validate(cfg))

	cfg.Timeout = 1
	assert.NoError(t, Validate(cfg))
}

func TestLoadIni_MissingFile(t *testing.T) {
	err := LoadIni(Default(), filepath.Join(t.TempDir(), "absent.ini"))
	assert.Error(t, err)
}
