package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfiguration(t *testing.T) {
	saved := Config
	defer func() { Config = saved }()

	assert.NoError(t, LoadConfiguration(""))

	filename := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(filename, []byte(`
[main]
log_level = "debug"

[server]
port = 8080

[render]
debounce_ms = 50
default_profile = "profiles/mono.toml"
`), 0o600))

	require.NoError(t, LoadConfiguration(filename))
	assert.Equal(t, "debug", Config.Main.LogLevel)
	assert.Equal(t, "127.0.0.1", Config.Server.Host)
	assert.Equal(t, 8080, Config.Server.Port)
	assert.Equal(t, 50*time.Millisecond, Config.Render.Debounce())
	assert.Equal(t, "profiles/mono.toml", Config.Render.DefaultProfile)

	assert.Error(t, LoadConfiguration(filepath.Join(t.TempDir(), "nope.toml")))
}

func TestWriteConfig(t *testing.T) {
	saved := Config
	defer func() { Config = saved }()

	filename := filepath.Join(t.TempDir(), "config.toml")
	Config.Server.Port = 9000
	require.NoError(t, WriteConfig(filename))

	Config = saved
	require.NoError(t, LoadConfiguration(filename))
	assert.Equal(t, 9000, Config.Server.Port)
	assert.Equal(t, 30, Config.Render.DebounceMS)
}

func TestLimits(t *testing.T) {
	assert.Equal(t, int64(32<<20), configServer{MaxUploadMB: 32}.MaxUploadBytes())
	assert.Equal(t, int64(1<<20), configServer{}.MaxUploadBytes())
	assert.Equal(t, time.Duration(0), configRender{DebounceMS: -4}.Debounce())
}
