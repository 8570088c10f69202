package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[index]
classpath = ["libs/android.jar", "build/classes"]
include_android = false
watch_debounce_ms = 50

[completion]
inherit_depth = 3
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"libs/android.jar", "build/classes"}, cfg.Index.Classpath)
	assert.False(t, cfg.Index.IncludeAndroid)
	assert.Equal(t, 50*time.Millisecond, cfg.WatchDebounce())
	assert.Equal(t, 3, cfg.Completion.InheritDepth)
	assert.Equal(t, 50, cfg.Completion.DefaultLimit, "unset values keep defaults")
	assert.Equal(t, 64, cfg.Server.MaxLimit)
}

func TestLoadConfigPartial(t *testing.T) {
	path := writeConfig(t, `
[server]
max_limit = "lots"
min_prefix = 2

[index]
workers = 2.5
exclude = ["**/internal/**", 7]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Server.MaxLimit)
	assert.Equal(t, 2, cfg.Server.MinPrefix)
	assert.Equal(t, 4, cfg.Index.Workers)
	assert.Equal(t, []string{"**/internal/**"}, cfg.Index.Exclude)
}

func TestLoadConfigGarbage(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[[[ not toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, again.Server)
	assert.Equal(t, cfg.Completion, again.Completion)
	assert.Equal(t, cfg.Index.Exclude, again.Index.Exclude)
	assert.Empty(t, again.Index.Classpath)
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	limit := 10
	require.NoError(t, cfg.Update(path, &limit, nil, nil))
	assert.Equal(t, 10, cfg.Server.MaxLimit)

	saved, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, saved.Server.MaxLimit)
	assert.Equal(t, 0, saved.Server.MinPrefix)
}
