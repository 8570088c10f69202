package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestResolveClasspath(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "libs", "a.jar"))
	touch(t, filepath.Join(base, "libs", "sub", "b.jar"))
	touch(t, filepath.Join(base, "libs", "notes.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "build", "classes"), 0o755))

	pr, err := NewPathResolver(base)
	require.NoError(t, err)

	got := pr.ResolveClasspath([]string{
		"build/classes" + string(os.PathListSeparator) + "missing.jar",
		"libs/**/*.jar",
		filepath.Join(base, "libs", "a.jar"),
		"",
	})
	assert.Equal(t, []string{
		filepath.Join(base, "build", "classes"),
		filepath.Join(base, "libs", "a.jar"),
		filepath.Join(base, "libs", "sub", "b.jar"),
	}, got)
}

func TestResolveRelativePath(t *testing.T) {
	pr, err := NewPathResolver("/work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/work", "x.jar"), pr.ResolveRelativePath("x.jar"))
	assert.Equal(t, "/abs/x.jar", pr.ResolveRelativePath("/abs/x.jar"))
	assert.True(t, strings.HasSuffix(pr.GetConfigDir(), "javacomplete"))
	assert.Equal(t, "/work", pr.GetRuntimeInfo()["base_dir"])
}
