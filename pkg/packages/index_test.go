package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segments(t *testing.T, x *Index, path, prefix string) []string {
	t.Helper()
	var out []string
	for _, n := range x.Children(path, prefix) {
		out = append(out, n.Segment)
	}
	return out
}

func TestPutGet(t *testing.T) {
	x := New()
	x.Put("java.util.concurrent")
	x.Put("java.io")

	for _, path := range []string{"java", "java.util", "java.util.concurrent", "java.io"} {
		_, ok := x.Get(path)
		assert.True(t, ok, path)
	}
	_, ok := x.Get("java.nio")
	assert.False(t, ok)
	_, ok = x.Get("java.util.concurrent.atomic")
	assert.False(t, ok)

	util, _ := x.Get("java.util")
	assert.Equal(t, "util.", util.Snippet())
	conc, _ := x.Get("java.util.concurrent")
	assert.Equal(t, "concurrent;", conc.Snippet())
	assert.Equal(t, "java.util.concurrent", conc.Path())

	assert.Same(t, util, x.Put("java.util"), "Put is idempotent")
	assert.Equal(t, 4, x.Len())
}

func TestChildren(t *testing.T) {
	x := New()
	x.Put("java.util")
	x.Put("java.io")
	x.Put("java.lang")
	x.Put("javax.swing")

	assert.Equal(t, []string{"io", "lang", "util"}, segments(t, x, "java", ""))
	assert.Equal(t, []string{"util"}, segments(t, x, "java", "u"))
	assert.Equal(t, []string{"java", "javax"}, segments(t, x, "", "ja"))
	assert.Empty(t, segments(t, x, "org", ""))
}

func TestRemove(t *testing.T) {
	x := New()
	x.Put("java.util.concurrent")
	x.Put("java.io")

	require.True(t, x.Remove("java.util"))
	_, ok := x.Get("java.util.concurrent")
	assert.False(t, ok)
	assert.False(t, x.Remove("java.util"))
	assert.False(t, x.Remove(""))

	java, _ := x.Get("java")
	assert.Equal(t, "java.", java.Snippet())
	x.Remove("java.io")
	assert.Equal(t, "java;", java.Snippet())
}

func TestClassCounting(t *testing.T) {
	x := New()
	x.AddClass("com.foo.bar")
	x.AddClass("com.foo.bar")
	x.AddClass("com.foo")

	x.RemoveClass("com.foo.bar")
	assert.True(t, x.Has("com.foo.bar"))

	x.RemoveClass("com.foo.bar")
	assert.False(t, x.Has("com.foo.bar"))
	assert.True(t, x.Has("com.foo"), "still holds a class")

	x.RemoveClass("com.foo")
	assert.False(t, x.Has("com"))
	assert.Equal(t, 0, x.Len())
}
