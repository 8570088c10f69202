package imports

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportClassNoop(t *testing.T) {
	src := "package com.example;\n\nimport java.util.List;\nimport java.io.*;\n\nclass A {}\n"
	tests := []struct {
		name      string
		qualified string
	}{
		{"java.lang", "java.lang.String"},
		{"same package", "com.example.Helper"},
		{"explicit import", "java.util.List"},
		{"wildcard", "java.io.File"},
		{"default package", "Standalone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit, ok := ImportClass(src, tt.qualified)
			assert.False(t, ok)
			assert.Nil(t, edit)
		})
	}
}

func TestImportClassMergesBlock(t *testing.T) {
	src := "package p;\n\nimport java.util.Map;\nimport java.io.File;\nimport java.util.Map;\n\nclass A {}\n"
	edit, ok := ImportClass(src, "java.util.ArrayList")
	require.True(t, ok)

	got := edit.Apply(src)
	want := "package p;\n\nimport java.io.File;\nimport java.util.ArrayList;\nimport java.util.Map;\n\nclass A {}\n"
	assert.Equal(t, want, got)

	_, ok = ImportClass(got, "java.util.ArrayList")
	assert.False(t, ok, "second import of the same class is a no-op")
}

func TestImportClassDeterministic(t *testing.T) {
	src := "package p;\nimport java.util.Map;\nclass A {}\n"
	a, ok := ImportClass(src, "java.util.List")
	require.True(t, ok)
	b, ok := ImportClass(src, "java.util.List")
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestImportClassPlacement(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"after package",
			"package p;\nclass A {}\n",
			"package p;\n\nimport java.util.List;\nclass A {}\n",
		},
		{
			"no package",
			"class A {}\n",
			"import java.util.List;\n\nclass A {}\n",
		},
		{
			"commented imports ignored",
			"package p;\n// import java.util.List;\n/* import java.util.List; */\nclass A {}\n",
			"package p;\n\nimport java.util.List;\n// import java.util.List;\n/* import java.util.List; */\nclass A {}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit, ok := ImportClass(tt.src, "java.util.List")
			require.True(t, ok)
			assert.Equal(t, tt.want, edit.Apply(tt.src))
		})
	}
}

func TestImportNestedClass(t *testing.T) {
	src := "package p;\nimport java.util.List;\n"
	edit, ok := ImportClass(src, "java.util.Map$Entry")
	require.True(t, ok)
	assert.Contains(t, edit.NewText, "import java.util.Map.Entry;")

	_, ok = ImportClass("import java.util.Map.*;\n", "java.util.Map$Entry")
	assert.False(t, ok)
}

func TestStaticImportsKept(t *testing.T) {
	src := "import static java.lang.Math.max;\nimport java.util.List;\n"
	edit, ok := ImportClass(src, "java.util.Set")
	require.True(t, ok)
	lines := strings.Split(edit.NewText, "\n")
	assert.Equal(t, []string{
		"import java.util.List;",
		"import java.util.Set;",
		"import static java.lang.Math.max;",
	}, lines)
}

func TestScan(t *testing.T) {
	src := "package  com . acme ;\nimport java.util .*;\n  import static a.B.c;\n"
	stmts, pkg, end := Scan(src)
	assert.Equal(t, "com.acme", pkg)
	assert.Equal(t, strings.Index(src, ";")+1, end)
	require.Len(t, stmts, 2)
	assert.Equal(t, Statement{Start: 22, End: 42, Path: "java.util", Wildcard: true}, stmts[0])
	assert.True(t, stmts[1].Static)
	assert.Equal(t, "a.B.c", stmts[1].Path)
	assert.Equal(t, "import", src[stmts[1].Start:stmts[1].Start+6])
}

func TestEditDiff(t *testing.T) {
	src := "package p;\nclass A {}\n"
	edit, ok := ImportClass(src, "java.util.List")
	require.True(t, ok)
	diff, err := edit.Diff(src, "A.java")
	require.NoError(t, err)
	assert.Contains(t, diff, "+import java.util.List;")
	assert.Contains(t, diff, "--- A.java")
}
