package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranleduy2000/javaide-sub031/pkg/model"
	"github.com/tranleduy2000/javaide-sub031/pkg/symbols"
)

func class(qualified, source string) *model.ClassDescription {
	cls := model.NewClass(qualified)
	cls.Source = source
	cls.AddMethod("run", "void", nil, model.AccPublic)
	return cls
}

func TestAddRemoveSource(t *testing.T) {
	s := New(1, nil)
	s.AddClass(class("com.foo.A", "a.jar"))
	s.AddClass(class("com.foo.B", "a.jar"))
	s.AddClass(class("org.bar.C", "b.jar"))
	require.Equal(t, 3, s.NumClasses())
	assert.True(t, s.HasPackage("com.foo"))
	assert.Equal(t, []string{"a.jar", "b.jar"}, s.Sources())

	removed := s.RemoveSource("a.jar")
	assert.Len(t, removed, 2)
	assert.Equal(t, 1, s.NumClasses())
	assert.False(t, s.HasPackage("com"))
	assert.Empty(t, symbols.Find[*model.ClassDescription](s.Symbols, symbols.CategoryClass, "A"))
	assert.Empty(t, symbols.Find[model.Description](s.Symbols, "com.foo.A", ""))

	assert.Nil(t, s.RemoveSource("a.jar"))
}

func TestAddClassReplaces(t *testing.T) {
	s := New(1, nil)
	first := class("com.foo.A", "a.jar")
	s.AddClass(first)
	second := class("com.foo.A", "classes")
	s.AddClass(second)

	assert.Equal(t, 1, s.NumClasses())
	got, ok := s.Class("com.foo.A")
	require.True(t, ok)
	assert.Same(t, second, got)

	// The earlier source no longer owns the class.
	s.RemoveSource("a.jar")
	_, ok = s.Class("com.foo.A")
	assert.True(t, ok)
}

func TestAddClassConcurrentSameName(t *testing.T) {
	s := New(1, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.AddClass(class("com.foo.A", fmt.Sprintf("src%d", i)))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.NumClasses())
	found := symbols.Find[*model.ClassDescription](s.Symbols, symbols.CategoryClass, "com.foo.A")
	require.Len(t, found, 1)
	cur, ok := s.Class("com.foo.A")
	require.True(t, ok)
	assert.Same(t, cur, found[0])
	assert.Len(t, symbols.Find[model.Description](s.Symbols, "com.foo.A", ""), 1)

	for _, src := range s.Sources() {
		s.RemoveSource(src)
	}
	assert.Equal(t, 0, s.NumClasses())
	assert.False(t, s.HasPackage("com.foo"))
}

func TestSourceHash(t *testing.T) {
	s := New(1, nil)
	_, ok := s.SourceHash("a.jar")
	assert.False(t, ok)
	s.SetSourceHash("a.jar", 42)
	h, ok := s.SourceHash("a.jar")
	assert.True(t, ok)
	assert.EqualValues(t, 42, h)
}

func TestInheritUsage(t *testing.T) {
	clock := &symbols.Clock{}
	prev := New(1, clock)
	old := class("com.foo.A", "a.jar")
	prev.AddClass(old)
	prev.Symbols.Touch(old.Methods[0])

	next := New(2, clock)
	fresh := class("com.foo.A", "a.jar")
	next.AddClass(fresh)
	next.InheritUsage(prev)

	assert.Equal(t, old.Methods[0].LastUsed(), fresh.Methods[0].LastUsed())
	assert.Zero(t, fresh.LastUsed())
}
