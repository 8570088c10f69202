package symbols

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

func names(descs []*model.FieldDescription) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Name()
	}
	sort.Strings(out)
	return out
}

func TestFindPrefixCompleteness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := "abAB_$1"
	d := New(nil)
	indexed := map[string]bool{}
	for i := 0; i < 400; i++ {
		n := 1 + rng.Intn(6)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		name := b.String()
		if indexed[name] {
			continue
		}
		indexed[name] = true
		d.Put("com.foo.Bar", &model.FieldDescription{FieldName: name, Type: "int"})
	}

	prefixes := []string{"", "a", "ab", "A", "_$", "b1", "zz", "aB_"}
	for _, prefix := range prefixes {
		t.Run(fmt.Sprintf("prefix=%q", prefix), func(t *testing.T) {
			var want []string
			for name := range indexed {
				if strings.HasPrefix(name, prefix) {
					want = append(want, name)
				}
			}
			sort.Strings(want)
			got := names(Find[*model.FieldDescription](d, "com.foo.Bar", prefix))
			if len(want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestFindFiltersVariant(t *testing.T) {
	d := New(nil)
	cls := model.NewClass("java.lang.StringBuilder")
	cls.AddMethod("append", "java.lang.StringBuilder", []string{"int"}, model.AccPublic)
	cls.AddMethod("append", "java.lang.StringBuilder", []string{"char"}, model.AccPublic)
	cls.AddField("count", "int", model.AccPublic)
	d.IndexClass(cls)

	methods := Find[*model.MethodDescription](d, cls.QualifiedName, "a")
	assert.Len(t, methods, 2, "overloads share a key")
	assert.Empty(t, Find[*model.FieldDescription](d, cls.QualifiedName, "a"))
	assert.Len(t, Find[model.Description](d, cls.QualifiedName, ""), 3)
}

func TestPutRemoveRestores(t *testing.T) {
	d := New(nil)
	base := &model.FieldDescription{FieldName: "length", Type: "int"}
	d.Put("java.lang.String", base)

	before := Find[model.Description](d, "java.lang.String", "")
	added := &model.FieldDescription{FieldName: "lengthy", Type: "int"}
	d.Put("java.lang.String", added)
	require.Len(t, Find[model.Description](d, "java.lang.String", ""), 2)

	removed, ok := d.Remove("java.lang.String", "lengthy")
	require.True(t, ok)
	assert.Equal(t, []model.Description{added}, removed)
	assert.Equal(t, before, Find[model.Description](d, "java.lang.String", ""))

	_, ok = d.Remove("java.lang.String", "lengthy")
	assert.False(t, ok)
	_, ok = d.Remove("no.such.Category", "x")
	assert.False(t, ok)

	d.Remove("java.lang.String", "length")
	assert.Equal(t, 0, d.Categories(), "empty category is dropped")
}

func TestInverseNameSameInstance(t *testing.T) {
	d := New(nil)
	bar := model.NewClass("com.foo.Bar")
	d.IndexClass(bar)
	d.IndexClass(model.NewClass("com.foo.Baz"))

	bySimple := Find[*model.ClassDescription](d, CategoryClass, "Bar")
	byQualified := Find[*model.ClassDescription](d, CategoryClass, "com.foo.Bar")
	require.Len(t, bySimple, 1)
	require.Len(t, byQualified, 1)
	assert.Same(t, bar, bySimple[0])
	assert.Same(t, bar, byQualified[0])

	assert.Len(t, Find[*model.ClassDescription](d, CategoryClass, "com.foo."), 2)
	assert.Len(t, Find[*model.ClassDescription](d, CategoryClass, "Ba"), 2)
}

func TestDefaultPackageKeysCollapse(t *testing.T) {
	d := New(nil)
	main := model.NewClass("Main")
	d.IndexClass(main)
	assert.Len(t, Find[*model.ClassDescription](d, CategoryClass, "Main"), 1)
	assert.Equal(t, 1, d.Len(CategoryClass))

	d.RemoveClass(main)
	assert.Equal(t, 0, d.Len(CategoryClass))
}

func TestRemoveClass(t *testing.T) {
	d := New(nil)
	list := model.NewClass("java.util.List")
	list.AddMethod("add", "boolean", []string{"java.lang.Object"}, model.AccPublic)
	awt := model.NewClass("java.awt.List")
	d.IndexClass(list)
	d.IndexClass(awt)

	d.RemoveClass(list)

	_, ok := d.Class("java.util.List")
	assert.False(t, ok)
	got, ok := d.Class("java.awt.List")
	require.True(t, ok)
	assert.Same(t, awt, got)
	assert.Empty(t, Find[model.Description](d, "java.util.List", ""))
	assert.Equal(t, []*model.ClassDescription{awt}, Find[*model.ClassDescription](d, CategoryClass, "List"))
}

func TestTouchIsMonotonic(t *testing.T) {
	d := New(nil)
	a := model.NewKeyword("for")
	b := model.NewKeyword("final")
	s1 := d.Touch(a)
	s2 := d.Touch(b)
	assert.Greater(t, s2, s1)
	assert.Greater(t, b.LastUsed(), a.LastUsed())
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	d := New(nil)
	for i := 0; i < 50; i++ {
		d.IndexClass(model.NewClass(fmt.Sprintf("pkg.C%d", i)))
	}
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				cls := model.NewClass(fmt.Sprintf("other%d.D%d", w, i))
				cls.AddField("f", "int", model.AccPublic)
				d.IndexClass(cls)
				d.RemoveClass(cls)
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if n := len(Find[*model.ClassDescription](d, CategoryClass, "pkg.C")); n != 50 {
					t.Errorf("found %d classes, want 50", n)
					return
				}
			}
		}()
	}
	wg.Wait()
}
