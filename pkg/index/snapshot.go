// Package index bundles the symbol dictionary and package index built from
// one classpath resolution into a Snapshot.
package index

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/tranleduy2000/javaide-sub031/pkg/model"
	"github.com/tranleduy2000/javaide-sub031/pkg/packages"
	"github.com/tranleduy2000/javaide-sub031/pkg/symbols"
)

// Snapshot is the queryable state of one index build. A snapshot under
// construction is private to its builder; once published, only incremental
// class updates mutate it, each under the locks of the entries it touches.
type Snapshot struct {
	Generation uint64
	Symbols    *symbols.Dictionary
	Packages   *packages.Index

	nclasses atomic.Int64

	// classLocks serialize updates to one qualified name.
	classLocks [64]sync.Mutex

	mu      sync.Mutex
	sources map[string]*source
}

type source struct {
	hash    uint64
	classes map[string]*model.ClassDescription
}

func New(generation uint64, clock *symbols.Clock) *Snapshot {
	return &Snapshot{
		Generation: generation,
		Symbols:    symbols.New(clock),
		Packages:   packages.New(),
		sources:    make(map[string]*source),
	}
}

// AddClass indexes cls and records it under cls.Source. A class already
// indexed under the same qualified name is replaced.
func (s *Snapshot) AddClass(cls *model.ClassDescription) {
	l := s.classLock(cls.QualifiedName)
	l.Lock()
	defer l.Unlock()
	if old, ok := s.Symbols.Class(cls.QualifiedName); ok {
		s.removeClass(old)
	}
	s.Symbols.IndexClass(cls)
	s.Packages.AddClass(cls.Package())
	s.nclasses.Add(1)

	s.mu.Lock()
	src, ok := s.sources[cls.Source]
	if !ok {
		src = &source{classes: make(map[string]*model.ClassDescription)}
		s.sources[cls.Source] = src
	}
	src.classes[cls.QualifiedName] = cls
	s.mu.Unlock()
}

func (s *Snapshot) removeClass(cls *model.ClassDescription) {
	s.Symbols.RemoveClass(cls)
	s.Packages.RemoveClass(cls.Package())
	s.nclasses.Add(-1)

	s.mu.Lock()
	if src, ok := s.sources[cls.Source]; ok {
		delete(src.classes, cls.QualifiedName)
	}
	s.mu.Unlock()
}

// RemoveSource removes every class loaded from path and returns them.
func (s *Snapshot) RemoveSource(path string) []*model.ClassDescription {
	s.mu.Lock()
	src, ok := s.sources[path]
	delete(s.sources, path)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	removed := make([]*model.ClassDescription, 0, len(src.classes))
	for _, cls := range src.classes {
		l := s.classLock(cls.QualifiedName)
		l.Lock()
		// Only drop the entry if it still belongs to this source.
		if cur, ok := s.Symbols.Class(cls.QualifiedName); ok && cur == cls {
			s.Symbols.RemoveClass(cls)
			s.Packages.RemoveClass(cls.Package())
			s.nclasses.Add(-1)
		}
		l.Unlock()
		removed = append(removed, cls)
	}
	return removed
}

func (s *Snapshot) classLock(qualified string) *sync.Mutex {
	return &s.classLocks[xxhash.Sum64String(qualified)%uint64(len(s.classLocks))]
}

// SourceHash returns the content hash recorded for path.
func (s *Snapshot) SourceHash(path string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[path]
	if !ok {
		return 0, false
	}
	return src.hash, true
}

// SetSourceHash records the content hash of path.
func (s *Snapshot) SetSourceHash(path string, hash uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[path]
	if !ok {
		src = &source{classes: make(map[string]*model.ClassDescription)}
		s.sources[path] = src
	}
	src.hash = hash
}

// Sources returns the classpath entries with recorded classes or hashes.
func (s *Snapshot) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sources))
	for p := range s.sources {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Class returns the class indexed under qualified.
func (s *Snapshot) Class(qualified string) (*model.ClassDescription, bool) {
	return s.Symbols.Class(qualified)
}

// NumClasses returns the number of indexed classes.
func (s *Snapshot) NumClasses() int { return int(s.nclasses.Load()) }

// HasPackage reports whether path names a package with classes.
func (s *Snapshot) HasPackage(path string) bool { return s.Packages.Has(path) }

// InheritUsage copies recency stamps from prev for classes and members that
// exist in both snapshots.
func (s *Snapshot) InheritUsage(prev *Snapshot) {
	if prev == nil {
		return
	}
	s.mu.Lock()
	var classes []*model.ClassDescription
	for _, src := range s.sources {
		for _, cls := range src.classes {
			classes = append(classes, cls)
		}
	}
	s.mu.Unlock()

	for _, cls := range classes {
		old, ok := prev.Class(cls.QualifiedName)
		if !ok {
			continue
		}
		if stamp := old.LastUsed(); stamp > 0 {
			cls.Touch(stamp)
		}
		used := make(map[string]int64)
		for _, m := range old.Methods {
			if stamp := m.LastUsed(); stamp > 0 {
				used["m:"+m.Signature()] = stamp
			}
		}
		for _, f := range old.Fields {
			if stamp := f.LastUsed(); stamp > 0 {
				used["f:"+f.FieldName] = stamp
			}
		}
		for _, c := range old.Constructors {
			if stamp := c.LastUsed(); stamp > 0 {
				used["c:"+c.Signature()] = stamp
			}
		}
		if len(used) == 0 {
			continue
		}
		for _, m := range cls.Methods {
			m.Touch(used["m:"+m.Signature()])
		}
		for _, f := range cls.Fields {
			f.Touch(used["f:"+f.FieldName])
		}
		for _, c := range cls.Constructors {
			c.Touch(used["c:"+c.Signature()])
		}
	}
}
