// Package classpath implements the class metadata store: it reads classpath
// entries and indexes their classes into a snapshot.
package classpath

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tranleduy2000/javaide-sub031/pkg/classfile"
	"github.com/tranleduy2000/javaide-sub031/pkg/index"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

type Options struct {
	// Exclude holds doublestar patterns matched against internal class
	// names ("java/util/ArrayList").
	Exclude        []string
	IncludeAndroid bool
	Workers        int
}

func DefaultOptions() Options {
	return Options{
		Exclude:        []string{"**/package-info", "**/module-info"},
		IncludeAndroid: true,
		Workers:        4,
	}
}

// Report summarises a LoadAll or Reindex run.
type Report struct {
	Entries int
	Classes int
	Skipped int
	Errors  []*LoadError
}

// Store loads classes into one snapshot. It keeps the classpath containers
// open so single classes can be loaded later.
type Store struct {
	snap *index.Snapshot
	opts Options

	mu         sync.RWMutex
	order      []string
	containers map[string]Container
	catalog    map[string]Container

	flight singleflight.Group

	// described holds classes read by Describe. They are not indexed.
	described sync.Map
}

func NewStore(snap *index.Snapshot, opts Options) *Store {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Store{
		snap:       snap,
		opts:       opts,
		containers: make(map[string]Container),
		catalog:    make(map[string]Container),
	}
}

func (s *Store) Snapshot() *index.Snapshot { return s.snap }

// Accept reports whether a class name passes the anonymous, android and
// exclude filters.
func (s *Store) Accept(qualified string) bool {
	if model.IsAnonymous(qualified) {
		return false
	}
	if !s.opts.IncludeAndroid && strings.HasPrefix(qualified, "android.") {
		return false
	}
	internal := binaryToInternal(qualified)
	for _, pattern := range s.opts.Exclude {
		if ok, err := doublestar.Match(pattern, internal); err == nil && ok {
			return false
		}
	}
	return true
}

// LoadAll opens every entry of paths and indexes all accepted classes.
// Unreadable entries and classes are skipped and reported. It fails only
// when ctx is done or no class at all was indexed.
func (s *Store) LoadAll(ctx context.Context, paths []string) (Report, error) {
	var (
		rep   Report
		repMu sync.Mutex
	)
	fail := func(le *LoadError) {
		log.Warnf("Skipping %v", le)
		repMu.Lock()
		rep.Errors = append(rep.Errors, le)
		repMu.Unlock()
	}

	opened := make([]Container, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p = filepath.Clean(p)
			c, err := Open(p)
			if err != nil {
				fail(&LoadError{Path: p, Err: err})
				return nil
			}
			opened[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		closeAll(opened)
		return rep, err
	}

	// Earlier entries shadow later ones, like a JVM classpath.
	var jobs []struct {
		name string
		c    Container
	}
	s.mu.Lock()
	for _, c := range opened {
		if c == nil {
			continue
		}
		rep.Entries++
		s.order = append(s.order, c.Path())
		s.containers[c.Path()] = c
		for _, name := range c.Classes() {
			if _, dup := s.catalog[name]; dup {
				continue
			}
			s.catalog[name] = c
			if !s.Accept(name) {
				rep.Skipped++
				continue
			}
			jobs = append(jobs, struct {
				name string
				c    Container
			}{name, c})
		}
	}
	s.mu.Unlock()
	log.Debugf("Indexing %d classes from %d entries", len(jobs), rep.Entries)

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, c := range opened {
		if c == nil {
			continue
		}
		g.Go(func() error {
			if h, err := c.Hash(); err == nil {
				s.snap.SetSourceHash(c.Path(), h)
			}
			return nil
		})
	}
	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cls, err := job.c.Load(job.name)
			if err != nil {
				fail(&LoadError{Path: job.c.Path(), Class: job.name, Err: err})
				return nil
			}
			s.snap.AddClass(cls)
			repMu.Lock()
			rep.Classes++
			repMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}
	if rep.Classes == 0 {
		return rep, ErrNoClasses
	}
	return rep, nil
}

func closeAll(cs []Container) {
	for _, c := range cs {
		if c != nil {
			c.Close()
		}
	}
}

// LoadOne returns the class named qualified, loading and indexing it first
// if the snapshot does not have it yet. Names the filters reject are not
// found. Concurrent calls for the same name share one load.
func (s *Store) LoadOne(qualified string) (*model.ClassDescription, error) {
	if cls, ok := s.snap.Class(qualified); ok {
		return cls, nil
	}
	if !s.Accept(qualified) {
		return nil, &LoadError{Class: qualified, Err: ErrNotFound}
	}
	v, err, _ := s.flight.Do("load:"+qualified, func() (any, error) {
		if cls, ok := s.snap.Class(qualified); ok {
			return cls, nil
		}
		cls, err := s.read(qualified)
		if err != nil {
			return nil, err
		}
		s.described.Delete(qualified)
		s.snap.AddClass(cls)
		log.Debugf("Loaded %s on demand from %s", qualified, cls.Source)
		return cls, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ClassDescription), nil
}

// Describe returns the metadata of qualified without changing the snapshot:
// the indexed class if there is one, else the class read from its
// container. Read classes are cached until their source changes.
func (s *Store) Describe(qualified string) (*model.ClassDescription, error) {
	if cls, ok := s.snap.Class(qualified); ok {
		return cls, nil
	}
	if !s.Accept(qualified) {
		return nil, &LoadError{Class: qualified, Err: ErrNotFound}
	}
	if v, ok := s.described.Load(qualified); ok {
		return v.(*model.ClassDescription), nil
	}
	v, err, _ := s.flight.Do("describe:"+qualified, func() (any, error) {
		cls, err := s.read(qualified)
		if err != nil {
			return nil, err
		}
		s.described.Store(qualified, cls)
		return cls, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ClassDescription), nil
}

func (s *Store) read(qualified string) (*model.ClassDescription, error) {
	c := s.locate(qualified)
	if c == nil {
		return nil, &LoadError{Class: qualified, Err: ErrNotFound}
	}
	cls, err := c.Load(qualified)
	if err != nil {
		return nil, &LoadError{Path: c.Path(), Class: qualified, Err: err}
	}
	return cls, nil
}

// forget drops described classes whose source matches.
func (s *Store) forget(match func(source string) bool) {
	s.described.Range(func(k, v any) bool {
		if match(v.(*model.ClassDescription).Source) {
			s.described.Delete(k)
		}
		return true
	})
}

func (s *Store) locate(qualified string) Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.catalog[qualified]; ok {
		return c
	}
	// Directories may have gained the class since the scan.
	for _, p := range s.order {
		d, ok := s.containers[p].(*dirContainer)
		if !ok {
			continue
		}
		f := filepath.Join(d.root, filepath.FromSlash(binaryToInternal(qualified))+".class")
		if _, err := os.Stat(f); err == nil {
			return d
		}
	}
	return nil
}

// Invalidate removes every class loaded from path. For a directory entry
// that is every class under it. It returns the number of classes removed.
func (s *Store) Invalidate(path string) int {
	path = filepath.Clean(path)
	n := len(s.snap.RemoveSource(path))

	s.mu.RLock()
	d, isDir := s.containers[path].(*dirContainer)
	s.mu.RUnlock()
	if isDir {
		for _, src := range s.snap.Sources() {
			if d.owns(src) {
				n += len(s.snap.RemoveSource(src))
			}
		}
	}
	s.forget(func(src string) bool {
		return src == path || (isDir && d.owns(src))
	})
	if n > 0 {
		log.Debugf("Invalidated %d classes from %s", n, path)
	}
	return n
}

// Remove invalidates path and forgets its container.
func (s *Store) Remove(path string) int {
	path = filepath.Clean(path)
	n := s.Invalidate(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.containers[path]; ok {
		s.dropContainer(c)
		c.Close()
	}
	for _, d := range s.dirs() {
		if d.owns(path) {
			d.mu.Lock()
			for name, f := range d.files {
				if f == path {
					delete(d.files, name)
					delete(s.catalog, name)
				}
			}
			d.mu.Unlock()
		}
	}
	return n
}

func (s *Store) dirs() []*dirContainer {
	var out []*dirContainer
	for _, p := range s.order {
		if d, ok := s.containers[p].(*dirContainer); ok {
			out = append(out, d)
		}
	}
	return out
}

// dropContainer unregisters c. Callers hold s.mu.
func (s *Store) dropContainer(c Container) {
	delete(s.containers, c.Path())
	for i, p := range s.order {
		if p == c.Path() {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	for name, owner := range s.catalog {
		if owner == c {
			delete(s.catalog, name)
		}
	}
}

// Reindex replaces the classes of path with its current content. path is
// either a classpath entry or a .class file under a directory entry. An
// entry whose content hash is unchanged is left alone.
func (s *Store) Reindex(path string) (Report, error) {
	path = filepath.Clean(path)
	var rep Report

	if strings.HasSuffix(path, ".class") {
		if d := s.ownerDir(path); d != nil {
			return s.reindexClassFile(d, path)
		}
	}

	c, err := Open(path)
	if err != nil {
		le := &LoadError{Path: path, Err: err}
		rep.Errors = append(rep.Errors, le)
		return rep, le
	}
	rep.Entries = 1
	h, herr := c.Hash()
	if old, ok := s.snap.SourceHash(path); ok && herr == nil && old == h {
		c.Close()
		log.Debugf("Skipping unchanged %s", path)
		return rep, nil
	}

	s.Invalidate(path)
	s.mu.Lock()
	if old, ok := s.containers[path]; ok {
		s.dropContainer(old)
		old.Close()
	}
	s.containers[path] = c
	s.order = append(s.order, path)
	var names []string
	for _, name := range c.Classes() {
		if owner, taken := s.catalog[name]; taken && owner != c {
			continue
		}
		s.catalog[name] = c
		if s.Accept(name) {
			names = append(names, name)
		} else {
			rep.Skipped++
		}
	}
	s.mu.Unlock()

	for _, name := range names {
		cls, err := c.Load(name)
		if err != nil {
			le := &LoadError{Path: path, Class: name, Err: err}
			log.Warnf("Skipping %v", le)
			rep.Errors = append(rep.Errors, le)
			continue
		}
		s.snap.AddClass(cls)
		rep.Classes++
	}
	if herr == nil {
		s.snap.SetSourceHash(path, h)
	}
	return rep, nil
}

func (s *Store) ownerDir(file string) *dirContainer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.dirs() {
		if d.owns(file) {
			return d
		}
	}
	return nil
}

func (s *Store) reindexClassFile(d *dirContainer, file string) (Report, error) {
	rep := Report{Entries: 1}
	data, err := os.ReadFile(file)
	if err != nil {
		le := &LoadError{Path: file, Err: err}
		rep.Errors = append(rep.Errors, le)
		return rep, le
	}
	h := xxhash.Sum64(data)
	if old, ok := s.snap.SourceHash(file); ok && old == h {
		return rep, nil
	}
	s.snap.RemoveSource(file)
	s.forget(func(src string) bool { return src == file })

	cls, err := classfile.Reader{}.ReadClass(data)
	if err != nil {
		le := &LoadError{Path: file, Err: err}
		log.Warnf("Skipping %v", le)
		rep.Errors = append(rep.Errors, le)
		return rep, nil
	}
	cls.Source = file
	s.snap.SetSourceHash(file, h)

	d.mu.Lock()
	d.files[cls.QualifiedName] = file
	d.mu.Unlock()
	s.mu.Lock()
	if _, taken := s.catalog[cls.QualifiedName]; !taken {
		s.catalog[cls.QualifiedName] = d
	}
	s.mu.Unlock()

	if !s.Accept(cls.QualifiedName) {
		rep.Skipped++
		return rep, nil
	}
	s.snap.AddClass(cls)
	rep.Classes++
	return rep, nil
}

// Entries returns the open classpath entries in load order.
func (s *Store) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Close releases every container.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, c := range s.containers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.Path(), err))
		}
	}
	s.containers = map[string]Container{}
	s.catalog = map[string]Container{}
	s.order = nil
	return errors.Join(errs...)
}
