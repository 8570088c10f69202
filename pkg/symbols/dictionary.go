// Package symbols implements the symbol dictionary: a multimap from
// (category, key) to descriptions with prefix search.
//
// Category is either CategoryClass or the qualified name of the class that
// owns the members stored under it. Each category has its own patricia trie.
// Categories are spread over shards by hash, each guarded by its own lock, so
// a writer touching one class never blocks prefix searches on another.
package symbols

import (
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

// CategoryClass holds every indexed class under its qualified and inverse name.
const CategoryClass = "class"

const numShards = 32

var errStop = errors.New("stop")

type shard struct {
	mu   sync.RWMutex
	cats map[string]*patricia.Trie
}

type Dictionary struct {
	shards [numShards]shard
	clock  *Clock
}

// New returns an empty dictionary stamping touches with clock. A nil clock
// gets a private one.
func New(clock *Clock) *Dictionary {
	if clock == nil {
		clock = &Clock{}
	}
	d := &Dictionary{clock: clock}
	for i := range d.shards {
		d.shards[i].cats = make(map[string]*patricia.Trie)
	}
	return d
}

func (d *Dictionary) shard(category string) *shard {
	return &d.shards[xxhash.Sum64String(category)%numShards]
}

// Put stores desc under its own name.
func (d *Dictionary) Put(category string, desc model.Description) {
	d.PutAs(category, desc.Name(), desc)
}

// PutAs stores desc under key. Keys are additive: a second description under
// the same key joins the first. Storing the same instance twice is a no-op.
func (d *Dictionary) PutAs(category, key string, desc model.Description) {
	s := d.shard(category)
	s.mu.Lock()
	defer s.mu.Unlock()

	trie, ok := s.cats[category]
	if !ok {
		trie = patricia.NewTrie()
		s.cats[category] = trie
	}
	k := patricia.Prefix(key)
	if item := trie.Get(k); item != nil {
		list := item.([]model.Description)
		for _, existing := range list {
			if existing == desc {
				return
			}
		}
		trie.Set(k, append(list, desc))
		return
	}
	trie.Insert(k, []model.Description{desc})
}

// Remove deletes every description stored under key and returns them.
func (d *Dictionary) Remove(category, key string) ([]model.Description, bool) {
	s := d.shard(category)
	s.mu.Lock()
	defer s.mu.Unlock()

	trie, ok := s.cats[category]
	if !ok {
		return nil, false
	}
	k := patricia.Prefix(key)
	item := trie.Get(k)
	if item == nil {
		return nil, false
	}
	trie.Delete(k)
	s.dropIfEmpty(category, trie)
	return item.([]model.Description), true
}

// RemoveInstance deletes one description from key, leaving any others.
func (d *Dictionary) RemoveInstance(category, key string, desc model.Description) bool {
	s := d.shard(category)
	s.mu.Lock()
	defer s.mu.Unlock()

	trie, ok := s.cats[category]
	if !ok {
		return false
	}
	k := patricia.Prefix(key)
	item := trie.Get(k)
	if item == nil {
		return false
	}
	list := item.([]model.Description)
	for i, existing := range list {
		if existing != desc {
			continue
		}
		if len(list) == 1 {
			trie.Delete(k)
			s.dropIfEmpty(category, trie)
			return true
		}
		rest := make([]model.Description, 0, len(list)-1)
		rest = append(rest, list[:i]...)
		rest = append(rest, list[i+1:]...)
		trie.Set(k, rest)
		return true
	}
	return false
}

// DropCategory removes a whole category.
func (d *Dictionary) DropCategory(category string) bool {
	s := d.shard(category)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cats[category]
	delete(s.cats, category)
	return ok
}

func (s *shard) dropIfEmpty(category string, trie *patricia.Trie) {
	err := trie.Visit(func(patricia.Prefix, patricia.Item) error { return errStop })
	if err == nil {
		delete(s.cats, category)
	}
}

// Visit calls fn for every description whose key starts with prefix, once per
// instance even if stored under several matching keys. Keys compare by
// ordinal byte order.
func (d *Dictionary) Visit(category, prefix string, fn func(key string, desc model.Description)) {
	s := d.shard(category)
	s.mu.RLock()
	defer s.mu.RUnlock()

	trie, ok := s.cats[category]
	if !ok {
		return
	}
	seen := make(map[model.Description]struct{})
	err := trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		for _, desc := range item.([]model.Description) {
			if _, dup := seen[desc]; dup {
				continue
			}
			seen[desc] = struct{}{}
			fn(string(p), desc)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting %s subtree: %v", category, err)
	}
}

// Find returns the descriptions of variant T whose key in category starts
// with prefix. Order is unspecified.
func Find[T model.Description](d *Dictionary, category, prefix string) []T {
	var out []T
	d.Visit(category, prefix, func(_ string, desc model.Description) {
		if v, ok := desc.(T); ok {
			out = append(out, v)
		}
	})
	return out
}

// Len returns the number of keys in category.
func (d *Dictionary) Len(category string) int {
	s := d.shard(category)
	s.mu.RLock()
	defer s.mu.RUnlock()
	trie, ok := s.cats[category]
	if !ok {
		return 0
	}
	n := 0
	trie.Visit(func(patricia.Prefix, patricia.Item) error {
		n++
		return nil
	})
	return n
}

// Categories returns the number of non-empty categories.
func (d *Dictionary) Categories() int {
	n := 0
	for i := range d.shards {
		s := &d.shards[i]
		s.mu.RLock()
		n += len(s.cats)
		s.mu.RUnlock()
	}
	return n
}

// Touch marks desc as used now. Stamps from one clock strictly increase.
func (d *Dictionary) Touch(desc model.Description) int64 {
	stamp := d.clock.Next()
	desc.Touch(stamp)
	return stamp
}

// Clock returns the clock used by Touch.
func (d *Dictionary) Clock() *Clock { return d.clock }

// IndexClass stores cls under its qualified and inverse name and its public
// fields and methods under a category named after it.
func (d *Dictionary) IndexClass(cls *model.ClassDescription) {
	d.PutAs(CategoryClass, cls.QualifiedName, cls)
	d.PutAs(CategoryClass, model.InverseName(cls.QualifiedName), cls)
	for _, f := range cls.Fields {
		d.Put(cls.QualifiedName, f)
	}
	for _, m := range cls.Methods {
		d.Put(cls.QualifiedName, m)
	}
}

// RemoveClass undoes IndexClass. Other classes sharing a key are kept.
func (d *Dictionary) RemoveClass(cls *model.ClassDescription) {
	d.RemoveInstance(CategoryClass, cls.QualifiedName, cls)
	d.RemoveInstance(CategoryClass, model.InverseName(cls.QualifiedName), cls)
	d.DropCategory(cls.QualifiedName)
}

// Class returns the class indexed under its qualified name.
func (d *Dictionary) Class(qualified string) (*model.ClassDescription, bool) {
	s := d.shard(CategoryClass)
	s.mu.RLock()
	defer s.mu.RUnlock()
	trie, ok := s.cats[CategoryClass]
	if !ok {
		return nil, false
	}
	item := trie.Get(patricia.Prefix(qualified))
	if item == nil {
		return nil, false
	}
	for _, desc := range item.([]model.Description) {
		if cls, ok := desc.(*model.ClassDescription); ok && cls.QualifiedName == qualified {
			return cls, true
		}
	}
	return nil, false
}
