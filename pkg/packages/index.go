// Package packages implements the package index: a trie over dotted
// package segments.
package packages

import (
	"sort"
	"strings"
	"sync"

	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

type Index struct {
	mu   sync.RWMutex
	root *model.PackageDescription
	// classes counts indexed classes per package path so that a package
	// disappears with its last class.
	classes map[string]int
}

func New() *Index {
	return &Index{
		root:    model.NewPackage("", nil),
		classes: make(map[string]int),
	}
}

func split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Put inserts path, creating missing intermediate segments, and returns its
// node. The empty path is the root.
func (x *Index) Put(path string) *model.PackageDescription {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.put(path)
}

func (x *Index) put(path string) *model.PackageDescription {
	node := x.root
	for _, seg := range split(path) {
		child, ok := node.Children[seg]
		if !ok {
			child = model.NewPackage(seg, node)
			node.AddChild(child)
		}
		node = child
	}
	return node
}

// Get walks path segment by segment.
func (x *Index) Get(path string) (*model.PackageDescription, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.get(path)
}

func (x *Index) get(path string) (*model.PackageDescription, bool) {
	node := x.root
	for _, seg := range split(path) {
		child, ok := node.Children[seg]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// Remove detaches the node at path and its subtree from its parent.
func (x *Index) Remove(path string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.remove(path)
}

func (x *Index) remove(path string) bool {
	node, ok := x.get(path)
	if !ok || node == x.root {
		return false
	}
	node.Parent.RemoveChild(node.Segment)
	prefix := path + "."
	for p := range x.classes {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(x.classes, p)
		}
	}
	return true
}

// Children returns the sub-packages of path whose segment starts with
// prefix, sorted by segment.
func (x *Index) Children(path, prefix string) []*model.PackageDescription {
	x.mu.RLock()
	defer x.mu.RUnlock()
	node, ok := x.get(path)
	if !ok {
		return nil
	}
	var out []*model.PackageDescription
	for seg, child := range node.Children {
		if strings.HasPrefix(seg, prefix) {
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Segment < out[j].Segment })
	return out
}

// Has reports whether path is a known package.
func (x *Index) Has(path string) bool {
	if path == "" {
		return false
	}
	_, ok := x.Get(path)
	return ok
}

// AddClass records one class in pkg, creating the package path.
func (x *Index) AddClass(pkg string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.put(pkg)
	x.classes[pkg]++
}

// RemoveClass forgets one class in pkg. A package left without classes and
// sub-packages is removed, then its ancestors in the same state.
func (x *Index) RemoveClass(pkg string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.classes[pkg] > 1 {
		x.classes[pkg]--
		return
	}
	delete(x.classes, pkg)
	for p := pkg; p != ""; {
		node, ok := x.get(p)
		if !ok || !node.IsLeaf() || x.classes[p] > 0 {
			return
		}
		x.remove(p)
		i := strings.LastIndexByte(p, '.')
		if i < 0 {
			return
		}
		p = p[:i]
	}
}

// Len returns the number of package nodes, excluding the root.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var count func(*model.PackageDescription) int
	count = func(n *model.PackageDescription) int {
		c := 0
		for _, child := range n.Children {
			c += 1 + count(child)
		}
		return c
	}
	return count(x.root)
}
