package model

import (
	"strings"
	"sync/atomic"
)

// PackageDescription is one node of the package trie. It owns its children;
// the parent pointer is a back-reference.
//
// Children is only touched through AddChild and RemoveChild by the owner of
// the trie. IsLeaf and Snippet may be called concurrently with them.
type PackageDescription struct {
	usage
	Segment  string
	Parent   *PackageDescription
	Children map[string]*PackageDescription
	nchild   atomic.Int32
}

func NewPackage(segment string, parent *PackageDescription) *PackageDescription {
	return &PackageDescription{
		Segment:  segment,
		Parent:   parent,
		Children: make(map[string]*PackageDescription),
	}
}

func (p *PackageDescription) Name() string         { return p.Segment }
func (p *PackageDescription) Kind() Kind           { return KindPackage }
func (p *PackageDescription) DeclaredType() string { return "" }

// AddChild attaches child under its segment, replacing any previous node.
func (p *PackageDescription) AddChild(child *PackageDescription) {
	if _, ok := p.Children[child.Segment]; !ok {
		p.nchild.Add(1)
	}
	child.Parent = p
	p.Children[child.Segment] = child
}

// RemoveChild detaches the child named segment with its subtree.
func (p *PackageDescription) RemoveChild(segment string) (*PackageDescription, bool) {
	child, ok := p.Children[segment]
	if !ok {
		return nil, false
	}
	delete(p.Children, segment)
	p.nchild.Add(-1)
	return child, true
}

// IsLeaf reports whether the node has no sub-packages.
func (p *PackageDescription) IsLeaf() bool { return p.nchild.Load() == 0 }

// Snippet continues the path with '.' on inner nodes and terminates the
// statement with ';' on leaves.
func (p *PackageDescription) Snippet() string {
	if p.IsLeaf() {
		return p.Segment + ";"
	}
	return p.Segment + "."
}

// Path returns the dotted path from the root to p. The root has an empty path.
func (p *PackageDescription) Path() string {
	var segs []string
	for n := p; n != nil && n.Parent != nil; n = n.Parent {
		segs = append(segs, n.Segment)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, ".")
}
