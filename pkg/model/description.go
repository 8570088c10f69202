// Package model holds the descriptions of completable Java symbols: classes,
// their members, packages and keywords.
//
// Descriptions are shared between the symbol dictionary, the package index and
// the suggestion lists handed to editors, so they are always used by pointer.
// Apart from the recency stamp, a description is immutable once indexed.
package model

import "sync/atomic"

// Kind tags the variant of a Description.
type Kind int

const (
	KindClass Kind = iota
	KindMethod
	KindField
	KindConstructor
	KindPackage
	KindKeyword
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	case KindConstructor:
		return "constructor"
	case KindPackage:
		return "package"
	case KindKeyword:
		return "keyword"
	}
	return "unknown"
}

// Description is one completable symbol.
type Description interface {
	// Name is the simple identifier the description is matched by.
	Name() string
	Kind() Kind
	// Snippet is the text inserted when the description is accepted.
	Snippet() string
	// DeclaredType is the type name of the symbol, empty when it has none.
	DeclaredType() string
	// LastUsed is the recency stamp set by Touch, zero if never accepted.
	LastUsed() int64
	Touch(stamp int64)
}

// usage carries the recency stamp shared by every variant.
type usage struct {
	lastUsed atomic.Int64
}

func (u *usage) LastUsed() int64 { return u.lastUsed.Load() }

// Touch records stamp unless a newer one is already stored.
func (u *usage) Touch(stamp int64) {
	for {
		cur := u.lastUsed.Load()
		if stamp <= cur {
			return
		}
		if u.lastUsed.CompareAndSwap(cur, stamp) {
			return
		}
	}
}

// KeywordDescription is a Java reserved word.
type KeywordDescription struct {
	usage
	Word string
}

func NewKeyword(word string) *KeywordDescription { return &KeywordDescription{Word: word} }

func (k *KeywordDescription) Name() string         { return k.Word }
func (k *KeywordDescription) Kind() Kind           { return KindKeyword }
func (k *KeywordDescription) Snippet() string      { return k.Word }
func (k *KeywordDescription) DeclaredType() string { return "" }
