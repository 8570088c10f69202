// Package classify infers what kind of completion is wanted at a cursor from
// the incomplete source before it.
//
// Each matcher is a pure function of the text and a read-only Env. Matchers
// run in a fixed order and the first match wins.
package classify

// Kind is the completion situation a matcher recognised.
type Kind int

const (
	KindNone Kind = iota
	// KindStringMember: `"literal".par`, members of java.lang.String.
	KindStringMember
	// KindImportPath: `import java.u`, or a dotted prefix naming a known
	// package. Package holds the part before the partial segment.
	KindImportPath
	// KindPackagePath: `package com.fo`, package segments only.
	KindPackagePath
	// KindTypeDeclaration: `class Foo extends Ba`, supertype names.
	KindTypeDeclaration
	// KindConstructor: `new Fo` or `new Foo(`.
	KindConstructor
	// KindMemberAccess: `expr.par`, members of the receiver's type.
	KindMemberAccess
	// KindBareIdentifier: keywords, locals and classes starting with the
	// trailing identifier.
	KindBareIdentifier
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStringMember:
		return "string-member"
	case KindImportPath:
		return "import-path"
	case KindPackagePath:
		return "package-path"
	case KindTypeDeclaration:
		return "type-declaration"
	case KindConstructor:
		return "constructor"
	case KindMemberAccess:
		return "member-access"
	case KindBareIdentifier:
		return "bare-identifier"
	}
	return "unknown"
}

// TypeFilter narrows the supertypes offered in a type declaration.
type TypeFilter int

const (
	AnyType TypeFilter = iota
	// ClassesOnly: extendable classes (not final, not interfaces).
	ClassesOnly
	InterfacesOnly
)

// Segment is one hop of a member-access chain: a field read or, when Call
// is set, a method call.
type Segment struct {
	Name string
	Call bool
}

// Local is a variable declaration seen before the cursor.
type Local struct {
	Name string
	Type string
}

// Context is the result of classification.
type Context struct {
	Kind Kind
	// Receiver is the receiver expression as written, after literal
	// contents have been blanked.
	Receiver string
	// ReceiverType is the qualified type the members are taken from. It is
	// the name as written when it could not be qualified, empty if there
	// is no receiver.
	ReceiverType string
	// Chain lists the hops from ReceiverType to the type whose members
	// are wanted, for receivers like `a.b().c`.
	Chain []Segment
	// Partial is the identifier fragment right before the cursor.
	Partial string
	// Static restricts members to static ones: type-name receivers and
	// `import static`.
	Static bool
	// Package is the qualifier of import, package and qualified-name paths.
	Package string
	Filter  TypeFilter
	// Locals are the declarations visible to a bare identifier.
	Locals []Local
	// File holds the package, imports and enclosing class of the source.
	File *File
}
