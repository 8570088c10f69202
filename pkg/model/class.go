package model

import "strings"

// ClassDescription describes one compiled class and its public members.
type ClassDescription struct {
	usage
	QualifiedName string
	SimpleName    string
	// Superclass is empty for java.lang.Object and interfaces without one.
	Superclass   string
	Interfaces   []string
	Flags        Modifiers
	Methods      []*MethodDescription
	Fields       []*FieldDescription
	Constructors []*ConstructorDescription
	// Source is the classpath entry the class was read from.
	Source string
}

// NewClass returns an empty description for the binary name qualified
// (dots between packages, '$' before nested class names).
func NewClass(qualified string) *ClassDescription {
	return &ClassDescription{
		QualifiedName: qualified,
		SimpleName:    SimpleName(qualified),
	}
}

func (c *ClassDescription) Name() string         { return c.SimpleName }
func (c *ClassDescription) Kind() Kind           { return KindClass }
func (c *ClassDescription) Snippet() string      { return c.SimpleName }
func (c *ClassDescription) DeclaredType() string { return c.QualifiedName }

// Package returns the package the class belongs to.
func (c *ClassDescription) Package() string { return PackageOf(c.QualifiedName) }

// SourceName is the name used in Java source, with nested separators as dots.
func (c *ClassDescription) SourceName() string {
	return strings.ReplaceAll(c.QualifiedName, "$", ".")
}

func (c *ClassDescription) AddMethod(name, returnType string, params []string, flags Modifiers) *MethodDescription {
	m := &MethodDescription{
		Owner:      c,
		MethodName: name,
		ReturnType: returnType,
		Params:     params,
		Flags:      flags,
	}
	c.Methods = append(c.Methods, m)
	return m
}

func (c *ClassDescription) AddField(name, typ string, flags Modifiers) *FieldDescription {
	f := &FieldDescription{
		Owner:     c,
		FieldName: name,
		Type:      typ,
		Flags:     flags,
	}
	c.Fields = append(c.Fields, f)
	return f
}

func (c *ClassDescription) AddConstructor(params []string, flags Modifiers) *ConstructorDescription {
	ctor := &ConstructorDescription{
		Owner:  c,
		Params: params,
		Flags:  flags,
	}
	c.Constructors = append(c.Constructors, ctor)
	return ctor
}

// Members returns fields then methods, in declaration order.
func (c *ClassDescription) Members() []Description {
	out := make([]Description, 0, len(c.Fields)+len(c.Methods))
	for _, f := range c.Fields {
		out = append(out, f)
	}
	for _, m := range c.Methods {
		out = append(out, m)
	}
	return out
}
