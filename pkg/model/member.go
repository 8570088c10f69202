package model

import "strings"

// MethodDescription is a method of a class. Owner is a back-reference and
// never owns the class.
type MethodDescription struct {
	usage
	Owner      *ClassDescription
	MethodName string
	ReturnType string
	Params     []string
	Flags      Modifiers
}

func (m *MethodDescription) Name() string         { return m.MethodName }
func (m *MethodDescription) Kind() Kind           { return KindMethod }
func (m *MethodDescription) DeclaredType() string { return m.ReturnType }

func (m *MethodDescription) Snippet() string {
	if len(m.Params) == 0 {
		return m.MethodName + "()"
	}
	return m.MethodName + "("
}

// Signature identifies an overload: name plus parameter types.
func (m *MethodDescription) Signature() string {
	return m.MethodName + "(" + strings.Join(m.Params, ",") + ")"
}

// FieldDescription is a field of a class, or a local variable seen in source
// when Owner is nil.
type FieldDescription struct {
	usage
	Owner     *ClassDescription
	FieldName string
	Type      string
	Flags     Modifiers
}

func (f *FieldDescription) Name() string         { return f.FieldName }
func (f *FieldDescription) Kind() Kind           { return KindField }
func (f *FieldDescription) Snippet() string      { return f.FieldName }
func (f *FieldDescription) DeclaredType() string { return f.Type }

// ConstructorDescription is a constructor of Owner.
type ConstructorDescription struct {
	usage
	Owner  *ClassDescription
	Params []string
	Flags  Modifiers
}

func (c *ConstructorDescription) Name() string         { return c.Owner.SimpleName }
func (c *ConstructorDescription) Kind() Kind           { return KindConstructor }
func (c *ConstructorDescription) DeclaredType() string { return c.Owner.QualifiedName }

func (c *ConstructorDescription) Snippet() string {
	if len(c.Params) == 0 {
		return c.Owner.SimpleName + "()"
	}
	return c.Owner.SimpleName + "("
}

func (c *ConstructorDescription) Signature() string {
	return c.Owner.SimpleName + "(" + strings.Join(c.Params, ",") + ")"
}
