package suggest

import (
	"strings"

	"github.com/tranleduy2000/javaide-sub031/pkg/imports"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

// SuggestionItem is one completion offered to an editor.
type SuggestionItem struct {
	ID          string
	DisplayName string
	Snippet     string
	Kind        model.Kind
	// Detail is the declared type or qualified name shown next to the name.
	Detail string
	Source model.Description
	// ReplaceStart and ReplaceEnd delimit the partial name the snippet
	// replaces.
	ReplaceStart int
	ReplaceEnd   int
	// ImportClass is the class to import when the item is accepted, if any.
	ImportClass string
}

// Acceptance is the text change for an accepted item. Insert and Import
// both refer to offsets of the text the item was offered for.
type Acceptance struct {
	Insert imports.Edit
	Import *imports.Edit
}

// Apply applies both edits to text.
func (a Acceptance) Apply(text string) string {
	if a.Import == nil {
		return a.Insert.Apply(text)
	}
	if a.Import.Start >= a.Insert.End {
		return a.Insert.Apply(a.Import.Apply(text))
	}
	return a.Import.Apply(a.Insert.Apply(text))
}

func simpleType(t string) string {
	if i := strings.LastIndexAny(t, ".$"); i >= 0 {
		return t[i+1:]
	}
	return t
}

func params(ps []string) string {
	simple := make([]string, len(ps))
	for i, p := range ps {
		simple[i] = simpleType(p)
	}
	return "(" + strings.Join(simple, ", ") + ")"
}

// DisplayName renders a description for a completion list.
func DisplayName(d model.Description) string {
	switch v := d.(type) {
	case *model.MethodDescription:
		return v.MethodName + params(v.Params)
	case *model.ConstructorDescription:
		return v.Owner.SimpleName + params(v.Params)
	}
	return d.Name()
}

// Detail is the secondary text of a description: the return or field type
// of members, the qualified name of classes and constructors, the path of
// packages.
func Detail(d model.Description) string {
	switch v := d.(type) {
	case *model.MethodDescription:
		return simpleType(v.ReturnType) + " " + v.Signature()
	case *model.FieldDescription:
		return simpleType(v.Type)
	case *model.ClassDescription:
		return v.SourceName()
	case *model.ConstructorDescription:
		return v.Owner.SourceName() + params(v.Params)
	case *model.PackageDescription:
		return v.Path()
	}
	return ""
}
