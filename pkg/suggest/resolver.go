package suggest

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tranleduy2000/javaide-sub031/pkg/classify"
	"github.com/tranleduy2000/javaide-sub031/pkg/index"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
	"github.com/tranleduy2000/javaide-sub031/pkg/symbols"
)

// DefaultInheritDepth bounds the supertype walk of member lookups.
const DefaultInheritDepth = 8

// ClassLoader supplies metadata for classes the snapshot has not indexed.
// It must not add them to the snapshot.
type ClassLoader interface {
	Describe(qualified string) (*model.ClassDescription, error)
}

// Resolver turns a classified context into ranked descriptions. It only reads
// the snapshot; classes missing from it are requested from Loader.
type Resolver struct {
	Snap         *index.Snapshot
	Loader       ClassLoader
	InheritDepth int
	Keywords     []*model.KeywordDescription
}

// Resolve dispatches on ctx.Kind and returns the candidates ranked.
func (r *Resolver) Resolve(ctx classify.Context) []model.Description {
	var out []model.Description
	switch ctx.Kind {
	case classify.KindStringMember, classify.KindMemberAccess:
		out = r.memberCandidates(ctx)
	case classify.KindImportPath:
		out = r.pathCandidates(ctx, true)
	case classify.KindPackagePath:
		out = r.pathCandidates(ctx, false)
	case classify.KindTypeDeclaration:
		for _, cls := range r.classesByPrefix(ctx.Package, ctx.Partial) {
			if acceptsType(cls, ctx.Filter) {
				out = append(out, cls)
			}
		}
	case classify.KindConstructor:
		out = r.constructorCandidates(ctx)
	case classify.KindBareIdentifier:
		out = r.bareCandidates(ctx)
	default:
		return nil
	}
	Rank(out, ctx.Partial)
	return out
}

// Rank orders descs: names equal to partial first, then most recently used,
// then by name in byte order. Equal names fall back to the signature so the
// order is stable.
func Rank(descs []model.Description, partial string) {
	sort.SliceStable(descs, func(i, j int) bool {
		a, b := descs[i], descs[j]
		ea, eb := a.Name() == partial, b.Name() == partial
		if ea != eb {
			return ea
		}
		if ua, ub := a.LastUsed(), b.LastUsed(); ua != ub {
			return ua > ub
		}
		if a.Name() != b.Name() {
			return a.Name() < b.Name()
		}
		return Detail(a) < Detail(b)
	})
}

func (r *Resolver) class(qualified string) (*model.ClassDescription, bool) {
	if qualified == "" {
		return nil, false
	}
	if cls, ok := r.Snap.Class(qualified); ok {
		return cls, true
	}
	if r.Loader == nil {
		return nil, false
	}
	cls, err := r.Loader.Describe(qualified)
	if err != nil {
		log.Debugf("No metadata for %s: %v", qualified, err)
		return nil, false
	}
	return cls, true
}

func (r *Resolver) depth() int {
	if r.InheritDepth <= 0 {
		return DefaultInheritDepth
	}
	return r.InheritDepth
}

// supertypes returns cls followed by its superclasses and interfaces,
// nearest first, at most depth hops away.
func (r *Resolver) supertypes(cls *model.ClassDescription) []*model.ClassDescription {
	out := []*model.ClassDescription{cls}
	seen := map[string]bool{cls.QualifiedName: true}
	level := []*model.ClassDescription{cls}
	for hop := 0; hop < r.depth() && len(level) > 0; hop++ {
		var next []*model.ClassDescription
		for _, c := range level {
			names := append([]string{c.Superclass}, c.Interfaces...)
			for _, name := range names {
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				if sup, ok := r.class(name); ok {
					out = append(out, sup)
					next = append(next, sup)
				}
			}
		}
		level = next
	}
	return out
}

func memberKey(d model.Description) string {
	if m, ok := d.(*model.MethodDescription); ok {
		return "m:" + m.Signature()
	}
	return "f:" + d.Name()
}

func isStatic(d model.Description) bool {
	switch v := d.(type) {
	case *model.MethodDescription:
		return v.Flags.IsStatic()
	case *model.FieldDescription:
		return v.Flags.IsStatic()
	}
	return false
}

// members returns the members of cls and its supertypes starting with
// prefix. A declaration hides inherited ones with the same signature.
func (r *Resolver) members(cls *model.ClassDescription, prefix string, static bool) []model.Description {
	var out []model.Description
	hidden := make(map[string]bool)
	for _, c := range r.supertypes(cls) {
		for _, d := range r.declared(c, prefix) {
			key := memberKey(d)
			if hidden[key] {
				continue
			}
			hidden[key] = true
			if static && !isStatic(d) {
				continue
			}
			out = append(out, d)
		}
	}
	return out
}

// declared returns the fields and methods cls declares starting with prefix.
// Classes supplied by the Loader are not in the dictionary and are read
// directly.
func (r *Resolver) declared(cls *model.ClassDescription, prefix string) []model.Description {
	var found []model.Description
	if cur, ok := r.Snap.Class(cls.QualifiedName); ok && cur == cls {
		r.Snap.Symbols.Visit(cls.QualifiedName, prefix, func(_ string, d model.Description) {
			found = append(found, d)
		})
		return found
	}
	for _, f := range cls.Fields {
		if strings.HasPrefix(f.FieldName, prefix) {
			found = append(found, f)
		}
	}
	for _, m := range cls.Methods {
		if strings.HasPrefix(m.MethodName, prefix) {
			found = append(found, m)
		}
	}
	return found
}

// nested returns the member classes of cls whose simple name starts with
// prefix.
func (r *Resolver) nested(cls *model.ClassDescription, prefix string) []model.Description {
	var out []model.Description
	base := cls.QualifiedName + "$"
	r.Snap.Symbols.Visit(symbols.CategoryClass, base+prefix, func(key string, d model.Description) {
		c, ok := d.(*model.ClassDescription)
		if ok && c.QualifiedName == key && !strings.Contains(key[len(base):], "$") {
			out = append(out, c)
		}
	})
	return out
}

// walk follows ctx.Chain from the receiver type. It returns the class whose
// members are wanted and whether only static members apply.
func (r *Resolver) walk(ctx classify.Context) (*model.ClassDescription, bool) {
	cls, ok := r.class(ctx.ReceiverType)
	if !ok {
		return nil, false
	}
	static := ctx.Static
	for _, seg := range ctx.Chain {
		next := ""
		if static && !seg.Call {
			if c, ok := r.class(cls.QualifiedName + "$" + seg.Name); ok {
				cls = c
				continue
			}
		}
		for _, d := range r.members(cls, seg.Name, false) {
			if d.Name() != seg.Name {
				continue
			}
			if _, isMethod := d.(*model.MethodDescription); isMethod == seg.Call {
				next = d.DeclaredType()
				break
			}
		}
		if strings.HasSuffix(next, "]") {
			next = "java.lang.Object"
		}
		if cls, ok = r.class(next); !ok {
			return nil, false
		}
		static = false
	}
	return cls, static
}

func (r *Resolver) memberCandidates(ctx classify.Context) []model.Description {
	cls, static := r.walk(ctx)
	if cls == nil {
		return nil
	}
	out := r.members(cls, ctx.Partial, static)
	if static {
		out = append(out, r.nested(cls, ctx.Partial)...)
	}
	return out
}

// pathCandidates completes import and package paths: sub-packages of
// ctx.Package and, for imports, its classes. A qualifier naming a class
// offers its nested classes, plus static members for `import static`.
func (r *Resolver) pathCandidates(ctx classify.Context, withClasses bool) []model.Description {
	var out []model.Description
	for _, p := range r.Snap.Packages.Children(ctx.Package, ctx.Partial) {
		out = append(out, p)
	}
	if !withClasses {
		return out
	}
	if ctx.Package != "" && r.Snap.HasPackage(ctx.Package) {
		for _, cls := range r.classesByPrefix(ctx.Package, ctx.Partial) {
			out = append(out, cls)
		}
		return out
	}
	owner := classify.Qualify(ctx.Package, nil, r.env())
	if cls, ok := r.class(owner); ok {
		out = append(out, r.nested(cls, ctx.Partial)...)
		if ctx.Static {
			out = append(out, r.members(cls, ctx.Partial, true)...)
		}
	}
	return out
}

// classesByPrefix returns top-level classes starting with prefix, in pkg
// when pkg is set, otherwise by simple or qualified name.
func (r *Resolver) classesByPrefix(pkg, prefix string) []*model.ClassDescription {
	key := prefix
	if pkg != "" {
		key = pkg + "." + prefix
	}
	var out []*model.ClassDescription
	r.Snap.Symbols.Visit(symbols.CategoryClass, key, func(_ string, d model.Description) {
		cls, ok := d.(*model.ClassDescription)
		if !ok || strings.Contains(cls.QualifiedName, "$") {
			return
		}
		if pkg != "" && cls.Package() != pkg {
			return
		}
		out = append(out, cls)
	})
	return out
}

func acceptsType(cls *model.ClassDescription, filter classify.TypeFilter) bool {
	switch filter {
	case classify.ClassesOnly:
		return !cls.Flags.IsInterface() && !cls.Flags.IsFinal()
	case classify.InterfacesOnly:
		return cls.Flags.IsInterface() && !cls.Flags.Has(model.AccAnnotation)
	}
	return true
}

func (r *Resolver) constructorCandidates(ctx classify.Context) []model.Description {
	var classes []*model.ClassDescription
	if ctx.ReceiverType != "" {
		if cls, ok := r.class(ctx.ReceiverType); ok {
			classes = append(classes, cls)
		}
	} else {
		classes = r.classesByPrefix(ctx.Package, ctx.Partial)
	}
	var out []model.Description
	for _, cls := range classes {
		if cls.Flags.IsInterface() || cls.Flags.Has(model.AccAbstract) {
			continue
		}
		for _, c := range cls.Constructors {
			out = append(out, c)
		}
	}
	return out
}

func (r *Resolver) bareCandidates(ctx classify.Context) []model.Description {
	var out []model.Description
	for _, kw := range r.Keywords {
		if strings.HasPrefix(kw.Word, ctx.Partial) {
			out = append(out, kw)
		}
	}
	seen := make(map[string]bool)
	for i := len(ctx.Locals) - 1; i >= 0; i-- {
		l := ctx.Locals[i]
		if seen[l.Name] || !strings.HasPrefix(l.Name, ctx.Partial) {
			continue
		}
		seen[l.Name] = true
		out = append(out, &model.FieldDescription{FieldName: l.Name, Type: l.Type})
	}
	if ctx.Partial == "" {
		return out
	}
	for _, cls := range r.classesByPrefix("", ctx.Partial) {
		out = append(out, cls)
	}
	return out
}

func (r *Resolver) env() classify.Env { return snapshotEnv{r.Snap} }
