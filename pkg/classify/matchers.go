package classify

import (
	"regexp"
	"strings"
)

// Input is what every matcher sees.
type Input struct {
	// Stmt is the incomplete statement before the cursor on one line.
	Stmt string
	// Line is the cleaned current line before the cursor.
	Line string
	// Window is the cleaned text searched for declarations.
	Window string
	File   *File
	Env    Env
}

// Matcher is one entry of the chain.
type Matcher struct {
	Kind  Kind
	Match func(in *Input) (Context, bool)
}

// Chain is the matcher order. Earlier entries win.
var Chain = []Matcher{
	{KindStringMember, matchStringMember},
	{KindImportPath, matchImportPath},
	{KindTypeDeclaration, matchTypeDeclaration},
	{KindConstructor, matchConstructor},
	{KindMemberAccess, matchMemberAccess},
	{KindBareIdentifier, matchBareIdentifier},
}

var stringMemberRe = regexp.MustCompile(`(""|'')\s*\.\s*([A-Za-z_$][\w$]*)?$`)

func matchStringMember(in *Input) (Context, bool) {
	m := stringMemberRe.FindStringSubmatch(in.Stmt)
	if m == nil || m[1] != `""` {
		return Context{}, false
	}
	return Context{
		Kind:         KindStringMember,
		Receiver:     `""`,
		ReceiverType: "java.lang.String",
		Partial:      m[2],
	}, true
}

var qualifiedTailRe = regexp.MustCompile(`(?:^|[^\w$.])([A-Za-z_$][\w$]*(?:\s*\.\s*[\w$]+)*)\s*\.\s*([\w$]*)$`)

func matchImportPath(in *Input) (Context, bool) {
	for _, kw := range []string{"import", "package"} {
		if !hasKeyword(in.Stmt, kw) {
			continue
		}
		rest := strings.TrimSpace(in.Stmt[len(kw):])
		ctx := Context{Kind: KindImportPath}
		if kw == "package" {
			ctx.Kind = KindPackagePath
		} else if hasKeyword(rest, "static") {
			ctx.Static = true
			rest = strings.TrimSpace(rest[len("static"):])
		}
		if strings.HasSuffix(in.Stmt, " ") && rest != "" {
			// `import java.util ` is finished; nothing to complete.
			return Context{}, false
		}
		path := strings.Join(strings.Fields(rest), "")
		for _, seg := range strings.Split(path, ".") {
			if seg != "" && !isIdentifier(seg) {
				return Context{}, false
			}
		}
		if i := strings.LastIndexByte(path, '.'); i >= 0 {
			ctx.Package, ctx.Partial = path[:i], path[i+1:]
		} else {
			ctx.Partial = path
		}
		ctx.Receiver = ctx.Package
		return ctx, true
	}

	// A qualified name in code whose qualifier is a known package.
	m := qualifiedTailRe.FindStringSubmatch(in.Stmt)
	if m == nil {
		return Context{}, false
	}
	qualifier := strings.Join(strings.Fields(m[1]), "")
	if !in.Env.HasPackage(qualifier) {
		return Context{}, false
	}
	return Context{
		Kind:     KindImportPath,
		Receiver: qualifier,
		Package:  qualifier,
		Partial:  m[2],
	}, true
}

var (
	declHeadRe  = regexp.MustCompile(`(?:^|\s)(class|interface|enum|record)\s+[A-Za-z_$][\w$]*`)
	superKwRe   = regexp.MustCompile(`\b(extends|implements)\b`)
	superListRe = regexp.MustCompile(`^\s+(?:[\w$.]+(?:\s*<[^<>]*(?:<[^<>]*>[^<>]*)*>)?\s*[,&]\s*)*([\w$.]*)$`)
)

func matchTypeDeclaration(in *Input) (Context, bool) {
	heads := declHeadRe.FindAllStringSubmatchIndex(in.Stmt, -1)
	if heads == nil {
		return Context{}, false
	}
	head := heads[len(heads)-1]
	declKind := in.Stmt[head[2]:head[3]]
	after := in.Stmt[head[1]:]
	if strings.ContainsAny(after, "(){};=") && declKind != "record" {
		return Context{}, false
	}
	kws := superKwRe.FindAllStringSubmatchIndex(after, -1)
	if kws == nil {
		return Context{}, false
	}
	kw := kws[len(kws)-1]
	m := superListRe.FindStringSubmatch(after[kw[1]:])
	if m == nil {
		return Context{}, false
	}
	ctx := Context{Kind: KindTypeDeclaration, Partial: m[1], Filter: InterfacesOnly}
	if i := strings.LastIndexByte(m[1], '.'); i >= 0 {
		ctx.Package, ctx.Partial = m[1][:i], m[1][i+1:]
	}
	switch {
	case inTypeParams(after[:kw[0]]):
		// A type parameter bound may be any class or interface.
		ctx.Filter = AnyType
	case after[kw[2]:kw[3]] == "extends" && declKind != "interface":
		ctx.Filter = ClassesOnly
	}
	return ctx, true
}

// inTypeParams reports whether s ends inside an unclosed type parameter list.
func inTypeParams(s string) bool {
	return strings.Count(s, "<") > strings.Count(s, ">")
}

var (
	newCallRe = regexp.MustCompile(`(?:^|[^\w$.])new\s+([A-Za-z_$][\w$.]*)\s*(?:<[^()]*>)?\s*\(\s*$`)
	newTypeRe = regexp.MustCompile(`(?:^|[^\w$.])new\s+((?:[\w$]+\s*\.\s*)*)([\w$]*)$`)
)

func matchConstructor(in *Input) (Context, bool) {
	if m := newCallRe.FindStringSubmatch(in.Stmt); m != nil {
		typ := Qualify(m[1], in.File, in.Env)
		if typ == "" {
			typ = m[1]
		}
		return Context{Kind: KindConstructor, Receiver: m[1], ReceiverType: typ}, true
	}
	if m := newTypeRe.FindStringSubmatch(in.Stmt); m != nil {
		qualifier := strings.TrimSuffix(strings.Join(strings.Fields(m[1]), ""), ".")
		return Context{Kind: KindConstructor, Receiver: qualifier, Package: qualifier, Partial: m[2]}, true
	}
	return Context{}, false
}

// memberAccessRe captures a receiver chain of identifiers and calls with
// flat argument lists, then the partial member name.
var memberAccessRe = regexp.MustCompile(`(?:^|[^\w$.)])((?:[A-Za-z_$][\w$]*(?:\s*\([^()]*\))?\s*\.\s*)+)([\w$]*)$`)

func matchMemberAccess(in *Input) (Context, bool) {
	m := memberAccessRe.FindStringSubmatch(in.Stmt)
	if m == nil {
		return Context{}, false
	}
	receiver := strings.TrimSuffix(strings.TrimSpace(m[1]), ".")
	receiver = strings.TrimSpace(receiver)
	segs := splitChain(receiver)
	if len(segs) == 0 {
		return Context{}, false
	}
	ctx := Context{Kind: KindMemberAccess, Receiver: receiver, Partial: m[2]}
	resolveReceiver(&ctx, segs, in)
	return ctx, true
}

// splitChain splits `a.b(x).c` into segments.
func splitChain(expr string) []Segment {
	var out []Segment
	depth, start := 0, 0
	flush := func(end int) {
		part := strings.TrimSpace(expr[start:end])
		seg := Segment{Name: part}
		if i := strings.IndexByte(part, '('); i >= 0 {
			seg = Segment{Name: strings.TrimSpace(part[:i]), Call: true}
		}
		out = append(out, seg)
	}
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '.':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(expr))
	return out
}

// resolveReceiver applies the receiver fallbacks: a declared variable, then
// `this`/`super`, a type name or the enclosing class, then java.lang plus
// the identifier.
func resolveReceiver(ctx *Context, segs []Segment, in *Input) {
	root := segs[0]
	rest := segs[1:]
	f := in.File

	switch {
	case root.Call:
		// Unqualified call: a method of the enclosing class.
		ctx.ReceiverType = f.QualifiedClass()
		ctx.Chain = segs
		return
	case root.Name == "this":
		ctx.ReceiverType = f.QualifiedClass()
		ctx.Chain = rest
		return
	case root.Name == "super":
		if t := Qualify(f.Super, f, in.Env); t != "" {
			ctx.ReceiverType = t
		} else {
			ctx.ReceiverType = f.Super
		}
		ctx.Chain = rest
		return
	}

	if local, ok := lookupLocal(declarations(in.Window), root.Name); ok {
		if t := Qualify(local.Type, f, in.Env); t != "" {
			ctx.ReceiverType = t
		} else {
			ctx.ReceiverType = arrayBase(stripGenerics(local.Type))
		}
		ctx.Chain = rest
		return
	}

	// Longest dotted prefix that names a class: `java.util.Map.Entry.`.
	for k := len(segs); k >= 1; k-- {
		if hasCall(segs[:k]) {
			continue
		}
		if t := Qualify(joinNames(segs[:k]), f, in.Env); t != "" {
			ctx.ReceiverType = t
			ctx.Static = true
			ctx.Chain = segs[k:]
			return
		}
	}
	if root.Name == f.Class && f.Class != "" {
		ctx.ReceiverType = f.QualifiedClass()
		ctx.Static = true
		ctx.Chain = rest
		return
	}
	ctx.ReceiverType = "java.lang." + root.Name
	ctx.Static = true
	ctx.Chain = rest
}

func hasCall(segs []Segment) bool {
	for _, s := range segs {
		if s.Call {
			return true
		}
	}
	return false
}

func joinNames(segs []Segment) string {
	names := make([]string, len(segs))
	for i, s := range segs {
		names[i] = s.Name
	}
	return strings.Join(names, ".")
}

// arrayBase maps array types to java.lang.Object, whose members arrays share.
func arrayBase(t string) string {
	if strings.HasSuffix(t, "]") || strings.HasSuffix(t, "...") {
		return "java.lang.Object"
	}
	return t
}

func matchBareIdentifier(in *Input) (Context, bool) {
	partial := trailingIdent(in.Line)
	if !isIdentifier(partial) {
		// A number literal such as "1" completes like an empty prefix.
		partial = ""
	}
	return Context{
		Kind:    KindBareIdentifier,
		Partial: partial,
		Locals:  declarations(in.Window),
	}, true
}
