package classify

import (
	"regexp"
	"strings"
)

// Env answers questions about the index. Implementations must be safe for
// concurrent use and must not block on long operations.
type Env interface {
	HasPackage(path string) bool
	HasClass(qualified string) bool
	// ClassesNamed returns the qualified names of classes with the given
	// simple name.
	ClassesNamed(simple string) []string
}

type nopEnv struct{}

func (nopEnv) HasPackage(string) bool       { return false }
func (nopEnv) HasClass(string) bool         { return false }
func (nopEnv) ClassesNamed(string) []string { return nil }

// Import is one import declaration.
type Import struct {
	Path     string
	Static   bool
	Wildcard bool
}

// File holds what the source before the cursor says about its compilation
// unit.
type File struct {
	Package string
	Imports []Import
	// Class is the simple name of the innermost type declared before the
	// cursor, Super its declared superclass as written.
	Class string
	Super string
}

var (
	packageRe = regexp.MustCompile(`(?m)^\s*package\s+([\w$.]+)\s*;`)
	importRe  = regexp.MustCompile(`(?m)^\s*import\s+(static\s+)?([\w$.]+?)(\.\*)?\s*;`)
	classRe   = regexp.MustCompile(`\b(?:class|interface|enum|record)\s+([\w$]+)(?:\s*<[^{]*?>)?(?:\s+extends\s+([\w$.]+))?`)
)

func parseFile(cleaned string) *File {
	f := &File{}
	if m := packageRe.FindStringSubmatch(cleaned); m != nil {
		f.Package = m[1]
	}
	for _, m := range importRe.FindAllStringSubmatch(cleaned, -1) {
		f.Imports = append(f.Imports, Import{Path: m[2], Static: m[1] != "", Wildcard: m[3] != ""})
	}
	if all := classRe.FindAllStringSubmatch(cleaned, -1); len(all) > 0 {
		last := all[len(all)-1]
		f.Class, f.Super = last[1], last[2]
	}
	return f
}

// QualifiedClass is the binary name of the enclosing class, or its simple
// name when the file has no package.
func (f *File) QualifiedClass() string {
	if f.Class == "" || f.Package == "" {
		return f.Class
	}
	return f.Package + "." + f.Class
}

// Qualify resolves a type name as written in source to a qualified class
// name: explicit imports, then nested names, then the file's package,
// wildcard imports, java.lang, and finally a unique class of that simple
// name anywhere in the index. It returns "" when nothing matches.
func Qualify(name string, f *File, env Env) string {
	name = stripGenerics(name)
	name = strings.TrimSuffix(name, "...")
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
	}
	if name == "" || primitiveTypes[name] {
		return ""
	}
	if env == nil {
		env = nopEnv{}
	}
	if f == nil {
		f = &File{}
	}

	if i := strings.IndexByte(name, '.'); i >= 0 {
		// Outer.Inner where Outer resolves, or a fully qualified name.
		if outer := Qualify(name[:i], f, env); outer != "" {
			nested := outer + "$" + strings.ReplaceAll(name[i+1:], ".", "$")
			if env.HasClass(nested) {
				return nested
			}
		}
		if env.HasClass(name) {
			return name
		}
		// Fully qualified nested names: try turning trailing dots into '$'.
		for j := strings.LastIndexByte(name, '.'); j > 0; j = strings.LastIndexByte(name[:j], '.') {
			cand := name[:j] + "$" + strings.ReplaceAll(name[j+1:], ".", "$")
			if env.HasClass(cand) {
				return cand
			}
		}
		return ""
	}

	for _, imp := range f.Imports {
		if !imp.Wildcard && !imp.Static && strings.HasSuffix(imp.Path, "."+name) {
			if env.HasClass(imp.Path) {
				return imp.Path
			}
			if cand := nestedName(imp.Path); env.HasClass(cand) {
				return cand
			}
		}
	}
	if f.Class != "" && name != f.Class {
		if cand := f.QualifiedClass() + "$" + name; env.HasClass(cand) {
			return cand
		}
	}
	if f.Package != "" {
		if cand := f.Package + "." + name; env.HasClass(cand) {
			return cand
		}
	} else if env.HasClass(name) {
		return name
	}
	for _, imp := range f.Imports {
		if imp.Wildcard && !imp.Static {
			if cand := imp.Path + "." + name; env.HasClass(cand) {
				return cand
			}
			if cand := nestedName(imp.Path) + "$" + name; env.HasClass(cand) {
				return cand
			}
		}
	}
	if cand := "java.lang." + name; env.HasClass(cand) {
		return cand
	}
	// An ambiguous simple name stays unresolved.
	if matches := env.ClassesNamed(name); len(matches) == 1 {
		return matches[0]
	}
	return ""
}

// nestedName turns "java.util.Map.Entry" into "java.util.Map$Entry" when the
// segment before the last starts with an upper case letter.
func nestedName(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return path
	}
	j := strings.LastIndexByte(path[:i], '.')
	outer := path[j+1 : i]
	if outer == "" || outer[0] < 'A' || outer[0] > 'Z' {
		return path
	}
	return path[:i] + "$" + path[i+1:]
}

var primitiveTypes = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
	"var": true,
}

// Keywords lists the Java reserved words offered for bare identifiers.
var Keywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "false", "final", "finally", "float", "for", "goto", "if",
	"implements", "import", "instanceof", "int", "interface", "long", "native",
	"new", "null", "package", "private", "protected", "public", "return",
	"short", "static", "strictfp", "super", "switch", "synchronized", "this",
	"throw", "throws", "transient", "true", "try", "void", "volatile", "while",
}

var keywordSet = func() map[string]bool {
	m := make(map[string]bool, len(Keywords))
	for _, k := range Keywords {
		m[k] = true
	}
	return m
}()

// declRe finds `Type name` followed by a declarator end. Group 1 is the
// type, group 2 the name.
var declRe = regexp.MustCompile(`([A-Za-z_$][\w$.]*(?:\s*<[^;{}()=]*?>)?(?:\s*\[\s*\])*)\s+([A-Za-z_$][\w$]*)\s*(?:=|;|,|\)|:|$)`)

// declarations returns the variable declarations in text, nearest last.
// Later declarations of the same name replace earlier ones.
func declarations(text string) []Local {
	var out []Local
	index := map[string]int{}
	for _, m := range declRe.FindAllStringSubmatch(text, -1) {
		typ, name := strings.TrimSpace(m[1]), m[2]
		base := stripGenerics(typ)
		if keywordSet[base] && !primitiveTypes[base] || keywordSet[name] {
			continue
		}
		if i, ok := index[name]; ok {
			out = append(out[:i], out[i+1:]...)
			for n, j := range index {
				if j > i {
					index[n] = j - 1
				}
			}
		}
		index[name] = len(out)
		out = append(out, Local{Name: name, Type: typ})
	}
	return out
}

// lookupLocal returns the nearest declaration of name.
func lookupLocal(locals []Local, name string) (Local, bool) {
	for i := len(locals) - 1; i >= 0; i-- {
		if locals[i].Name == name {
			return locals[i], true
		}
	}
	return Local{}, false
}
