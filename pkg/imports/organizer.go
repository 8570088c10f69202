// Package imports keeps a Java file's import block sorted and free of
// duplicates when classes are accepted from completion.
package imports

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

// Edit replaces text[Start:End] with NewText. Offsets are byte offsets into
// the text the edit was computed for.
type Edit struct {
	Start   int
	End     int
	NewText string
}

func (e *Edit) Apply(text string) string {
	return text[:e.Start] + e.NewText + text[e.End:]
}

// Diff renders the edit as a unified diff of text.
func (e *Edit) Diff(text, name string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(text),
		B:        difflib.SplitLines(e.Apply(text)),
		FromFile: name,
		ToFile:   name,
		Context:  1,
	})
}

// Statement is one import declaration found in a file.
type Statement struct {
	Start, End int
	Path       string
	Static     bool
	Wildcard   bool
}

func (s Statement) String() string {
	var b strings.Builder
	b.WriteString("import ")
	if s.Static {
		b.WriteString("static ")
	}
	b.WriteString(s.Path)
	if s.Wildcard {
		b.WriteString(".*")
	}
	b.WriteByte(';')
	return b.String()
}

var (
	importRe  = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(static[ \t]+)?([\w$]+(?:[ \t]*\.[ \t]*[\w$]+)*)([ \t]*\.[ \t]*\*)?[ \t]*;`)
	packageRe = regexp.MustCompile(`(?m)^[ \t]*package[ \t]+([\w$.\s]+?)[ \t]*;`)
)

// Scan returns the import statements of text in order, and the package
// declaration's end offset (-1 without one). Comments are ignored.
func Scan(text string) (stmts []Statement, pkg string, pkgEnd int) {
	masked := maskComments(text)
	pkgEnd = -1
	if m := packageRe.FindStringSubmatchIndex(masked); m != nil {
		pkg = strings.Join(strings.Fields(masked[m[2]:m[3]]), "")
		pkgEnd = m[1]
	}
	for _, m := range importRe.FindAllStringSubmatchIndex(masked, -1) {
		start := m[0] + strings.Index(masked[m[0]:m[1]], "import")
		stmts = append(stmts, Statement{
			Start:    start,
			End:      m[1],
			Path:     strings.Join(strings.Fields(strings.ReplaceAll(masked[m[4]:m[5]], ".", " . ")), ""),
			Static:   m[2] >= 0,
			Wildcard: m[6] >= 0,
		})
	}
	return stmts, pkg, pkgEnd
}

// maskComments blanks comments with spaces, keeping offsets and newlines.
func maskComments(text string) string {
	b := []byte(text)
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '"' || b[i] == '\'':
			q := b[i]
			for i++; i < len(b) && b[i] != q && b[i] != '\n'; i++ {
				if b[i] == '\\' {
					i++
				}
			}
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '/':
			for ; i < len(b) && b[i] != '\n'; i++ {
				b[i] = ' '
			}
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '*':
			b[i], b[i+1] = ' ', ' '
			for i += 2; i < len(b); i++ {
				if b[i] == '*' && i+1 < len(b) && b[i+1] == '/' {
					b[i], b[i+1] = ' ', ' '
					i++
					break
				}
				if b[i] != '\n' {
					b[i] = ' '
				}
			}
		}
	}
	return string(b)
}

// Covered reports whether qualified is usable by simple name in text
// without a new import.
func Covered(text, qualified string) bool {
	stmts, filePkg, _ := Scan(text)
	return covered(stmts, filePkg, qualified)
}

func covered(stmts []Statement, filePkg, qualified string) bool {
	pkg := model.PackageOf(qualified)
	if pkg == "" || pkg == "java.lang" && !strings.Contains(qualified, "$") || pkg == filePkg && !strings.Contains(qualified, "$") {
		return true
	}
	source := strings.ReplaceAll(qualified, "$", ".")
	container := source[:strings.LastIndexByte(source, '.')]
	for _, s := range stmts {
		if s.Static {
			continue
		}
		if !s.Wildcard && s.Path == source || s.Wildcard && s.Path == container {
			return true
		}
	}
	return false
}

// ImportClass returns the edit that adds an import for the binary class name
// qualified, or false when none is needed: java.lang classes, classes of the
// file's own package, and classes already imported by name or wildcard.
//
// The new block holds every existing import plus the new one, sorted and
// de-duplicated, and replaces the text from the first to the last import.
// Without imports the block goes after the package declaration.
func ImportClass(text, qualified string) (*Edit, bool) {
	stmts, filePkg, pkgEnd := Scan(text)
	if covered(stmts, filePkg, qualified) {
		return nil, false
	}
	added := Statement{Path: strings.ReplaceAll(qualified, "$", ".")}

	if len(stmts) == 0 {
		if pkgEnd < 0 {
			return &Edit{Start: 0, End: 0, NewText: added.String() + "\n\n"}, true
		}
		return &Edit{Start: pkgEnd, End: pkgEnd, NewText: "\n\n" + added.String()}, true
	}

	seen := map[string]bool{added.String(): true}
	lines := []string{added.String()}
	for _, s := range stmts {
		line := s.String()
		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}
	sort.Strings(lines)
	return &Edit{
		Start:   stmts[0].Start,
		End:     stmts[len(stmts)-1].End,
		NewText: strings.Join(lines, "\n"),
	}, true
}
