package classify

import "strings"

type lexState int

const (
	stCode lexState = iota
	stLineComment
	stBlockComment
	stString
	stChar
	stTextBlock
)

// clean removes comments and blanks the contents of string, char and text
// block literals, so that `"a;b"` becomes `""`. Line structure is kept. The
// flag is false when src ends inside a comment or literal.
func clean(src string) (string, bool) {
	var b strings.Builder
	b.Grow(len(src))
	st := stCode
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch st {
		case stCode:
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				st = stLineComment
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				st = stBlockComment
				b.WriteByte(' ')
				i++
			case c == '"' && strings.HasPrefix(src[i:], `"""`):
				st = stTextBlock
				b.WriteString(`"`)
				i += 2
			case c == '"':
				st = stString
				b.WriteByte('"')
			case c == '\'':
				st = stChar
				b.WriteByte('\'')
			default:
				b.WriteByte(c)
			}
		case stLineComment:
			if c == '\n' {
				st = stCode
				b.WriteByte('\n')
			}
		case stBlockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				st = stCode
				i++
			} else if c == '\n' {
				b.WriteByte('\n')
			}
		case stString, stChar:
			quote := byte('"')
			if st == stChar {
				quote = '\''
			}
			switch c {
			case '\\':
				i++
			case quote:
				b.WriteByte(quote)
				st = stCode
			case '\n':
				// Unterminated literal; resynchronise at the line end.
				b.WriteByte(quote)
				b.WriteByte('\n')
				st = stCode
			}
		case stTextBlock:
			if c == '\\' {
				i++
			} else if c == '"' && strings.HasPrefix(src[i:], `"""`) {
				b.WriteByte('"')
				st = stCode
				i += 2
			}
		}
	}
	return b.String(), st == stCode
}

// currentLine returns the text after the last newline.
func currentLine(s string) string {
	return s[strings.LastIndexByte(s, '\n')+1:]
}

// statement returns the incomplete statement at the end of cleaned text:
// everything after the last '{', '}' or ';', on one line. Import and package
// lines are taken whole.
func statement(cleaned string) string {
	line := strings.TrimLeft(currentLine(cleaned), " \t\r")
	if hasKeyword(line, "import") || hasKeyword(line, "package") {
		return line
	}
	stmt := cleaned[strings.LastIndexAny(cleaned, "{};")+1:]
	stmt = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, stmt)
	return strings.TrimLeft(stmt, " ")
}

// hasKeyword reports whether s starts with kw followed by whitespace.
func hasKeyword(s, kw string) bool {
	return strings.HasPrefix(s, kw) && len(s) > len(kw) && (s[len(kw)] == ' ' || s[len(kw)] == '\t')
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

// trailingIdent returns the run of identifier characters ending s.
func trailingIdent(s string) string {
	i := len(s)
	for i > 0 && isIdentByte(s[i-1]) {
		i--
	}
	return s[i:]
}

func isIdentifier(s string) bool {
	if s == "" || s[0] >= '0' && s[0] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// stripGenerics removes type arguments: "Map<String, List<Integer>>" -> "Map".
func stripGenerics(t string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(t); i++ {
		switch c := t[i]; {
		case c == '<':
			depth++
		case c == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0 && c != ' ':
			b.WriteByte(c)
		}
	}
	return b.String()
}
