package classfile

import (
	"fmt"
	"strings"
)

var primitives = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// TypeName converts a field descriptor to a Java type name:
// "I" -> "int", "[Ljava/lang/String;" -> "java.lang.String[]".
func TypeName(desc string) (string, error) {
	name, n, err := parseType(desc, 0)
	if err != nil {
		return "", err
	}
	if n != len(desc) {
		return "", fmt.Errorf("trailing data in descriptor %q", desc)
	}
	return name, nil
}

// MethodTypes splits a method descriptor into parameter and return type names.
func MethodTypes(desc string) (params []string, ret string, err error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, "", fmt.Errorf("bad method descriptor %q", desc)
	}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		var name string
		name, i, err = parseType(desc, i)
		if err != nil {
			return nil, "", err
		}
		params = append(params, name)
	}
	if i >= len(desc) {
		return nil, "", fmt.Errorf("unterminated method descriptor %q", desc)
	}
	ret, err = TypeName(desc[i+1:])
	return params, ret, err
}

func parseType(desc string, i int) (string, int, error) {
	dims := 0
	for i < len(desc) && desc[i] == '[' {
		dims++
		i++
	}
	if i >= len(desc) {
		return "", i, fmt.Errorf("truncated descriptor %q", desc)
	}
	var name string
	switch c := desc[i]; c {
	case 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return "", i, fmt.Errorf("unterminated class in descriptor %q", desc)
		}
		name = BinaryName(desc[i+1 : i+end])
		i += end + 1
	default:
		p, ok := primitives[c]
		if !ok {
			return "", i, fmt.Errorf("unknown type %q in descriptor %q", c, desc)
		}
		name = p
		i++
	}
	return name + strings.Repeat("[]", dims), i, nil
}

// BinaryName converts an internal name ("java/util/Map$Entry") to the dotted
// binary form ("java.util.Map$Entry").
func BinaryName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}
