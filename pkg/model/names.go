package model

import "strings"

// SimpleName returns the last segment of a binary class name:
// "java.util.Map$Entry" -> "Entry".
func SimpleName(qualified string) string {
	i := strings.LastIndexAny(qualified, ".$")
	return qualified[i+1:]
}

// PackageOf returns the package of a binary class name, empty for the default
// package.
func PackageOf(qualified string) string {
	outer := qualified
	if i := strings.IndexByte(outer, '$'); i >= 0 {
		outer = outer[:i]
	}
	if i := strings.LastIndexByte(outer, '.'); i >= 0 {
		return outer[:i]
	}
	return ""
}

// InverseName reverses the segments of a binary class name so the simple name
// leads: "com.foo.Bar" -> "Bar.foo.com", "java.util.Map$Entry" ->
// "Entry.Map.util.java".
func InverseName(qualified string) string {
	segs := strings.FieldsFunc(qualified, func(r rune) bool { return r == '.' || r == '$' })
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, ".")
}

// IsAnonymous reports binary names of anonymous or local classes, whose
// nested part starts with a digit ("Outer$1", "Outer$1Local").
func IsAnonymous(qualified string) bool {
	for {
		i := strings.IndexByte(qualified, '$')
		if i < 0 {
			return false
		}
		qualified = qualified[i+1:]
		if qualified == "" || (qualified[0] >= '0' && qualified[0] <= '9') {
			return true
		}
	}
}
