package model

import "testing"

func TestNames(t *testing.T) {
	tests := []struct {
		qualified string
		simple    string
		pkg       string
		inverse   string
	}{
		{"com.foo.Bar", "Bar", "com.foo", "Bar.foo.com"},
		{"java.util.Map$Entry", "Entry", "java.util", "Entry.Map.util.java"},
		{"Main", "Main", "", "Main"},
	}
	for _, tt := range tests {
		t.Run(tt.qualified, func(t *testing.T) {
			if got := SimpleName(tt.qualified); got != tt.simple {
				t.Errorf("SimpleName = %q, want %q", got, tt.simple)
			}
			if got := PackageOf(tt.qualified); got != tt.pkg {
				t.Errorf("PackageOf = %q, want %q", got, tt.pkg)
			}
			if got := InverseName(tt.qualified); got != tt.inverse {
				t.Errorf("InverseName = %q, want %q", got, tt.inverse)
			}
		})
	}
}

func TestIsAnonymous(t *testing.T) {
	cases := map[string]bool{
		"a.Outer":        false,
		"a.Outer$Inner":  false,
		"a.Outer$1":      true,
		"a.Outer$1Local": true,
		"a.Outer$In$2":   true,
	}
	for name, want := range cases {
		if got := IsAnonymous(name); got != want {
			t.Errorf("IsAnonymous(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTouchKeepsNewest(t *testing.T) {
	k := NewKeyword("class")
	k.Touch(10)
	k.Touch(5)
	if k.LastUsed() != 10 {
		t.Fatalf("LastUsed = %d, want 10", k.LastUsed())
	}
	k.Touch(11)
	if k.LastUsed() != 11 {
		t.Fatalf("LastUsed = %d, want 11", k.LastUsed())
	}
}

func TestPackageSnippet(t *testing.T) {
	root := NewPackage("", nil)
	java := NewPackage("java", nil)
	root.AddChild(java)
	util := NewPackage("util", nil)
	java.AddChild(util)

	if java.Snippet() != "java." {
		t.Errorf("inner snippet = %q", java.Snippet())
	}
	if util.Snippet() != "util;" {
		t.Errorf("leaf snippet = %q", util.Snippet())
	}
	if util.Path() != "java.util" {
		t.Errorf("Path = %q", util.Path())
	}
	java.RemoveChild("util")
	if java.Snippet() != "java;" {
		t.Errorf("snippet after RemoveChild = %q", java.Snippet())
	}
}
