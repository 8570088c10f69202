package suggest

import (
	"github.com/tranleduy2000/javaide-sub031/pkg/index"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
	"github.com/tranleduy2000/javaide-sub031/pkg/symbols"
)

// snapshotEnv answers the classifier's index questions from one snapshot.
type snapshotEnv struct {
	snap *index.Snapshot
}

func (e snapshotEnv) HasPackage(path string) bool { return e.snap.HasPackage(path) }

func (e snapshotEnv) HasClass(qualified string) bool {
	_, ok := e.snap.Class(qualified)
	return ok
}

// ClassesNamed finds classes by simple name through their inverse keys.
func (e snapshotEnv) ClassesNamed(simple string) []string {
	var out []string
	e.snap.Symbols.Visit(symbols.CategoryClass, simple, func(_ string, d model.Description) {
		if cls, ok := d.(*model.ClassDescription); ok && cls.SimpleName == simple {
			out = append(out, cls.QualifiedName)
		}
	})
	return out
}
