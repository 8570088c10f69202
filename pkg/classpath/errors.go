package classpath

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by LoadOne and Describe for names no container
	// provides or the filters reject.
	ErrNotFound = errors.New("class not found on classpath")
	// ErrNoClasses is returned by LoadAll when nothing could be indexed.
	ErrNoClasses = errors.New("no classes loaded from classpath")
)

// LoadError reports a classpath entry or class that could not be read.
// Class is empty when the whole entry failed.
type LoadError struct {
	Path  string
	Class string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load %s from %s: %v", e.Class, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
