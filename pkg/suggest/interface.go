// Package suggest resolves classified completion contexts into ranked
// suggestions and runs the completion engine around the published index
// snapshot.
package suggest

import (
	"context"

	"github.com/tranleduy2000/javaide-sub031/pkg/classify"
	"github.com/tranleduy2000/javaide-sub031/pkg/classpath"
)

// Engine is what transports need from a completion engine.
type Engine interface {
	// Complete returns ranked suggestions for cursor in text and the
	// context they were resolved from.
	Complete(text string, cursor, limit int) ([]SuggestionItem, classify.Context)

	// AcceptID records the use of an offered item and returns its edits.
	AcceptID(text, id string) (Acceptance, SuggestionItem, error)

	// Touch records the use of an offered item without computing edits.
	Touch(id string) error

	RebuildIndex(ctx context.Context, paths []string) *RebuildHandle
	HandleFileEvent(path string, op classpath.Op)

	State() State
	Stats() map[string]int
}

var _ Engine = (*Completer)(nil)
