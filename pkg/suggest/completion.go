package suggest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/tranleduy2000/javaide-sub031/pkg/classify"
	"github.com/tranleduy2000/javaide-sub031/pkg/classpath"
	"github.com/tranleduy2000/javaide-sub031/pkg/imports"
	"github.com/tranleduy2000/javaide-sub031/pkg/index"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
	"github.com/tranleduy2000/javaide-sub031/pkg/symbols"
)

var (
	ErrRebuildCanceled = errors.New("suggest: rebuild canceled")
	ErrUnknownItem     = errors.New("suggest: unknown suggestion")
)

// State is the availability of the index.
type State int32

const (
	// StateEmpty: no rebuild has completed yet.
	StateEmpty State = iota
	StateReady
	// StateDegraded: the last rebuild loaded no classes at all.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	}
	return "unknown"
}

type Options struct {
	Classpath    classpath.Options
	Window       int
	InheritDepth int
	Keywords     bool
	DefaultLimit int
	// MaxOffered bounds the items remembered for AcceptID.
	MaxOffered int
}

func DefaultOptions() Options {
	return Options{
		Classpath:    classpath.DefaultOptions(),
		Window:       classify.DefaultWindow,
		InheritDepth: DefaultInheritDepth,
		Keywords:     true,
		DefaultLimit: 50,
		MaxOffered:   1024,
	}
}

// live is what one rebuild publishes.
type live struct {
	snap  *index.Snapshot
	store *classpath.Store
	state State
}

type fileEvent struct {
	path string
	op   classpath.Op
}

// Completer is the completion engine. Queries read the published snapshot
// without locks; rebuilds build a new one in the background and swap it in
// when complete.
type Completer struct {
	opts     Options
	clock    *symbols.Clock
	keywords []*model.KeywordDescription
	offered  *OfferedCache

	cur     atomic.Pointer[live]
	gen     atomic.Uint64
	reqs    atomic.Uint64
	stopped atomic.Bool

	mu       sync.Mutex
	inflight *RebuildHandle
	pending  []fileEvent
	// events serialises incremental updates against each other.
	events sync.Mutex
}

func NewCompleter(opts Options) *Completer {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	c := &Completer{
		opts:    opts,
		clock:   &symbols.Clock{},
		offered: NewOfferedCache(opts.MaxOffered),
	}
	if opts.Keywords {
		for _, kw := range classify.Keywords {
			c.keywords = append(c.keywords, model.NewKeyword(kw))
		}
	}
	snap := index.New(0, c.clock)
	c.cur.Store(&live{snap: snap, store: classpath.NewStore(snap, opts.Classpath), state: StateEmpty})
	return c
}

// Snapshot returns the published snapshot.
func (c *Completer) Snapshot() *index.Snapshot { return c.cur.Load().snap }

func (c *Completer) State() State { return c.cur.Load().state }

// Complete classifies text at cursor and resolves the context against the
// snapshot published at call start. A limit of zero or less uses the
// default limit.
func (c *Completer) Complete(text string, cursor, limit int) ([]SuggestionItem, classify.Context) {
	l := c.cur.Load()
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	ctx, ok := classify.Classify(text, cursor, snapshotEnv{l.snap}, classify.Options{Window: c.opts.Window})
	if !ok {
		return nil, ctx
	}
	r := &Resolver{
		Snap:         l.snap,
		Loader:       l.store,
		InheritDepth: c.opts.InheritDepth,
		Keywords:     c.keywords,
	}
	descs := r.Resolve(ctx)
	if limit <= 0 {
		limit = c.opts.DefaultLimit
	}
	if len(descs) > limit {
		descs = descs[:limit]
	}

	req := c.reqs.Add(1)
	start := cursor - len(ctx.Partial)
	items := make([]SuggestionItem, len(descs))
	for i, d := range descs {
		items[i] = SuggestionItem{
			ID:           strconv.FormatUint(l.snap.Generation, 10) + ":" + strconv.FormatUint(req, 10) + ":" + strconv.Itoa(i),
			DisplayName:  DisplayName(d),
			Snippet:      d.Snippet(),
			Kind:         d.Kind(),
			Detail:       Detail(d),
			Source:       d,
			ReplaceStart: start,
			ReplaceEnd:   cursor,
			ImportClass:  importFor(ctx, d),
		}
	}
	c.offered.Put(items)
	return items, ctx
}

// RequestCompletion returns the ranked suggestions for cursor in text.
func (c *Completer) RequestCompletion(text string, cursor int) []SuggestionItem {
	items, _ := c.Complete(text, cursor, 0)
	return items
}

// importFor names the class an accepted description needs imported:
// classes and constructors outside import statements, and static members
// reached through a simple type name.
func importFor(ctx classify.Context, d model.Description) string {
	switch ctx.Kind {
	case classify.KindImportPath, classify.KindPackagePath:
		return ""
	}
	switch v := d.(type) {
	case *model.ClassDescription:
		if ctx.Kind == classify.KindMemberAccess {
			return ""
		}
		return v.QualifiedName
	case *model.ConstructorDescription:
		if ctx.Receiver == "" || ctx.ReceiverType == v.Owner.QualifiedName && !strings.Contains(ctx.Receiver, ".") {
			return v.Owner.QualifiedName
		}
	case *model.MethodDescription, *model.FieldDescription:
		if ctx.Kind == classify.KindMemberAccess && ctx.Static && len(ctx.Chain) == 0 && !strings.Contains(ctx.Receiver, ".") {
			return ctx.ReceiverType
		}
	}
	return ""
}

// AcceptSuggestion records the use of item and returns the edits that
// insert it into text, including an import when one is needed.
func (c *Completer) AcceptSuggestion(text string, item SuggestionItem) Acceptance {
	l := c.cur.Load()
	l.snap.Symbols.Touch(item.Source)

	start, end := item.ReplaceStart, item.ReplaceEnd
	if start < 0 || end > len(text) || start > end {
		start, end = len(text), len(text)
	}
	acc := Acceptance{Insert: imports.Edit{Start: start, End: end, NewText: item.Snippet}}
	if item.ImportClass != "" {
		if edit, ok := imports.ImportClass(text, item.ImportClass); ok {
			acc.Import = edit
		}
	}
	return acc
}

// AcceptID accepts an item from a recent Complete call by its ID.
func (c *Completer) AcceptID(text, id string) (Acceptance, SuggestionItem, error) {
	item, ok := c.offered.Get(id)
	if !ok {
		return Acceptance{}, SuggestionItem{}, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	return c.AcceptSuggestion(text, item), item, nil
}

// Touch records the use of the item offered under id without editing.
func (c *Completer) Touch(id string) error {
	item, ok := c.offered.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	c.cur.Load().snap.Symbols.Touch(item.Source)
	return nil
}

// RebuildHandle tracks one background rebuild.
type RebuildHandle struct {
	done   chan struct{}
	cancel context.CancelFunc
	report classpath.Report
	err    error
}

// Done is closed when the rebuild has finished or was abandoned.
func (h *RebuildHandle) Done() <-chan struct{} { return h.done }

// Cancel abandons the rebuild. The published snapshot is left as it was.
func (h *RebuildHandle) Cancel() { h.cancel() }

// Err returns the outcome once Done is closed.
func (h *RebuildHandle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Report returns the load report once Done is closed.
func (h *RebuildHandle) Report() classpath.Report {
	<-h.done
	return h.report
}

// Wait blocks until the rebuild finishes or ctx is done.
func (h *RebuildHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RebuildIndex loads paths into a new snapshot in the background. While a
// rebuild is running, further calls return its handle instead of starting
// another one.
func (c *Completer) RebuildIndex(ctx context.Context, paths []string) *RebuildHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != nil {
		log.Debugf("Rebuild already running, coalescing")
		return c.inflight
	}
	rctx, cancel := context.WithCancel(ctx)
	h := &RebuildHandle{done: make(chan struct{}), cancel: cancel}
	if c.stopped.Load() {
		cancel()
		h.err = ErrRebuildCanceled
		close(h.done)
		return h
	}
	c.inflight = h
	paths = append([]string(nil), paths...)
	go c.rebuild(rctx, h, paths)
	return h
}

func (c *Completer) rebuild(ctx context.Context, h *RebuildHandle, paths []string) {
	defer close(h.done)
	defer h.cancel()

	gen := c.gen.Add(1)
	snap := index.New(gen, c.clock)
	store := classpath.NewStore(snap, c.opts.Classpath)
	rep, err := store.LoadAll(ctx, paths)
	h.report = rep

	state := StateReady
	switch {
	case ctx.Err() != nil:
		store.Close()
		h.err = fmt.Errorf("%w: %w", ErrRebuildCanceled, ctx.Err())
		c.finish(nil)
		log.Debugf("Rebuild %d abandoned", gen)
		return
	case errors.Is(err, classpath.ErrNoClasses):
		state = StateDegraded
		h.err = err
		log.Warnf("Classpath yielded no classes, completion is degraded")
	case err != nil:
		store.Close()
		h.err = err
		c.finish(nil)
		log.Errorf("Rebuild %d failed: %v", gen, err)
		return
	}

	next := &live{snap: snap, store: store, state: state}
	c.finish(next)
	log.Debugf("Published snapshot %d: %d classes from %d entries, %d skipped, %d errors",
		gen, snap.NumClasses(), rep.Entries, rep.Skipped, len(rep.Errors))
}

// finish publishes next, if any, clears the in-flight rebuild and replays
// the file events that arrived meanwhile.
func (c *Completer) finish(next *live) {
	c.events.Lock()
	defer c.events.Unlock()

	// cur only changes while events is held.
	if next != nil {
		next.snap.InheritUsage(c.cur.Load().snap)
	}
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.inflight = nil
	var prev *live
	if next != nil {
		prev = c.cur.Swap(next)
	}
	c.mu.Unlock()

	if next == nil {
		return
	}
	c.offered.Clear()
	if prev != nil {
		prev.store.Close()
	}
	for _, ev := range pending {
		c.apply(next, ev)
	}
}

// HandleFileEvent applies a classpath change to the published snapshot.
// Events arriving during a rebuild are also replayed onto its result.
func (c *Completer) HandleFileEvent(path string, op classpath.Op) {
	c.events.Lock()
	defer c.events.Unlock()

	c.mu.Lock()
	if c.inflight != nil {
		c.pending = append(c.pending, fileEvent{path, op})
	}
	l := c.cur.Load()
	c.mu.Unlock()
	c.apply(l, fileEvent{path, op})
}

func (c *Completer) apply(l *live, ev fileEvent) {
	switch ev.op {
	case classpath.OpRemoved:
		n := l.store.Remove(ev.path)
		log.Debugf("Removed %s: %d classes", ev.path, n)
	case classpath.OpAdded, classpath.OpModified:
		rep, err := l.store.Reindex(ev.path)
		if err != nil {
			log.Warnf("Reindex %s: %v", ev.path, err)
			return
		}
		log.Debugf("Reindexed %s: %d classes", ev.path, rep.Classes)
	}
	if l.state == StateDegraded && l.snap.NumClasses() > 0 {
		c.cur.CompareAndSwap(l, &live{snap: l.snap, store: l.store, state: StateReady})
	}
}

// Close abandons a running rebuild, waits for it and releases the
// classpath entries.
func (c *Completer) Close() error {
	c.stopped.Store(true)
	c.mu.Lock()
	h := c.inflight
	c.mu.Unlock()
	if h != nil {
		h.Cancel()
		<-h.done
	}
	return c.cur.Load().store.Close()
}

// Stats returns counters about the published snapshot.
func (c *Completer) Stats() map[string]int {
	l := c.cur.Load()
	stats := map[string]int{
		"generation": int(l.snap.Generation),
		"classes":    l.snap.NumClasses(),
		"packages":   l.snap.Packages.Len(),
		"categories": l.snap.Symbols.Categories(),
		"entries":    len(l.store.Entries()),
		"state":      int(l.state),
	}
	c.mu.Lock()
	if c.inflight != nil {
		stats["rebuilding"] = 1
	} else {
		stats["rebuilding"] = 0
	}
	c.mu.Unlock()
	for k, v := range c.offered.Stats() {
		stats[k] = v
	}
	return stats
}
