package classpath

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change reported for a classpath path.
type Op int

const (
	OpAdded Op = iota
	OpRemoved
	OpModified
)

func (o Op) String() string {
	switch o {
	case OpAdded:
		return "added"
	case OpRemoved:
		return "removed"
	case OpModified:
		return "modified"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

func ParseOp(s string) (Op, error) {
	switch strings.ToLower(s) {
	case "added", "add", "create":
		return OpAdded, nil
	case "removed", "remove", "delete":
		return OpRemoved, nil
	case "modified", "modify", "write", "change":
		return OpModified, nil
	}
	return 0, fmt.Errorf("unknown file op %q", s)
}

// Watcher reports changes to classpath entries: archive and dex files, and
// .class files under directory entries. Bursts of events are debounced per
// path and delivered in path order.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *debouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu      sync.RWMutex
	entries map[string]bool
	roots   []string
}

func NewWatcher(debounce time.Duration, onEvent func(path string, op Op)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:       fsw,
		debouncer: newDebouncer(debounce, onEvent),
		ctx:       ctx,
		cancel:    cancel,
		entries:   make(map[string]bool),
	}
	w.wg.Add(1)
	go w.processEvents()
	return w, nil
}

// Watch adds paths to the watched set. Files are watched through their
// parent directory so that replacement by rename is seen.
func (w *Watcher) Watch(paths []string) error {
	for _, p := range paths {
		p = filepath.Clean(p)
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		if info.IsDir() {
			w.mu.Lock()
			w.roots = append(w.roots, p)
			w.mu.Unlock()
			if err := w.addTree(p); err != nil {
				return err
			}
			continue
		}
		w.mu.Lock()
		w.entries[p] = true
		w.mu.Unlock()
		if err := w.fsw.Add(filepath.Dir(p)); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		real, err := filepath.EvalSymlinks(p)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true
		if err := w.fsw.Add(p); err != nil {
			log.Warnf("Failed to watch %s: %v", p, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warnf("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	p := filepath.Clean(event.Name)
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(p); err == nil && info.IsDir() && w.underRoot(p) {
			if err := w.addTree(p); err != nil {
				log.Warnf("Failed to watch new directory %s: %v", p, err)
			}
			return
		}
	}
	if !w.relevant(p) {
		return
	}
	var op Op
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = OpRemoved
	case event.Has(fsnotify.Create):
		op = OpAdded
	case event.Has(fsnotify.Write):
		op = OpModified
	default:
		return
	}
	log.Debugf("File event %v for %s", op, p)
	w.debouncer.add(p, op)
}

func (w *Watcher) relevant(p string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.entries[p] {
		return true
	}
	return strings.HasSuffix(p, ".class") && w.underRootLocked(p)
}

func (w *Watcher) underRoot(p string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.underRootLocked(p)
}

func (w *Watcher) underRootLocked(p string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, p)
		if err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// Close stops watching. Pending debounced events are dropped.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	w.debouncer.stop()
	return err
}

type debouncer struct {
	mu      sync.Mutex
	events  map[string]Op
	delay   time.Duration
	timer   *time.Timer
	stopped bool
	onEvent func(string, Op)
}

func newDebouncer(delay time.Duration, onEvent func(string, Op)) *debouncer {
	return &debouncer{
		events:  make(map[string]Op),
		delay:   delay,
		onEvent: onEvent,
	}
}

func (d *debouncer) add(p string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	// A file created and then written in one burst is still new.
	if prev, ok := d.events[p]; ok && prev == OpAdded && op == OpModified {
		op = OpAdded
	}
	d.events[p] = op
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	events := d.events
	d.events = make(map[string]Op)
	d.mu.Unlock()

	paths := make([]string, 0, len(events))
	for p := range events {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		d.onEvent(p, events[p])
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
