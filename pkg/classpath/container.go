package classpath

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/tranleduy2000/javaide-sub031/pkg/classfile"
	"github.com/tranleduy2000/javaide-sub031/pkg/dex"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

// ClassReader turns the bytes of one class into a description.
type ClassReader interface {
	ReadClass(data []byte) (*model.ClassDescription, error)
}

// Container is one classpath entry: a jar/zip/apk archive, a dex file or a
// directory of .class files.
type Container interface {
	Path() string
	// Classes lists the binary names of the classes in the container.
	Classes() []string
	// Load decodes one class. The description's Source is set.
	Load(qualified string) (*model.ClassDescription, error)
	// Hash fingerprints the container content.
	Hash() (uint64, error)
	Close() error
}

// Open picks the container implementation for path.
func Open(p string) (Container, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return openDir(p)
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".dex":
		return openDex(p)
	case ".class":
		return openClassFile(p)
	case ".jar", ".zip", ".apk", ".aar":
		return openJar(p)
	}
	return nil, fmt.Errorf("unsupported classpath entry %s", p)
}

func hashFile(p string) (uint64, error) {
	f, err := os.Open(p)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// internalToBinary maps "java/util/Map$Entry.class" to "java.util.Map$Entry".
func internalToBinary(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, ".class"), "/", ".")
}

// binaryToInternal maps "java.util.Map$Entry" to "java/util/Map$Entry".
func binaryToInternal(qualified string) string {
	return strings.ReplaceAll(qualified, ".", "/")
}

type jarContainer struct {
	path    string
	rc      *zip.ReadCloser
	entries map[string]*zip.File
	dexes   []*dex.File
	reader  classfile.Reader
}

func openJar(p string) (*jarContainer, error) {
	rc, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	j := &jarContainer{path: p, rc: rc, entries: make(map[string]*zip.File)}
	for _, f := range rc.File {
		name := f.Name
		switch {
		case strings.HasSuffix(name, ".class") && !strings.HasPrefix(name, "META-INF/"):
			j.entries[internalToBinary(name)] = f
		case path.Dir(name) == "." && strings.HasPrefix(name, "classes") && strings.HasSuffix(name, ".dex"):
			data, err := readZipFile(f)
			if err != nil {
				rc.Close()
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			df, err := dex.Open(data)
			if err != nil {
				rc.Close()
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			j.dexes = append(j.dexes, df)
		}
	}
	return j, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (j *jarContainer) Path() string { return j.path }

func (j *jarContainer) Classes() []string {
	out := make([]string, 0, len(j.entries))
	for name := range j.entries {
		out = append(out, name)
	}
	for _, df := range j.dexes {
		out = append(out, dexNames(df)...)
	}
	return out
}

func (j *jarContainer) Load(qualified string) (*model.ClassDescription, error) {
	if f, ok := j.entries[qualified]; ok {
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		cls, err := j.reader.ReadClass(data)
		if err != nil {
			return nil, err
		}
		cls.Source = j.path
		return cls, nil
	}
	for _, df := range j.dexes {
		if i, ok := df.Lookup(qualified); ok {
			cls, err := df.ReadClass(i)
			if err != nil {
				return nil, err
			}
			cls.Source = j.path
			return cls, nil
		}
	}
	return nil, ErrNotFound
}

func (j *jarContainer) Hash() (uint64, error) { return hashFile(j.path) }
func (j *jarContainer) Close() error          { return j.rc.Close() }

type dexContainer struct {
	path string
	file *dex.File
}

func openDex(p string) (*dexContainer, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	f, err := dex.Open(data)
	if err != nil {
		return nil, err
	}
	return &dexContainer{path: p, file: f}, nil
}

func dexNames(f *dex.File) []string {
	out := make([]string, 0, f.NumClasses())
	for i := 0; i < f.NumClasses(); i++ {
		// Open already resolved every class name.
		name, _ := f.ClassName(i)
		out = append(out, name)
	}
	return out
}

func (d *dexContainer) Path() string      { return d.path }
func (d *dexContainer) Classes() []string { return dexNames(d.file) }

func (d *dexContainer) Load(qualified string) (*model.ClassDescription, error) {
	i, ok := d.file.Lookup(qualified)
	if !ok {
		return nil, ErrNotFound
	}
	cls, err := d.file.ReadClass(i)
	if err != nil {
		return nil, err
	}
	cls.Source = d.path
	return cls, nil
}

func (d *dexContainer) Hash() (uint64, error) { return hashFile(d.path) }
func (d *dexContainer) Close() error          { return nil }

// dirContainer is a build output directory. Each class's Source is its own
// .class file so that file events can target single classes.
type dirContainer struct {
	root   string
	mu     sync.RWMutex
	files  map[string]string // binary name -> file path
	reader classfile.Reader
}

func openDir(root string) (*dirContainer, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "**/*.class")
	if err != nil {
		return nil, err
	}
	d := &dirContainer{root: root, files: make(map[string]string, len(matches))}
	for _, m := range matches {
		d.files[internalToBinary(m)] = filepath.Join(root, filepath.FromSlash(m))
	}
	return d, nil
}

func (d *dirContainer) Path() string { return d.root }

func (d *dirContainer) Classes() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.files))
	for name := range d.files {
		out = append(out, name)
	}
	return out
}

func (d *dirContainer) Load(qualified string) (*model.ClassDescription, error) {
	d.mu.RLock()
	p, ok := d.files[qualified]
	d.mu.RUnlock()
	if !ok {
		// The file may have appeared after the scan.
		p = filepath.Join(d.root, filepath.FromSlash(binaryToInternal(qualified))+".class")
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	cls, err := d.reader.ReadClass(data)
	if err != nil {
		return nil, err
	}
	cls.Source = p
	d.mu.Lock()
	d.files[qualified] = p
	d.mu.Unlock()
	return cls, nil
}

// Hash of a directory covers its file list, not contents.
func (d *dirContainer) Hash() (uint64, error) {
	names := d.Classes()
	sort.Strings(names)
	h := xxhash.New()
	for _, name := range names {
		h.WriteString(name)
		h.Write([]byte{0})
	}
	return h.Sum64(), nil
}

func (d *dirContainer) Close() error { return nil }

// owns reports whether file lies under the directory.
func (d *dirContainer) owns(file string) bool {
	rel, err := filepath.Rel(d.root, file)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// classFileContainer is a single loose .class file.
type classFileContainer struct {
	path   string
	name   string
	reader classfile.Reader
}

func openClassFile(p string) (*classFileContainer, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	cls, err := classfile.Reader{}.ReadClass(data)
	if err != nil {
		return nil, err
	}
	return &classFileContainer{path: p, name: cls.QualifiedName}, nil
}

func (c *classFileContainer) Path() string      { return c.path }
func (c *classFileContainer) Classes() []string { return []string{c.name} }

func (c *classFileContainer) Load(qualified string) (*model.ClassDescription, error) {
	if qualified != c.name {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}
	cls, err := c.reader.ReadClass(data)
	if err != nil {
		return nil, err
	}
	cls.Source = c.path
	return cls, nil
}

func (c *classFileContainer) Hash() (uint64, error) { return hashFile(c.path) }
func (c *classFileContainer) Close() error          { return nil }
