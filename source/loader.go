package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidName is returned for names that are absolute or leave the root.
var ErrInvalidName = errors.New("invalid document name")

// DirLoader loads documents from files below a root directory.
type DirLoader struct {
	root string
}

// Dir returns a loader for files below root.
func Dir(root string) *DirLoader {
	return &DirLoader{root: root}
}

// Root returns the directory documents are loaded from.
func (d *DirLoader) Root() string {
	return d.root
}

// Load reads the named file.
func (d *DirLoader) Load(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// Path returns the file path a name resolves to.
func (d *DirLoader) Path(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

// FSLoader loads documents from an fs.FS.
type FSLoader struct {
	fsys fs.FS
}

// FS returns a loader backed by fsys.
func FS(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// Load reads the named file from the file system.
func (l *FSLoader) Load(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(l.fsys, clean)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// Map is an in-memory loader keyed by document name.
type Map map[string]string

// Load returns the document stored under name.
func (m Map) Load(name string) (string, error) {
	text, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return text, nil
}

// Names returns the stored document names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cleanName normalizes a slash-separated name and rejects names outside
// the root.
func cleanName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	slashed := strings.ReplaceAll(name, `\`, "/")
	if path.IsAbs(slashed) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s is absolute", ErrInvalidName, name)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s leaves the root", ErrInvalidName, name)
	}
	return clean, nil
}
