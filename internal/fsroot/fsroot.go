package fsroot

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Root resolves sysfs/procfs style paths against a base directory. Production
// code uses the real filesystem root; tests point it at a temp directory
// populated with fake device files.
type Root struct {
	base string
}

// System returns a Root anchored at "/".
func System() Root {
	return Root{base: "/"}
}

// New returns a Root anchored at the given directory.
func New(base string) Root {
	return Root{base: base}
}

// Path resolves a path relative to this root. A leading slash on the
// relative path is ignored so recorded absolute paths resolve correctly.
func (r Root) Path(relative string) string {
	return filepath.Join(r.base, strings.TrimPrefix(relative, "/"))
}

// Base returns the root directory.
func (r Root) Base() string {
	return r.base
}

// Read reads a file under the root, trimming surrounding whitespace.
// Kernel interfaces terminate values with a newline that callers never want.
func (r Root) Read(relative string) (string, error) {
	data, err := os.ReadFile(r.Path(relative))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadRaw reads a file under the root without trimming. Used where exact
// formatting must round-trip, like boot entry files.
func (r Root) ReadRaw(relative string) (string, error) {
	data, err := os.ReadFile(r.Path(relative))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadOptional reads a file under the root, returning ok=false when the file
// does not exist or is unreadable for permission reasons.
func (r Root) ReadOptional(relative string) (string, bool, error) {
	value, err := r.Read(relative)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Write writes a value to a file under the root. Sysfs attributes are not
// regular files, so this is a plain write, never a create.
func (r Root) Write(relative, value string) error {
	return os.WriteFile(r.Path(relative), []byte(value), 0o644)
}

// WriteFileAtomic writes content via a temp file and rename so a crash never
// leaves a truncated file. Only used for regular config/state files; sysfs
// attributes cannot be renamed over.
func (r Root) WriteFileAtomic(relative string, content []byte, perm os.FileMode) error {
	path := r.Path(relative)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// ListDir returns the sorted entry names of a directory under the root.
func (r Root) ListDir(relative string) ([]string, error) {
	entries, err := os.ReadDir(r.Path(relative))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a file under the root. Removing a file that does not
// exist is not an error.
func (r Root) Remove(relative string) error {
	err := os.Remove(r.Path(relative))
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Exists reports whether a path exists under the root.
func (r Root) Exists(relative string) bool {
	_, err := os.Stat(r.Path(relative))
	return err == nil
}
