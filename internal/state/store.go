package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

// Store persists the single ApplyState generation at a fixed path. It is a
// single-writer external resource: callers pass an explicit Store handle,
// never a package-level global.
type Store struct {
	path string
}

// NewStore returns a Store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (st *Store) Path() string {
	return st.path
}

// Save writes the state atomically via a temp file and rename, so a crash
// never leaves a truncated state file. A second apply overwrites the
// previous generation; there is no history.
func (st *Store) Save(s *ApplyState) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, st.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads the persisted state. Returns (nil, nil) when no state exists
// and a StateCorruptError when the file exists but cannot be parsed; callers
// must never conflate the two.
func (st *Store) Load() (*ApplyState, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var s ApplyState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, pterrors.NewStateCorruptError(st.path, err)
	}
	return &s, nil
}

// Delete removes the state file. Missing file is not an error.
func (st *Store) Delete() error {
	if err := os.Remove(st.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
