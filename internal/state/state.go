// Package state persists the CLI's small amount of local state: the current
// application mode and the named backend remotes. Everything lives in one
// TOML file, state.toml, under the state directory.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the state file inside the state directory.
const FileName = "state.toml"

// State is the decoded content of the state file.
type State struct {
	AppMode string            `toml:"app_mode,omitempty"`
	Active  string            `toml:"active,omitempty"`
	Remotes map[string]Remote `toml:"remotes"`
}

// Remote is a named backend profile.
type Remote struct {
	URL         string `toml:"url"`
	Token       string `toml:"token,omitempty"`
	NATSURL     string `toml:"nats_url,omitempty"`
	Description string `toml:"description,omitempty"`
}

// ActiveRemote returns the remote selected with "remote use", if any.
func (s State) ActiveRemote() (Remote, bool) {
	if s.Active == "" {
		return Remote{}, false
	}
	r, ok := s.Remotes[s.Active]
	return r, ok
}

// RemoteNames returns the remote names in sorted order.
func (s State) RemoteNames() []string {
	names := make([]string, 0, len(s.Remotes))
	for name := range s.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultDir returns ~/.local/state/casos.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "casos"), nil
}

// FileStore reads and writes the state file. It never caches: every call
// goes to disk, so a mode written by one process is seen by the next
// request of another. Safe for concurrent use.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore returns a store for dir/state.toml. The directory is created
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, FileName)}
}

// Path returns the location of the state file.
func (s *FileStore) Path() string { return s.path }

// Load reads the state file. A missing file yields an empty State.
func (s *FileStore) Load() (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileStore) load() (State, error) {
	var st State
	if _, err := toml.DecodeFile(s.path, &st); err != nil {
		if os.IsNotExist(err) {
			return State{Remotes: map[string]Remote{}}, nil
		}
		return State{}, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if st.Remotes == nil {
		st.Remotes = map[string]Remote{}
	}
	return st, nil
}

// Save replaces the state file with st.
func (s *FileStore) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(st)
}

func (s *FileStore) save(st State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(st); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Update applies fn to the current state and saves the result. Nothing is
// written when fn returns an error.
func (s *FileStore) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&st); err != nil {
		return err
	}
	return s.save(st)
}

// Mode returns the stored application mode, or "" when none is stored or the
// file cannot be read. It implements client.ModeProvider.
func (s *FileStore) Mode() string {
	st, err := s.Load()
	if err != nil {
		return ""
	}
	return st.AppMode
}

// SetMode stores mode. An empty mode clears the stored value.
func (s *FileStore) SetMode(mode string) error {
	return s.Update(func(st *State) error {
		st.AppMode = mode
		return nil
	})
}
