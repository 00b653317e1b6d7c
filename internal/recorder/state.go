package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DeviceRef identifies a smart cube that has been connected before.
type DeviceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AppState is what cubesim remembers between runs.
type AppState struct {
	DBPath        string     `json:"db_path,omitempty"`
	LastSessionID string     `json:"last_session_id,omitempty"`
	LastDevice    *DeviceRef `json:"last_device,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StateFile keeps AppState in a JSON file. Every change is written through
// to disk before the setter returns. Safe for concurrent use.
type StateFile struct {
	path string

	mu    sync.Mutex
	state AppState
}

// DefaultStatePath returns ~/.cubesim/state.json, creating the directory.
func DefaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".cubesim")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(dir, "state.json"), nil
}

// NewStateFile loads the state at path. A missing file yields an empty state.
func NewStateFile(path string) (*StateFile, error) {
	sf := &StateFile{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return sf, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := json.Unmarshal(data, &sf.state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return sf, nil
}

// NewDefaultStateFile loads the state at DefaultStatePath.
func NewDefaultStateFile() (*StateFile, error) {
	path, err := DefaultStatePath()
	if err != nil {
		return nil, err
	}
	return NewStateFile(path)
}

// Snapshot returns a copy of the current state.
func (sf *StateFile) Snapshot() AppState {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	s := sf.state
	if s.LastDevice != nil {
		d := *s.LastDevice
		s.LastDevice = &d
	}
	return s
}

// LastDevice returns the cube connected most recently, if any.
func (sf *StateFile) LastDevice() (DeviceRef, bool) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.state.LastDevice == nil {
		return DeviceRef{}, false
	}
	return *sf.state.LastDevice, true
}

// SetDBPath records the database the sessions live in.
func (sf *StateFile) SetDBPath(path string) error {
	return sf.update(func(s *AppState) { s.DBPath = path })
}

// SetLastSession records the most recent session ID.
func (sf *StateFile) SetLastSession(sessionID string) error {
	return sf.update(func(s *AppState) { s.LastSessionID = sessionID })
}

// SetLastDevice records the cube that was just connected.
func (sf *StateFile) SetLastDevice(d DeviceRef) error {
	return sf.update(func(s *AppState) { s.LastDevice = &d })
}

// update applies fn and writes the result. On a write error the in-memory
// state keeps the change; the next successful write persists it.
func (sf *StateFile) update(fn func(*AppState)) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	fn(&sf.state)
	sf.state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(sf.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return writeFileAtomic(sf.path, data)
}

// writeFileAtomic writes data to a temporary file beside path and renames it
// over path, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
