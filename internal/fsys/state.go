package fsys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const stateFilename = "agent_state.json"

// SaveState persists an arbitrary JSON-serializable snapshot (the agent's
// resumable state) to agent_state.json under root, atomically.
func (f *FileSystem) SaveState(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("fsys: marshal state: %w", err)
	}
	return atomicWrite(filepath.Join(f.root, stateFilename), data)
}

// LoadState reads a previously saved snapshot into v. Returns an error
// wrapping os.ErrNotExist if no snapshot has been saved yet.
func (f *FileSystem) LoadState(v interface{}) error {
	data, err := os.ReadFile(filepath.Join(f.root, stateFilename))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("fsys: unmarshal state: %w", err)
	}
	return nil
}
