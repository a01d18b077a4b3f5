package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// DefaultFilePath is where the file store keeps cursors unless told
// otherwise.
const DefaultFilePath = ".connector-checkpoints.json"

// File persists cursors as a small JSON object on disk. It is the default
// store and needs no external service.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File {
	if path == "" {
		path = DefaultFilePath
	}
	return &File{path: path}
}

func (f *File) Get(connector, endpoint string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.read()
	if err != nil {
		return "", err
	}
	return state[key(connector, endpoint)], nil
}

func (f *File) Set(connector, endpoint, cursor string) error {
	if cursor == "" {
		return fmt.Errorf("cursor should not be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.read()
	if err != nil {
		return err
	}
	state[key(connector, endpoint)] = cursor
	return f.write(state)
}

func (f *File) Clear(connector, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.read()
	if err != nil {
		return err
	}
	delete(state, key(connector, endpoint))
	if len(state) == 0 {
		err := os.Remove(f.path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return f.write(state)
}

func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	state := map[string]string{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt checkpoint file %s: %w", f.path, err)
	}
	return state, nil
}

func (f *File) write(state map[string]string) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}

func key(connector, endpoint string) string {
	return connector + ":" + endpoint
}
