package checkpoint

import (
	"fmt"
	"sync"
)

// Memory is an in-process store for tests and single-shot runs where
// resume does not matter.
type Memory struct {
	sync.Map
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(connector, endpoint string) (string, error) {
	val, ok := m.Load(connector + ":" + endpoint)
	if !ok {
		return "", nil
	}
	return val.(string), nil
}

func (m *Memory) Set(connector, endpoint, cursor string) error {
	if cursor == "" {
		return fmt.Errorf("cursor should not be empty")
	}
	m.Store(connector+":"+endpoint, cursor)
	return nil
}

func (m *Memory) Clear(connector, endpoint string) error {
	m.Delete(connector + ":" + endpoint)
	return nil
}
