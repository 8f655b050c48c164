package storage

import (
	"github.com/pkg/errors"
)

// MemoryBackend is a map-backed Backend for tests and ephemeral runs.
// FailWrites can be flipped on to exercise the best-effort persistence path
// (mutations must survive in memory even when the write fails).
type MemoryBackend struct {
	data       map[string][]byte
	FailWrites bool
}

func NewMemory() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Set(key string, value []byte) error {
	if m.FailWrites {
		return errors.New("storage quota exceeded")
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}
