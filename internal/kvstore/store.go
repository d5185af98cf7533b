package kvstore

import (
	"context"
	"sync"
)

// Keys for the records the assistant persists. Each value is an opaque
// serialized blob owned by exactly one component.
const (
	KeySettings     = "assistant/settings"
	KeyPosition     = "assistant/position"
	KeyTourMuted    = "tour/muted"
	KeyTourComplete = "tour/completed/" // + role
)

// Store is the persistent key-value collaborator. Implementations must
// tolerate concurrent use from multiple goroutines.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Memory is an in-process Store used in tests and as a degraded fallback
// when the SQLite file cannot be opened.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Memory) Set(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	s.mu.Lock()
	s.m[key] = cp
	s.mu.Unlock()
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

func (s *Memory) Ping(context.Context) error { return nil }
func (s *Memory) Close() error               { return nil }
