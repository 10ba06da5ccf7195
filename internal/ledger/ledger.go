// Package ledger records which images a render run has claimed, so that
// concurrent runs sharing an output directory do not draw the same window twice.
package ledger

import (
	"context"
	"sync"
)

// Ledger hands out exclusive claims on keys.
type Ledger interface {
	// Claim returns true if the caller now owns key.
	Claim(ctx context.Context, key string) (bool, error)
	// Release gives up a claim so another run may retry the key.
	Release(ctx context.Context, key string) error
	Close() error
}

// Memory is an in-process Ledger.
type Memory struct {
	mu     sync.Mutex
	claims map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{claims: make(map[string]struct{})}
}

func (m *Memory) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[key]; ok {
		return false, nil
	}
	m.claims[key] = struct{}{}
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.claims, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

// Key builds the claim key for one image.
func Key(prefix, signature, file string) string {
	return prefix + ":" + signature + ":" + file
}
