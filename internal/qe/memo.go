package qe

import (
	"sync"

	"github.com/arithlab/presburger/ast"
)

// memo caches per-system elimination results. Formula nodes are immutable
// and shared, so returning the cached value directly is safe.
type memo struct {
	mu      sync.RWMutex
	entries map[string]ast.Formula
}

func newMemo() *memo {
	return &memo{entries: make(map[string]ast.Formula)}
}

func (m *memo) get(key string) (ast.Formula, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.entries[key]
	return f, ok
}

func (m *memo) set(key string, f ast.Formula) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return
	}
	m.entries[key] = f
}

func (m *memo) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
