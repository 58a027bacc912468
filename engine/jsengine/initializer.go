package jsengine

import (
	"sync"
	"sync/atomic"
)

// Initializer runs per-engine-family setup exactly once. A failed attempt is
// not remembered, so the next caller retries.
type Initializer struct {
	name string
	fn   func() error
	done atomic.Bool
	mu   sync.Mutex
}

func NewInitializer(name string, fn func() error) *Initializer {
	return &Initializer{name: name, fn: fn}
}

func (i *Initializer) Name() string {
	return i.name
}

// EnsureInitialized is safe for concurrent first use.
func (i *Initializer) EnsureInitialized() error {
	if i.done.Load() {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.done.Load() {
		return nil
	}
	if i.fn != nil {
		if err := i.fn(); err != nil {
			return err
		}
	}
	i.done.Store(true)
	return nil
}

func (i *Initializer) Initialized() bool {
	return i.done.Load()
}
