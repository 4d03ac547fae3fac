package session

import "sync"

// Container holds the current snapshot and serializes all reductions.
// Intents dispatched from any goroutine are applied in lock-acquisition
// order, giving the single-logical-writer semantics the rest of the engine
// relies on. The container is instance-scoped: it is created at the
// application root and passed by reference, never held as a package global.
type Container struct {
	mu        sync.Mutex
	current   *Snapshot
	observers []func(*Snapshot)
}

// NewContainer creates a container seeded with the given initial snapshot,
// or an empty one when nil.
func NewContainer(initial *Snapshot) *Container {
	if initial == nil {
		initial = &Snapshot{}
	}
	return &Container{current: initial}
}

// Dispatch reduces the current snapshot with the intent and returns the
// result. Observers fire only when the snapshot actually changed; a no-op
// intent keeps the previous snapshot reference and stays silent.
func (c *Container) Dispatch(intent Intent) *Snapshot {
	c.mu.Lock()
	next := Reduce(c.current, intent)
	changed := next != c.current
	c.current = next
	observers := c.observers
	c.mu.Unlock()

	if changed {
		for _, fn := range observers {
			fn(next)
		}
	}
	return next
}

// Snapshot returns the current snapshot.
func (c *Container) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers an observer invoked after every effective state
// change. Observers must not block; they run on the dispatching goroutine.
func (c *Container) Subscribe(fn func(*Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Copy-on-write so a dispatch iterating the previous slice never races
	// a registration.
	observers := make([]func(*Snapshot), 0, len(c.observers)+1)
	observers = append(observers, c.observers...)
	c.observers = append(observers, fn)
}
