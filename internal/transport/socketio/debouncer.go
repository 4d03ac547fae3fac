package socketio

import (
	"sync"
	"time"
)

// BroadcastDebouncer collapses rapid snapshot changes into batched state
// broadcasts. Multiple dispatches within the debounce window result in a
// single pushState to the connected clients.
type BroadcastDebouncer struct {
	window        time.Duration
	stateCallback func()

	mu      sync.Mutex
	pending bool
	timer   *time.Timer
	stopped bool
}

// NewBroadcastDebouncer creates a debouncer with the given window duration.
// stateCallback is called when a dirty snapshot needs broadcasting.
func NewBroadcastDebouncer(window time.Duration, stateCallback func()) *BroadcastDebouncer {
	return &BroadcastDebouncer{
		window:        window,
		stateCallback: stateCallback,
	}
}

// Trigger records that the snapshot has changed. The actual broadcast is
// deferred until the debounce window elapses without further triggers.
func (d *BroadcastDebouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = true

	// Reset the timer
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush fires the callback when a broadcast is pending and resets the flag.
func (d *BroadcastDebouncer) flush() {
	d.mu.Lock()
	doState := d.pending
	d.pending = false
	d.mu.Unlock()

	if doState && d.stateCallback != nil {
		d.stateCallback()
	}
}

// Stop prevents any further callbacks from firing.
func (d *BroadcastDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
