// Package progress keeps the preview position counter that backs the seek
// bar. The counter advances one unit per tick while playback is reported as
// active, saturates at the preview cap and announces completion exactly once
// per run.
package progress

import (
	"sync"
	"time"
)

// DefaultPreviewDuration is the length of a catalog preview clip in whole
// seconds. Positions are clamped to this cap.
const DefaultPreviewDuration = 28

// Clock tracks elapsed preview time. All methods are safe for concurrent
// use.
type Clock struct {
	mu       sync.Mutex
	elapsed  int
	cap      int
	playing  bool
	done     bool
	interval time.Duration
	timer    *time.Timer
	stopped  bool

	onTick     func(elapsed int)
	onComplete func()
	onRestart  func()
}

// ClockOption customizes a Clock.
type ClockOption func(*Clock)

// WithCap overrides the preview duration cap.
func WithCap(cap int) ClockOption {
	return func(c *Clock) {
		if cap > 0 {
			c.cap = cap
		}
	}
}

// WithInterval overrides the tick interval, used by tests to run the clock
// faster than real time.
func WithInterval(d time.Duration) ClockOption {
	return func(c *Clock) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithTickHandler registers a callback invoked with the new position after
// every advance.
func WithTickHandler(fn func(elapsed int)) ClockOption {
	return func(c *Clock) { c.onTick = fn }
}

// WithCompletionHandler registers a callback invoked once when the counter
// reaches the cap while stopped.
func WithCompletionHandler(fn func()) ClockOption {
	return func(c *Clock) { c.onComplete = fn }
}

// WithRestartHandler registers a callback invoked when the counter wraps
// from the cap back to zero during continuous playback.
func WithRestartHandler(fn func()) ClockOption {
	return func(c *Clock) { c.onRestart = fn }
}

// NewClock builds a stopped clock at position zero.
func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{
		cap:      DefaultPreviewDuration,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetPlaying starts or pauses the counter. Starting from the cap wraps back
// to zero so a replayed preview measures from the beginning.
func (c *Clock) SetPlaying(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || playing == c.playing {
		return
	}
	c.playing = playing
	if playing {
		if c.elapsed >= c.cap {
			c.elapsed = 0
		}
		c.done = false
		c.scheduleLocked()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// SetElapsed moves the counter to an absolute position, clamped to [0, cap].
// Used when the listener scrubs the seek bar.
func (c *Clock) SetElapsed(elapsed int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > c.cap {
		elapsed = c.cap
	}
	c.elapsed = elapsed
	if elapsed < c.cap {
		c.done = false
	}
}

// Reset rewinds the counter to offset and clears the completion latch,
// called when the selected song changes.
func (c *Clock) Reset(offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	if offset > c.cap {
		offset = c.cap
	}
	c.elapsed = offset
	c.done = false
}

// Elapsed reports the current position.
func (c *Clock) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Cap reports the preview duration cap.
func (c *Clock) Cap() int {
	return c.cap
}

// Stop halts the clock permanently. Safe to call more than once.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.playing = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// scheduleLocked arms the next tick. Must hold c.mu.
func (c *Clock) scheduleLocked() {
	c.timer = time.AfterFunc(c.interval, c.tick)
}

func (c *Clock) tick() {
	c.mu.Lock()

	if c.stopped || !c.playing {
		c.mu.Unlock()
		return
	}

	c.elapsed++
	elapsed := c.elapsed

	var fireComplete, fireRestart bool
	if c.elapsed >= c.cap {
		c.elapsed = c.cap
		elapsed = c.cap
		if !c.done {
			c.done = true
			fireComplete = true
		}
		// Continuous playback wraps the counter, the next run starts a new
		// completion cycle.
		c.elapsed = 0
		c.done = false
		fireRestart = true
	}

	c.scheduleLocked()
	onTick, onComplete, onRestart := c.onTick, c.onComplete, c.onRestart
	c.mu.Unlock()

	if onTick != nil {
		onTick(elapsed)
	}
	if fireComplete && onComplete != nil {
		onComplete()
	}
	if fireRestart && onRestart != nil {
		onRestart()
	}
}
