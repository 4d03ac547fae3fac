package mpd

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Engine adapts the MPD client to the preview playback contract: one queue
// entry at a time, play always from the start of the clip. End-of-stream is
// detected through the MPD player subsystem watcher, a play to stop
// transition that the engine did not initiate itself.
type Engine struct {
	client *Client

	mu         sync.Mutex
	loaded     bool
	playing    bool
	releasing  bool
	onFinished func()

	done chan struct{}
}

// NewEngine wires an engine to an MPD client and starts the end-of-stream
// watcher.
func NewEngine(client *Client) (*Engine, error) {
	e := &Engine{
		client: client,
		done:   make(chan struct{}),
	}

	events, err := client.Watch("player")
	if err != nil {
		return nil, err
	}
	go e.watch(events)

	return e, nil
}

// Load replaces the queue with the single preview at url.
func (e *Engine) Load(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releasing = true
	if err := e.client.Clear(); err != nil {
		e.releasing = false
		return err
	}
	e.releasing = false

	if err := e.client.Add(url); err != nil {
		return err
	}
	e.loaded = true
	e.playing = false
	return nil
}

// Play starts the loaded preview from the beginning.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playLocked()
}

// PlayFromStart rewinds and plays. For a single-entry queue this is the same
// MPD command as Play, position zero of entry zero.
func (e *Engine) PlayFromStart() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playLocked()
}

func (e *Engine) playLocked() error {
	if err := e.client.Play(0); err != nil {
		return err
	}
	e.playing = true
	return nil
}

// Seek moves the loaded preview to the given offset in seconds.
func (e *Engine) Seek(seconds int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return nil
	}
	return e.client.Seek(seconds)
}

// Pause pauses playback, keeping the queue entry.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.Pause(true); err != nil {
		return err
	}
	e.playing = false
	return nil
}

// Release drops the queue entry and forgets the handle.
func (e *Engine) Release() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return nil
	}

	e.releasing = true
	err := e.client.Clear()
	e.releasing = false
	if err != nil {
		return err
	}
	e.loaded = false
	e.playing = false
	return nil
}

// IsLoaded reports whether a preview is bound.
func (e *Engine) IsLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// IsPlaying reports whether the bound preview is playing.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// OnFinished registers the natural end-of-stream callback. Only one callback
// is held, later registrations replace earlier ones.
func (e *Engine) OnFinished(fn func()) {
	e.mu.Lock()
	e.onFinished = fn
	e.mu.Unlock()
}

// Stop shuts down the watcher goroutine.
func (e *Engine) Stop() {
	close(e.done)
}

// watch consumes player subsystem events and reports natural end-of-stream.
func (e *Engine) watch(events <-chan string) {
	for {
		select {
		case <-e.done:
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			e.checkFinished()
		}
	}
}

func (e *Engine) checkFinished() {
	status, err := e.client.Status()
	if err != nil {
		log.Warn().Err(err).Msg("Status check after player event failed")
		return
	}

	e.mu.Lock()
	finished := e.loaded && e.playing && !e.releasing && status["state"] == "stop"
	if finished {
		e.playing = false
	}
	fn := e.onFinished
	e.mu.Unlock()

	if finished {
		log.Debug().Msg("Preview ran to end of stream")
		if fn != nil {
			fn()
		}
	}
}
