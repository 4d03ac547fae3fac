package playback

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Controller owns the playback session: exactly one live engine handle,
// toggle semantics on play, restart-from-start on resume. Engine failures
// are logged and swallowed; a preview that fails to start never interrupts
// the UI flow, and state is left as it was.
type Controller struct {
	mu          sync.Mutex
	engine      Engine
	hasFinished bool
	onStatus    func(playing bool)
}

// NewController wires a controller to its engine. onStatus receives every
// play-state transition the controller emits; it may be nil.
func NewController(engine Engine, onStatus func(playing bool)) *Controller {
	c := &Controller{
		engine:   engine,
		onStatus: onStatus,
	}
	engine.OnFinished(c.handleFinished)
	return c
}

// PlayPreview drives the play button. With a loaded handle it toggles:
// playing pauses, paused restarts from position zero. Otherwise it releases
// any stale handle, binds url and starts playback.
func (c *Controller) PlayPreview(url string) {
	if url == "" {
		log.Warn().Msg("Play requested without a preview URL, ignoring")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A stream that ran to its natural end keeps its handle until the next
	// play request; drop it here so the track starts over cleanly.
	if c.hasFinished {
		c.hasFinished = false
		if err := c.engine.Release(); err != nil {
			log.Error().Err(err).Msg("Failed to release finished handle")
			return
		}
	}

	if c.engine.IsLoaded() {
		if c.engine.IsPlaying() {
			if err := c.engine.Pause(); err != nil {
				log.Error().Err(err).Msg("Pause failed")
				return
			}
			c.emit(false)
			return
		}
		// Restart-from-start policy: resuming a paused preview rewinds.
		if err := c.engine.PlayFromStart(); err != nil {
			log.Error().Err(err).Msg("Restart failed")
			return
		}
		c.emit(true)
		return
	}

	if err := c.engine.Release(); err != nil {
		log.Error().Err(err).Msg("Failed to release stale handle")
	}
	if err := c.engine.Load(url); err != nil {
		log.Error().Err(err).Str("url", url).Msg("Failed to load preview")
		return
	}
	if err := c.engine.Play(); err != nil {
		log.Error().Err(err).Str("url", url).Msg("Failed to start preview")
		return
	}
	c.emit(true)
}

// StopPreview pauses a playing session. The handle is kept loaded so a
// following play is cheap; a full unload only happens when the next
// PlayPreview replaces it.
func (c *Controller) StopPreview() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.engine.IsLoaded() || !c.engine.IsPlaying() {
		return
	}
	if err := c.engine.Pause(); err != nil {
		log.Error().Err(err).Msg("Stop failed")
		return
	}
	c.emit(false)
}

// SeekTo moves the loaded stream to seconds, keeping the audio position in
// step with a scrubbed progress bar. Without a handle it is a no-op.
func (c *Controller) SeekTo(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.engine.IsLoaded() {
		return
	}
	if err := c.engine.Seek(seconds); err != nil {
		log.Error().Err(err).Int("seconds", seconds).Msg("Seek failed")
	}
}

// Restart rewinds the loaded stream to position zero without touching the
// play-state, used when the progress clock wraps while playback continues.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.engine.IsLoaded() {
		return
	}
	if err := c.engine.PlayFromStart(); err != nil {
		log.Error().Err(err).Msg("Restart failed")
	}
}

// handleFinished records natural end-of-stream. The status emitted is
// paused, not stopped; the distinction lives in the private finished flag
// consumed by the next PlayPreview.
func (c *Controller) handleFinished() {
	c.mu.Lock()
	c.hasFinished = true
	c.mu.Unlock()

	log.Debug().Msg("Preview reached end of stream")
	if c.onStatus != nil {
		c.onStatus(false)
	}
}

// emit publishes a play-state transition. Must hold c.mu.
func (c *Controller) emit(playing bool) {
	if c.onStatus != nil {
		c.onStatus(playing)
	}
}
