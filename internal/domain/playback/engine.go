// Package playback mediates access to the single underlying audio engine
// handle and enforces the preview session semantics.
package playback

// Engine abstracts the audio backend. Implementations hold at most one
// loaded stream at a time; Load replaces whatever was loaded before.
type Engine interface {
	// Load binds the engine to a stream URL without starting playback.
	Load(url string) error
	// Play starts playback of the loaded stream from the beginning.
	Play() error
	// PlayFromStart restarts the loaded stream at position zero.
	PlayFromStart() error
	// Pause halts playback, keeping the stream loaded.
	Pause() error
	// Seek moves the bound stream to the given offset in seconds.
	Seek(seconds int) error
	// Release unloads the stream. Releasing an idle engine is a no-op.
	Release() error
	// IsLoaded reports whether a stream is currently bound.
	IsLoaded() bool
	// IsPlaying reports whether the bound stream is audibly playing.
	IsPlaying() bool
	// OnFinished registers the observer invoked once when the bound stream
	// reaches natural end-of-stream. Replaces any previous observer.
	OnFinished(fn func())
}
