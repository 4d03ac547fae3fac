package library

import (
	"time"

	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
)

// StorageKey is the single record under which the full playlist list is
// persisted in the key-value layer.
const StorageKey = "playlists"

// Song is a track held by a playlist, stamped with the moment it was added
// so playlists can be ordered by date added.
type Song struct {
	music.Track
	AddedAt time.Time `json:"addedAt"`
}

// Playlist is a user-created, ordered collection of songs.
//
// Name is the lookup key the UI operates on; ID is a stable surrogate
// assigned at creation so a future keying change does not lose data.
// Names are not enforced unique.
type Playlist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Songs  []Song `json:"songs"`
	Pinned bool   `json:"pinned"`
}

// KV is the persistence contract the store runs on: an async key-value
// layer holding serialized records. Get returns (nil, nil) when the key has
// never been written.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}
