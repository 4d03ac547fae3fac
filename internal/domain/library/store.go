// Package library provides the persistent playlist store.
package library

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
)

// Store owns playlist persistence. Every mutation is a read-modify-write of
// the full playlist list against the last successfully read copy, persisted
// as one record, then projected to the observer. Writers within a process
// serialize on the store mutex; writers in different processes are
// last-writer-wins at the granularity of the whole list.
type Store struct {
	mu        sync.Mutex
	kv        KV
	playlists []Playlist
	project   func([]Playlist)
	now       func() time.Time
	newID     func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the timestamp source for added songs.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the surrogate ID source for new playlists.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// NewStore creates a playlist store over the given persistence layer.
// project is invoked with the pinned-first projection after every durable
// write, and on the optimistic create-feedback path; it may be nil.
func NewStore(kv KV, project func([]Playlist), opts ...StoreOption) *Store {
	s := &Store{
		kv:      kv,
		project: project,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted playlist list and projects it. A record that
// fails to parse is treated as an empty library: logged, never fatal.
// Load must be called at startup; any projection held by a previous process
// is not authoritative.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(StorageKey)
	if err != nil {
		return &StorageError{Op: "read", Err: err}
	}

	playlists := []Playlist{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &playlists); err != nil {
			log.Warn().Err(err).Msg("Malformed playlists record, starting with empty library")
			playlists = []Playlist{}
		}
	}

	s.playlists = playlists
	log.Info().Int("count", len(playlists)).Msg("Playlists loaded")
	s.projectLocked(s.playlists)
	return nil
}

// Playlists returns the pinned-first projection of the current list.
func (s *Store) Playlists() []Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return projectPinnedFirst(s.playlists)
}

// Get returns the first playlist with the given name.
func (s *Store) Get(name string) (Playlist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pl := range s.playlists {
		if pl.Name == name {
			return clonePlaylist(pl), true
		}
	}
	return Playlist{}, false
}

// Create appends a new empty, unpinned playlist. The name must be non-empty
// after trimming. The projection is updated immediately for render feedback
// even if the durable write then fails; the next Load reconciles it.
func (s *Store) Create(name string) (Playlist, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Playlist{}, &ValidationError{Reason: "playlist name is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pl := Playlist{
		ID:    s.newID(),
		Name:  trimmed,
		Songs: []Song{},
	}

	updated := append(clonePlaylists(s.playlists), pl)

	// Immediate feedback for the creating UI; reconciled on next read if
	// the write below fails.
	s.projectLocked(updated)

	if err := s.persistLocked(updated); err != nil {
		return Playlist{}, err
	}

	log.Info().Str("name", trimmed).Str("id", pl.ID).Msg("Playlist created")
	return pl, nil
}

// AddSongToPlaylists appends the track to every named playlist that does
// not already hold a song with the same identity. Names with no matching
// playlist are skipped silently.
func (s *Store) AddSongToPlaylists(track music.Track, names []string) error {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := clonePlaylists(s.playlists)
	added := 0
	for i := range updated {
		if !wanted[updated[i].Name] {
			continue
		}
		if containsTrack(updated[i].Songs, track.ID) {
			continue
		}
		updated[i].Songs = append(updated[i].Songs, Song{Track: track, AddedAt: s.now()})
		added++
	}

	if added == 0 {
		return nil
	}

	if err := s.persistLocked(updated); err != nil {
		return err
	}

	log.Info().Str("track", track.Name).Int("playlists", added).Msg("Song added to playlists")
	s.projectLocked(s.playlists)
	return nil
}

// RemoveSong removes every song whose display name equals songName from the
// named playlist. Matching is by name, not ID; two songs sharing a display
// name are both removed.
func (s *Store) RemoveSong(playlistName, songName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := clonePlaylists(s.playlists)
	found := false
	for i := range updated {
		if updated[i].Name != playlistName {
			continue
		}
		found = true
		kept := updated[i].Songs[:0:0]
		for _, song := range updated[i].Songs {
			if song.Name != songName {
				kept = append(kept, song)
			}
		}
		updated[i].Songs = kept
	}
	if !found {
		return ErrPlaylistNotFound
	}

	if err := s.persistLocked(updated); err != nil {
		return err
	}

	log.Info().Str("playlist", playlistName).Str("song", songName).Msg("Song removed")
	s.projectLocked(s.playlists)
	return nil
}

// TogglePin flips the pinned flag of the named playlist. The projection
// afterward lists pinned playlists first, preserving relative order within
// each group.
func (s *Store) TogglePin(playlistName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := clonePlaylists(s.playlists)
	found := false
	for i := range updated {
		if updated[i].Name == playlistName {
			updated[i].Pinned = !updated[i].Pinned
			found = true
			break
		}
	}
	if !found {
		return ErrPlaylistNotFound
	}

	if err := s.persistLocked(updated); err != nil {
		return err
	}

	log.Info().Str("playlist", playlistName).Msg("Playlist pin toggled")
	s.projectLocked(s.playlists)
	return nil
}

// Delete removes the named playlist. Irreversible; the store keeps no undo
// history. Confirmation is the UI's responsibility.
func (s *Store) Delete(playlistName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.playlists[:0:0]
	for _, pl := range s.playlists {
		if pl.Name != playlistName {
			updated = append(updated, clonePlaylist(pl))
		}
	}
	if len(updated) == len(s.playlists) {
		return ErrPlaylistNotFound
	}

	if err := s.persistLocked(updated); err != nil {
		return err
	}

	log.Info().Str("playlist", playlistName).Msg("Playlist deleted")
	s.projectLocked(s.playlists)
	return nil
}

// SortedSongs returns the named playlist's songs in the requested order.
// An unknown or empty option returns the stored order.
func (s *Store) SortedSongs(playlistName string, option music.SortOption) ([]Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var songs []Song
	found := false
	for _, pl := range s.playlists {
		if pl.Name == playlistName {
			songs = append([]Song(nil), pl.Songs...)
			found = true
			break
		}
	}
	if !found {
		return nil, ErrPlaylistNotFound
	}

	switch option {
	case music.SortByName:
		sort.SliceStable(songs, func(i, j int) bool {
			return strings.ToLower(songs[i].Name) < strings.ToLower(songs[j].Name)
		})
	case music.SortByArtist:
		sort.SliceStable(songs, func(i, j int) bool {
			return strings.ToLower(songs[i].PrimaryArtist()) < strings.ToLower(songs[j].PrimaryArtist())
		})
	case music.SortByDateAdded:
		sort.SliceStable(songs, func(i, j int) bool {
			return songs[i].AddedAt.After(songs[j].AddedAt)
		})
	}

	return songs, nil
}

// persistLocked writes the full list and, on success, adopts it as the
// in-memory copy. Must hold s.mu.
func (s *Store) persistLocked(playlists []Playlist) error {
	data, err := json.Marshal(playlists)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := s.kv.Set(StorageKey, data); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	s.playlists = playlists
	return nil
}

// projectLocked publishes the pinned-first view. Must hold s.mu.
func (s *Store) projectLocked(playlists []Playlist) {
	if s.project != nil {
		s.project(projectPinnedFirst(playlists))
	}
}

// projectPinnedFirst returns a stable partition: pinned playlists before
// unpinned ones, original relative order preserved within each group.
func projectPinnedFirst(playlists []Playlist) []Playlist {
	out := make([]Playlist, 0, len(playlists))
	for _, pl := range playlists {
		if pl.Pinned {
			out = append(out, clonePlaylist(pl))
		}
	}
	for _, pl := range playlists {
		if !pl.Pinned {
			out = append(out, clonePlaylist(pl))
		}
	}
	return out
}

func containsTrack(songs []Song, id string) bool {
	for _, song := range songs {
		if song.ID == id {
			return true
		}
	}
	return false
}

func clonePlaylist(pl Playlist) Playlist {
	out := pl
	out.Songs = append([]Song(nil), pl.Songs...)
	return out
}

func clonePlaylists(playlists []Playlist) []Playlist {
	out := make([]Playlist, len(playlists))
	for i, pl := range playlists {
		out[i] = clonePlaylist(pl)
	}
	return out
}
