// Package session provides the single reactive state container shared by
// every surface of the application.
package session

import (
	"github.com/lmarujo/chime-preview-backend/internal/domain/library"
	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
)

// Snapshot is the immutable state value consumed by all UI layers at a
// point in time. Only the reducer produces new snapshots; everything else
// treats them as read-only and requests changes via intents.
//
// Playlists is a cached projection of the library store, refreshed on every
// store mutation. It may lag the store between writes and is never
// authoritative across a restart.
type Snapshot struct {
	SelectedGenre        string             `json:"selectedGenre"`
	Recommendations      []music.Track      `json:"recommendations"`
	RecommendationsError string             `json:"recommendationsError,omitempty"`
	SearchResults        []music.Track      `json:"searchResults"`
	SearchError          string             `json:"searchError,omitempty"`
	SelectedSong         *music.Track       `json:"selectedSong"`
	SelectedPlaylist     string             `json:"selectedPlaylist"`
	Playlists            []library.Playlist `json:"playlists"`
	IsPlaying            bool               `json:"isPlaying"`
	SortOption           music.SortOption   `json:"sortOption,omitempty"`
	AccessToken          string             `json:"-"`
	ArtistBio            string             `json:"artistBio"`
	ArtistImage          string             `json:"artistImage"`
	ArtistFollowers      *int               `json:"artistFollowers"`
	ArtistPopularity     *int               `json:"artistPopularity"`
}

// Reduce is the transition function from (snapshot, intent) to the next
// snapshot. It is pure, synchronous and total: no side effects, no I/O.
// A nil or unrecognized intent returns the input snapshot unchanged, same
// reference, so observers can cheaply detect no-op dispatches.
func Reduce(s *Snapshot, intent Intent) *Snapshot {
	switch v := intent.(type) {
	case SetSelectedGenre:
		next := *s
		next.SelectedGenre = v.Genre
		return &next
	case SetRecommendations:
		next := *s
		next.Recommendations = v.Tracks
		next.RecommendationsError = ""
		return &next
	case SetRecommendationsError:
		next := *s
		next.RecommendationsError = v.Message
		return &next
	case SetSearchResults:
		next := *s
		next.SearchResults = v.Tracks
		next.SearchError = ""
		return &next
	case SetSearchError:
		next := *s
		next.SearchError = v.Message
		return &next
	case ClearSearch:
		next := *s
		next.SearchResults = nil
		next.SearchError = ""
		return &next
	case SetSelectedSong:
		next := *s
		next.SelectedSong = v.Track
		return &next
	case SetSelectedPlaylist:
		next := *s
		next.SelectedPlaylist = v.Name
		return &next
	case SetPlaylists:
		next := *s
		next.Playlists = v.Playlists
		return &next
	case SetPlayState:
		next := *s
		next.IsPlaying = v.Playing
		return &next
	case SetSortOption:
		next := *s
		next.SortOption = v.Option
		return &next
	case SetAccessToken:
		next := *s
		next.AccessToken = v.Token
		return &next
	case SetArtistBio:
		next := *s
		next.ArtistBio = v.Bio
		return &next
	case SetArtistImage:
		next := *s
		next.ArtistImage = v.URL
		return &next
	case SetArtistStats:
		next := *s
		next.ArtistFollowers = v.Followers
		next.ArtistPopularity = v.Popularity
		return &next
	default:
		return s
	}
}
