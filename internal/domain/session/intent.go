package session

import (
	"github.com/lmarujo/chime-preview-backend/internal/domain/library"
	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
)

// Intent describes a requested state transition. The set of intents is
// closed: the sealed marker method keeps dispatch exhaustive at compile
// time rather than stringly-typed.
type Intent interface {
	isIntent()
}

// SetSelectedGenre selects the genre driving recommendations.
type SetSelectedGenre struct{ Genre string }

// SetRecommendations replaces the recommendation list and clears any
// previous recommendations error.
type SetRecommendations struct{ Tracks []music.Track }

// SetRecommendationsError records a retryable recommendations failure.
type SetRecommendationsError struct{ Message string }

// SetSearchResults replaces the search result list and clears any previous
// search error.
type SetSearchResults struct{ Tracks []music.Track }

// SetSearchError records a retryable search failure. Prior results are
// left untouched.
type SetSearchError struct{ Message string }

// ClearSearch drops results and error, e.g. when the query is erased.
type ClearSearch struct{}

// SetSelectedSong selects the track the player surface is focused on.
type SetSelectedSong struct{ Track *music.Track }

// SetSelectedPlaylist selects the playlist the detail surface is showing.
type SetSelectedPlaylist struct{ Name string }

// SetPlaylists replaces the playlist projection after a store mutation.
type SetPlaylists struct{ Playlists []library.Playlist }

// SetPlayState records whether the playback session is running.
type SetPlayState struct{ Playing bool }

// SetSortOption selects the song ordering for playlist views.
type SetSortOption struct{ Option music.SortOption }

// SetAccessToken stores the catalog access token.
type SetAccessToken struct{ Token string }

// SetArtistBio stores the biography of the selected song's artist.
type SetArtistBio struct{ Bio string }

// SetArtistImage stores the portrait URL of the selected song's artist.
type SetArtistImage struct{ URL string }

// SetArtistStats stores the follower and popularity counts of the selected
// song's artist. Nil fields mean the lookup did not resolve.
type SetArtistStats struct {
	Followers  *int
	Popularity *int
}

func (SetSelectedGenre) isIntent()        {}
func (SetRecommendations) isIntent()      {}
func (SetRecommendationsError) isIntent() {}
func (SetSearchResults) isIntent()        {}
func (SetSearchError) isIntent()          {}
func (ClearSearch) isIntent()             {}
func (SetSelectedSong) isIntent()         {}
func (SetSelectedPlaylist) isIntent()     {}
func (SetPlaylists) isIntent()            {}
func (SetPlayState) isIntent()            {}
func (SetSortOption) isIntent()           {}
func (SetAccessToken) isIntent()          {}
func (SetArtistBio) isIntent()            {}
func (SetArtistImage) isIntent()          {}
func (SetArtistStats) isIntent()          {}
