// Package music defines the shared track and artist vocabulary used by the
// playback, library and search domains.
package music

// Image is a single artwork rendition.
type Image struct {
	URL string `json:"url"`
}

// Artist is a track credit. Only the display name is carried; richer artist
// metadata is resolved lazily through the catalog.
type Artist struct {
	Name string `json:"name"`
}

// Album holds the album context a track belongs to.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is a single catalog entry. PreviewURL is empty when the catalog has
// no streamable excerpt for the track; such tracks are non-playable.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	PreviewURL string   `json:"previewUrl"`
}

// Playable reports whether the track carries a preview stream.
func (t Track) Playable() bool {
	return t.PreviewURL != ""
}

// PrimaryArtist returns the first credited artist name, or "" when the
// credit list is empty.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// ArtworkURL returns the first album image URL, or "" when none exists.
func (t Track) ArtworkURL() string {
	if len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}

// SortOption selects the ordering applied to a playlist's songs.
type SortOption string

// Supported song sort orders.
const (
	SortByName      SortOption = "name"
	SortByArtist    SortOption = "artist"
	SortByDateAdded SortOption = "dateAdded"
)

// Valid reports whether the option is one of the supported orders.
func (o SortOption) Valid() bool {
	switch o {
	case SortByName, SortByArtist, SortByDateAdded:
		return true
	}
	return false
}
