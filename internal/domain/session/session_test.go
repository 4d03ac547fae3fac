package session

import (
	"testing"

	"github.com/lmarujo/chime-preview-backend/internal/domain/library"
	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
)

type unknownIntent struct{}

func (unknownIntent) isIntent() {}

func TestReduceUnknownIntentReturnsSameReference(t *testing.T) {
	s := &Snapshot{SelectedGenre: "Jazz"}

	if got := Reduce(s, unknownIntent{}); got != s {
		t.Error("unknown intent must return the input snapshot reference")
	}
	if got := Reduce(s, nil); got != s {
		t.Error("nil intent must return the input snapshot reference")
	}
}

func TestReduceNeverMutatesInput(t *testing.T) {
	s := &Snapshot{SelectedGenre: "Jazz", IsPlaying: true}

	next := Reduce(s, SetSelectedGenre{Genre: "Blues"})

	if next == s {
		t.Fatal("an effective intent must produce a fresh snapshot")
	}
	if s.SelectedGenre != "Jazz" {
		t.Error("input snapshot was mutated")
	}
	if next.SelectedGenre != "Blues" || !next.IsPlaying {
		t.Errorf("unexpected next snapshot %+v", next)
	}
}

func TestReduceResultsClearTheirErrors(t *testing.T) {
	s := &Snapshot{
		SearchError:          "search is unavailable right now",
		RecommendationsError: "could not load recommendations",
	}

	afterSearch := Reduce(s, SetSearchResults{Tracks: []music.Track{{ID: "1"}}})
	if afterSearch.SearchError != "" {
		t.Error("fresh search results must clear the search error")
	}
	if afterSearch.RecommendationsError == "" {
		t.Error("search results must not touch the recommendations error")
	}

	afterRecs := Reduce(s, SetRecommendations{Tracks: []music.Track{{ID: "2"}}})
	if afterRecs.RecommendationsError != "" {
		t.Error("fresh recommendations must clear their error")
	}
}

func TestReduceClearSearch(t *testing.T) {
	s := &Snapshot{
		SearchResults: []music.Track{{ID: "1"}},
		SearchError:   "boom",
	}

	next := Reduce(s, ClearSearch{})
	if next.SearchResults != nil || next.SearchError != "" {
		t.Errorf("clear should drop results and error, got %+v", next)
	}
}

func TestReduceFieldIntents(t *testing.T) {
	track := &music.Track{ID: "t1", Name: "Song"}
	s := &Snapshot{}

	s = Reduce(s, SetSelectedSong{Track: track})
	if s.SelectedSong != track {
		t.Error("selected song not applied")
	}

	s = Reduce(s, SetPlayState{Playing: true})
	if !s.IsPlaying {
		t.Error("play state not applied")
	}

	s = Reduce(s, SetPlaylists{Playlists: []library.Playlist{{Name: "Mix"}}})
	if len(s.Playlists) != 1 || s.Playlists[0].Name != "Mix" {
		t.Error("playlists projection not applied")
	}

	s = Reduce(s, SetSortOption{Option: music.SortByArtist})
	if s.SortOption != music.SortByArtist {
		t.Error("sort option not applied")
	}

	s = Reduce(s, SetAccessToken{Token: "tok"})
	if s.AccessToken != "tok" {
		t.Error("token not applied")
	}

	s = Reduce(s, SetArtistBio{Bio: "bio"})
	s = Reduce(s, SetArtistImage{URL: "img"})
	if s.ArtistBio != "bio" || s.ArtistImage != "img" {
		t.Error("artist detail not applied")
	}

	followers, popularity := 1200, 64
	s = Reduce(s, SetArtistStats{Followers: &followers, Popularity: &popularity})
	if s.ArtistFollowers == nil || *s.ArtistFollowers != 1200 {
		t.Error("follower count not applied")
	}
	if s.ArtistPopularity == nil || *s.ArtistPopularity != 64 {
		t.Error("popularity not applied")
	}

	s = Reduce(s, SetArtistStats{})
	if s.ArtistFollowers != nil || s.ArtistPopularity != nil {
		t.Error("empty stats must clear the previous artist's counts")
	}
}

func TestContainerDispatchNotifiesOnChangeOnly(t *testing.T) {
	c := NewContainer(nil)

	var notified int
	c.Subscribe(func(*Snapshot) { notified++ })

	c.Dispatch(SetSelectedGenre{Genre: "Jazz"})
	if notified != 1 {
		t.Fatalf("expected one notification, got %d", notified)
	}

	c.Dispatch(unknownIntent{})
	if notified != 1 {
		t.Error("a no-op dispatch must stay silent")
	}

	if c.Snapshot().SelectedGenre != "Jazz" {
		t.Error("container lost the dispatched state")
	}
}

func TestContainerObserverReceivesLatestSnapshot(t *testing.T) {
	c := NewContainer(&Snapshot{SelectedGenre: "Jazz"})

	var seen *Snapshot
	c.Subscribe(func(s *Snapshot) { seen = s })

	next := c.Dispatch(SetPlayState{Playing: true})

	if seen != next {
		t.Error("observer should receive the snapshot Dispatch returns")
	}
	if !seen.IsPlaying || seen.SelectedGenre != "Jazz" {
		t.Errorf("observer snapshot %+v", seen)
	}
}
