package socketio

import (
	"context"
	"testing"

	"github.com/lmarujo/chime-preview-backend/internal/domain/library"
	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
	"github.com/lmarujo/chime-preview-backend/internal/domain/playback"
	"github.com/lmarujo/chime-preview-backend/internal/domain/progress"
	"github.com/lmarujo/chime-preview-backend/internal/domain/search"
	"github.com/lmarujo/chime-preview-backend/internal/domain/session"
)

type idleEngine struct{}

func (idleEngine) Load(string) error    { return nil }
func (idleEngine) Play() error          { return nil }
func (idleEngine) PlayFromStart() error { return nil }
func (idleEngine) Pause() error         { return nil }
func (idleEngine) Seek(int) error       { return nil }
func (idleEngine) Release() error       { return nil }
func (idleEngine) IsLoaded() bool       { return false }
func (idleEngine) IsPlaying() bool      { return false }
func (idleEngine) OnFinished(func())    {}

type idleKV struct{}

func (idleKV) Get(string) ([]byte, error) { return nil, nil }
func (idleKV) Set(string, []byte) error   { return nil }

type idleCatalog struct{}

func (idleCatalog) Search(context.Context, string, string) ([]music.Track, error) {
	return nil, nil
}

type idleRecommender struct{}

func (idleRecommender) Recommendations(context.Context, string, string) ([]music.Track, error) {
	return nil, nil
}

type profileResolver struct {
	detail ArtistDetail
	artist string
}

func (r *profileResolver) ResolveArtist(_ context.Context, artistName, _ string) ArtistDetail {
	r.artist = artistName
	return r.detail
}

func TestFetchArtistDetailFillsSnapshotProfile(t *testing.T) {
	followers := 2145000
	popularity := 87
	resolver := &profileResolver{detail: ArtistDetail{
		Bio:        "Trumpeter and bandleader.",
		ImageURL:   "https://img.example/miles",
		Followers:  &followers,
		Popularity: &popularity,
	}}

	container := session.NewContainer(nil)
	store := library.NewStore(idleKV{}, func([]library.Playlist) {})
	controller := playback.NewController(idleEngine{}, nil)
	pipeline := search.NewPipeline(idleCatalog{}, nil, nil)
	t.Cleanup(pipeline.Stop)
	clock := progress.NewClock()
	t.Cleanup(clock.Stop)

	server, err := NewServer(container, store, controller, pipeline, clock, idleRecommender{}, resolver)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	server.fetchArtistDetail("Miles Davis")

	if resolver.artist != "Miles Davis" {
		t.Errorf("resolver got artist %q", resolver.artist)
	}

	snapshot := container.Snapshot()
	if snapshot.ArtistBio != "Trumpeter and bandleader." {
		t.Errorf("bio not applied, got %q", snapshot.ArtistBio)
	}
	if snapshot.ArtistImage != "https://img.example/miles" {
		t.Errorf("image not applied, got %q", snapshot.ArtistImage)
	}
	if snapshot.ArtistFollowers == nil || *snapshot.ArtistFollowers != followers {
		t.Errorf("followers not applied, got %v", snapshot.ArtistFollowers)
	}
	if snapshot.ArtistPopularity == nil || *snapshot.ArtistPopularity != popularity {
		t.Errorf("popularity not applied, got %v", snapshot.ArtistPopularity)
	}
}

func TestFetchArtistDetailClearsMissingStats(t *testing.T) {
	followers := 10
	popularity := 20

	container := session.NewContainer(session.Reduce(session.Reduce(&session.Snapshot{},
		session.SetArtistStats{Followers: &followers, Popularity: &popularity}), session.SetArtistBio{Bio: "old"}))
	store := library.NewStore(idleKV{}, func([]library.Playlist) {})
	controller := playback.NewController(idleEngine{}, nil)
	pipeline := search.NewPipeline(idleCatalog{}, nil, nil)
	t.Cleanup(pipeline.Stop)
	clock := progress.NewClock()
	t.Cleanup(clock.Stop)

	server, err := NewServer(container, store, controller, pipeline, clock, idleRecommender{}, &profileResolver{})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	server.fetchArtistDetail("Unknown Artist")

	snapshot := container.Snapshot()
	if snapshot.ArtistFollowers != nil || snapshot.ArtistPopularity != nil {
		t.Error("stats from the previous artist must be cleared when lookups fail")
	}
}
