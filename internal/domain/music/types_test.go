package music

import "testing"

func TestTrackPlayable(t *testing.T) {
	if (Track{}).Playable() {
		t.Error("track without a preview must not be playable")
	}
	if !(Track{PreviewURL: "https://cdn.example/1"}).Playable() {
		t.Error("track with a preview must be playable")
	}
}

func TestTrackAccessors(t *testing.T) {
	track := Track{
		Artists: []Artist{{Name: "First"}, {Name: "Second"}},
		Album:   Album{Images: []Image{{URL: "https://img.example/a"}, {URL: "https://img.example/b"}}},
	}

	if got := track.PrimaryArtist(); got != "First" {
		t.Errorf("primary artist %q", got)
	}
	if got := track.ArtworkURL(); got != "https://img.example/a" {
		t.Errorf("artwork %q", got)
	}

	empty := Track{}
	if empty.PrimaryArtist() != "" || empty.ArtworkURL() != "" {
		t.Error("empty track accessors should return empty strings")
	}
}

func TestSortOptionValid(t *testing.T) {
	for _, o := range []SortOption{SortByName, SortByArtist, SortByDateAdded} {
		if !o.Valid() {
			t.Errorf("%s should be valid", o)
		}
	}
	if SortOption("shuffle").Valid() {
		t.Error("unknown option should be invalid")
	}
	if SortOption("").Valid() {
		t.Error("empty option should be invalid")
	}
}
