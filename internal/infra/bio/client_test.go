package bio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestArtistBioReturnsSummary(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("method"); got != "artist.getinfo" {
			t.Errorf("unexpected method %q", got)
		}
		if got := r.URL.Query().Get("artist"); got != "Miles Davis" {
			t.Errorf("unexpected artist %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"artist":{"bio":{"summary":"Miles Dewey Davis III was an American trumpeter. <a href=\"https://last.fm/music/Miles+Davis\">Read more</a>"}}}`))
	}))
	defer api.Close()

	client := NewClient("key", WithBaseURL(api.URL))

	got := client.ArtistBio(context.Background(), "Miles Davis")
	want := "Miles Dewey Davis III was an American trumpeter."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestArtistBioFallsBackOnServerError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer api.Close()

	client := NewClient("key", WithBaseURL(api.URL))

	if got := client.ArtistBio(context.Background(), "Anyone"); got != FallbackBio {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestArtistBioFallsBackOnEmptySummary(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"artist":{"bio":{"summary":"  "}}}`))
	}))
	defer api.Close()

	client := NewClient("key", WithBaseURL(api.URL))

	if got := client.ArtistBio(context.Background(), "Unknown"); got != FallbackBio {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestArtistBioFallsBackOnMalformedBody(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer api.Close()

	client := NewClient("key", WithBaseURL(api.URL))

	if got := client.ArtistBio(context.Background(), "Anyone"); got != FallbackBio {
		t.Errorf("got %q, want fallback", got)
	}
}
