// Package socketio provides the Socket.io server for client communication.
package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/lmarujo/chime-preview-backend/internal/domain/library"
	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
	"github.com/lmarujo/chime-preview-backend/internal/domain/playback"
	"github.com/lmarujo/chime-preview-backend/internal/domain/progress"
	"github.com/lmarujo/chime-preview-backend/internal/domain/search"
	"github.com/lmarujo/chime-preview-backend/internal/domain/session"
)

// Recommender fetches genre-seeded track recommendations from the catalog.
type Recommender interface {
	Recommendations(ctx context.Context, genre, token string) ([]music.Track, error)
}

// ArtistDetail is the resolved artist profile destined for the snapshot.
// Nil counters mean the lookup did not resolve.
type ArtistDetail struct {
	Bio        string
	ImageURL   string
	Followers  *int
	Popularity *int
}

// ArtistResolver assembles best-effort artist detail for the selected song.
type ArtistResolver interface {
	ResolveArtist(ctx context.Context, artistName, token string) ArtistDetail
}

// Server handles Socket.io connections and events.
type Server struct {
	io          *socket.Server
	container   *session.Container
	store       *library.Store
	controller  *playback.Controller
	pipeline    *search.Pipeline
	clock       *progress.Clock
	recommender Recommender
	resolver    ArtistResolver

	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// NewServer creates a new Socket.io server.
func NewServer(container *session.Container, store *library.Store, controller *playback.Controller, pipeline *search.Pipeline, clock *progress.Clock, recommender Recommender, resolver ArtistResolver) (*Server, error) {
	// Configure Socket.io server options
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:          server,
		container:   container,
		store:       store,
		controller:  controller,
		pipeline:    pipeline,
		clock:       clock,
		recommender: recommender,
		resolver:    resolver,
		clients:     make(map[string]*socket.Socket),
	}

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
		}()

		// Handle disconnect
		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			s.pushState(client)
		})

		// Playback events
		client.On("play", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("play")

			track, ok := decodeTrack(args)
			if !ok {
				// Bare play toggles the current selection.
				if current := s.container.Snapshot().SelectedSong; current != nil {
					s.controller.PlayPreview(current.PreviewURL)
				}
				return
			}

			if !track.Playable() {
				log.Warn().Str("track", track.Name).Msg("Rejecting non-playable track")
				s.pushError(client, "playback", "this track has no preview")
				return
			}

			s.container.Dispatch(session.SetSelectedSong{Track: &track})
			s.controller.PlayPreview(track.PreviewURL)
		})

		client.On("stop", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("stop")
			s.controller.StopPreview()
		})

		client.On("seek", func(args ...any) {
			if len(args) > 0 {
				if pos, ok := args[0].(float64); ok {
					log.Debug().Str("id", clientID).Float64("pos", pos).Msg("seek")
					s.clock.SetElapsed(int(pos))
					s.controller.SeekTo(int(pos))
				}
			}
		})

		// Discovery events
		client.On("search", func(args ...any) {
			query := stringField(args, "query")
			log.Debug().Str("id", clientID).Str("query", query).Msg("search")
			s.pipeline.Query(query)
		})

		client.On("setGenre", func(args ...any) {
			genre := stringField(args, "genre")
			log.Debug().Str("id", clientID).Str("genre", genre).Msg("setGenre")

			s.container.Dispatch(session.SetSelectedGenre{Genre: genre})
			go s.fetchRecommendations(genre)
		})

		client.On("selectSong", func(args ...any) {
			track, ok := decodeTrack(args)
			if !ok {
				return
			}
			log.Debug().Str("id", clientID).Str("track", track.Name).Msg("selectSong")

			s.container.Dispatch(session.SetSelectedSong{Track: &track})
			s.clock.Reset(0)

			if artist := track.PrimaryArtist(); artist != "" {
				go s.fetchArtistDetail(artist)
			}
		})

		client.On("selectPlaylist", func(args ...any) {
			name := stringField(args, "name")
			log.Debug().Str("id", clientID).Str("playlist", name).Msg("selectPlaylist")
			s.container.Dispatch(session.SetSelectedPlaylist{Name: name})
		})

		// Library events
		client.On("createPlaylist", func(args ...any) {
			name := stringField(args, "name")
			log.Debug().Str("id", clientID).Str("playlist", name).Msg("createPlaylist")

			if _, err := s.store.Create(name); err != nil {
				s.pushLibraryError(client, err)
			}
		})

		client.On("addToPlaylists", func(args ...any) {
			track, ok := decodeTrack(args)
			if !ok {
				return
			}
			names := stringSliceField(args, "playlists")
			log.Debug().Str("id", clientID).Str("track", track.Name).Strs("playlists", names).Msg("addToPlaylists")

			if err := s.store.AddSongToPlaylists(track, names); err != nil {
				s.pushLibraryError(client, err)
			}
		})

		client.On("removeSong", func(args ...any) {
			playlist := stringField(args, "playlist")
			song := stringField(args, "song")
			log.Debug().Str("id", clientID).Str("playlist", playlist).Str("song", song).Msg("removeSong")

			if err := s.store.RemoveSong(playlist, song); err != nil {
				s.pushLibraryError(client, err)
			}
		})

		client.On("togglePin", func(args ...any) {
			name := stringField(args, "name")
			log.Debug().Str("id", clientID).Str("playlist", name).Msg("togglePin")

			if err := s.store.TogglePin(name); err != nil {
				s.pushLibraryError(client, err)
			}
		})

		client.On("deletePlaylist", func(args ...any) {
			name := stringField(args, "name")
			log.Debug().Str("id", clientID).Str("playlist", name).Msg("deletePlaylist")

			if err := s.store.Delete(name); err != nil {
				s.pushLibraryError(client, err)
			}
		})

		client.On("setSortOption", func(args ...any) {
			option := music.SortOption(stringField(args, "option"))
			log.Debug().Str("id", clientID).Str("option", string(option)).Msg("setSortOption")

			if !option.Valid() {
				s.pushError(client, "library", "unknown sort option")
				return
			}
			s.container.Dispatch(session.SetSortOption{Option: option})
		})
	})
}

// fetchRecommendations loads genre recommendations into the snapshot. An
// upstream failure lands in the snapshot as a retryable error status.
func (s *Server) fetchRecommendations(genre string) {
	token := s.container.Snapshot().AccessToken

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracks, err := s.recommender.Recommendations(ctx, genre, token)
	if err != nil {
		log.Error().Err(err).Str("genre", genre).Msg("Recommendations fetch failed")
		s.container.Dispatch(session.SetRecommendationsError{Message: "could not load recommendations"})
		return
	}
	s.container.Dispatch(session.SetRecommendations{Tracks: tracks})
}

// fetchArtistDetail loads the best-effort artist profile into the snapshot.
func (s *Server) fetchArtistDetail(artistName string) {
	token := s.container.Snapshot().AccessToken

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	detail := s.resolver.ResolveArtist(ctx, artistName, token)
	s.container.Dispatch(session.SetArtistBio{Bio: detail.Bio})
	s.container.Dispatch(session.SetArtistImage{URL: detail.ImageURL})
	s.container.Dispatch(session.SetArtistStats{Followers: detail.Followers, Popularity: detail.Popularity})
}

// pushState sends the current snapshot to a client.
func (s *Server) pushState(client *socket.Socket) {
	client.Emit("pushState", s.container.Snapshot())
}

// pushError sends a user-visible error message to a client.
func (s *Server) pushError(client *socket.Socket, scope, message string) {
	client.Emit("pushError", map[string]any{
		"scope":   scope,
		"message": message,
	})
}

// pushLibraryError maps store failures to user-visible messages.
func (s *Server) pushLibraryError(client *socket.Socket, err error) {
	var validation *library.ValidationError
	if errors.As(err, &validation) {
		s.pushError(client, "library", validation.Reason)
		return
	}
	if errors.Is(err, library.ErrPlaylistNotFound) {
		s.pushError(client, "library", "playlist not found")
		return
	}
	log.Error().Err(err).Msg("Library operation failed")
	s.pushError(client, "library", "could not save your library")
}

// BroadcastState sends the snapshot to all connected clients.
func (s *Server) BroadcastState() {
	snapshot := s.container.Snapshot()

	s.io.Emit("pushState", snapshot)

	if log.Debug().Enabled() {
		data, _ := json.Marshal(snapshot)
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().RawJSON("state", data).Int("clients", clientCount).Msg("Broadcast state")
	}
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}

// decodeTrack extracts a track payload from the first event argument.
func decodeTrack(args []any) (music.Track, bool) {
	if len(args) == 0 {
		return music.Track{}, false
	}
	m, ok := args[0].(map[string]interface{})
	if !ok {
		return music.Track{}, false
	}
	payload, ok := m["track"]
	if !ok {
		payload = m
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return music.Track{}, false
	}
	var track music.Track
	if err := json.Unmarshal(raw, &track); err != nil || track.ID == "" {
		return music.Track{}, false
	}
	return track, true
}

// stringField reads a string field from the first event argument.
func stringField(args []any, key string) string {
	if len(args) == 0 {
		return ""
	}
	if m, ok := args[0].(map[string]interface{}); ok {
		if v, ok := m[key].(string); ok {
			return v
		}
	}
	return ""
}

// stringSliceField reads a string list field from the first event argument.
func stringSliceField(args []any, key string) []string {
	if len(args) == 0 {
		return nil
	}
	m, ok := args[0].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
