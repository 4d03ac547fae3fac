// Package main is the entry point for the Chime preview backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lmarujo/chime-preview-backend/internal/config"
	"github.com/lmarujo/chime-preview-backend/internal/domain/library"
	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
	"github.com/lmarujo/chime-preview-backend/internal/domain/playback"
	"github.com/lmarujo/chime-preview-backend/internal/domain/progress"
	"github.com/lmarujo/chime-preview-backend/internal/domain/search"
	"github.com/lmarujo/chime-preview-backend/internal/domain/session"
	"github.com/lmarujo/chime-preview-backend/internal/infra/bio"
	"github.com/lmarujo/chime-preview-backend/internal/infra/catalog"
	"github.com/lmarujo/chime-preview-backend/internal/infra/kv"
	"github.com/lmarujo/chime-preview-backend/internal/infra/metadata"
	mpdclient "github.com/lmarujo/chime-preview-backend/internal/infra/mpd"
	"github.com/lmarujo/chime-preview-backend/internal/transport/socketio"
	"github.com/lmarujo/chime-preview-backend/internal/version"
)

// artistResolver maps the metadata detail onto the transport's profile
// shape.
type artistResolver struct {
	resolver *metadata.Resolver
}

func (a artistResolver) ResolveArtist(ctx context.Context, artistName, token string) socketio.ArtistDetail {
	detail := a.resolver.Resolve(ctx, artistName, token)
	return socketio.ArtistDetail{
		Bio:        detail.Bio,
		ImageURL:   detail.ImageURL,
		Followers:  detail.Followers,
		Popularity: detail.Popularity,
	}
}

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file (optional)")
	port := flag.String("port", "", "HTTP server port (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if *debug || cfg.Log.Level == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Print startup banner
	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Streaming Preview Engine")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", cfg.Server.Port).
		Str("mpd_host", cfg.MPD.Host).
		Int("mpd_port", cfg.MPD.Port).
		Str("storage", cfg.Storage.Path).
		Bool("catalog_configured", cfg.Catalog.ClientID != "").
		Msg("Configuration")

	// State container
	container := session.NewContainer(nil)

	// Persistent library
	records := kv.NewStore(cfg.Storage.Path)
	if err := records.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open record database")
	}
	defer records.Close()

	store := library.NewStore(records, func(playlists []library.Playlist) {
		container.Dispatch(session.SetPlaylists{Playlists: playlists})
	})
	if err := store.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load playlist library")
	}

	// Remote collaborators
	catalogClient := catalog.NewClient(cfg.Catalog.ClientID, cfg.Catalog.ClientSecret)
	bioClient := bio.NewClient(cfg.Bio.APIKey)
	resolver := metadata.NewResolver(bioClient, catalogClient)

	// Search pipeline feeding the snapshot
	pipeline := search.NewPipeline(catalogClient,
		func(query string, tracks []music.Track) {
			if len(query) < search.MinQueryLength {
				container.Dispatch(session.ClearSearch{})
				return
			}
			container.Dispatch(session.SetSearchResults{Tracks: tracks})
		},
		func(err *search.Error) {
			container.Dispatch(session.SetSearchError{Message: "search is unavailable right now"})
		},
	)
	defer pipeline.Stop()

	// Fetch the catalog token up front; a failure is survivable, search and
	// recommendations surface it as a retryable snapshot error.
	tokenCtx, cancelToken := context.WithTimeout(context.Background(), 15*time.Second)
	if token, err := catalogClient.Token(tokenCtx); err != nil {
		log.Warn().Err(err).Msg("Catalog token fetch failed, discovery will be degraded")
	} else {
		container.Dispatch(session.SetAccessToken{Token: token})
		pipeline.SetToken(token)
	}
	cancelToken()

	// Audio engine
	mpdConn := mpdclient.NewClient(cfg.MPD.Host, cfg.MPD.Port, cfg.MPD.Password)
	if err := mpdConn.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MPD")
	}
	defer mpdConn.Close()

	if err := mpdConn.Ping(); err != nil {
		log.Fatal().Err(err).Msg("MPD ping failed")
	}
	log.Info().Msg("MPD connection verified")

	engine, err := mpdclient.NewEngine(mpdConn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start audio engine")
	}
	defer engine.Stop()

	// Progress clock and playback controller, cross-wired: play-state
	// transitions drive the clock, a cap wrap during playback rewinds the
	// stream.
	var controller *playback.Controller
	clock := progress.NewClock(
		progress.WithRestartHandler(func() {
			controller.Restart()
		}),
	)
	defer clock.Stop()

	controller = playback.NewController(engine, func(playing bool) {
		container.Dispatch(session.SetPlayState{Playing: playing})
		clock.SetPlaying(playing)
	})

	// Create Socket.io server
	socketServer, err := socketio.NewServer(container, store, controller, pipeline, clock, catalogClient, artistResolver{resolver})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	// Broadcast snapshot changes, debounced so intent bursts collapse into
	// a single push.
	broadcast := socketio.NewBroadcastDebouncer(50*time.Millisecond, socketServer.BroadcastState)
	defer broadcast.Stop()
	container.Subscribe(func(*session.Snapshot) {
		broadcast.Trigger()
	})

	// Setup HTTP server
	mux := http.NewServeMux()

	// Socket.io endpoint
	mux.Handle("/socket.io/", socketServer)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := mpdConn.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","mpd":"disconnected"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","mpd":"connected"}`))
	})

	// Version endpoint
	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// Snapshot endpoint (REST fallback)
	mux.HandleFunc("/api/v1/getState", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(container.Snapshot())
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: corsMiddleware(mux),
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
}
