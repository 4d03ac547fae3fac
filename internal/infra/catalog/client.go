// Package catalog talks to the streaming catalog web API for track
// recommendations, search and artist metadata.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
)

const (
	// DefaultBaseURL is the catalog API base URL.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultAuthURL is the token endpoint for the client credentials grant.
	DefaultAuthURL = "https://accounts.spotify.com/api/token"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// DefaultSearchLimit is the page size for search requests.
	DefaultSearchLimit = 50
)

// UpstreamError reports a failed catalog API call.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client is a catalog web API client. A zero credential pair is allowed, the
// token request will then fail with an UpstreamError.
type Client struct {
	baseURL      string
	authURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithAuthURL sets a custom token endpoint.
func WithAuthURL(url string) Option {
	return func(c *Client) {
		c.authURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a catalog client using the given API credentials.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		authURL:      DefaultAuthURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type imagePayload struct {
	URL string `json:"url"`
}

type artistPayload struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Images    []imagePayload `json:"images"`
	Followers struct {
		Total int `json:"total"`
	} `json:"followers"`
	Popularity int `json:"popularity"`
}

type albumPayload struct {
	Name   string         `json:"name"`
	Images []imagePayload `json:"images"`
}

type trackPayload struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []artistPayload `json:"artists"`
	Album      albumPayload    `json:"album"`
	PreviewURL string          `json:"preview_url"`
}

type recommendationsResponse struct {
	Tracks []trackPayload `json:"tracks"`
}

type searchResponse struct {
	Tracks struct {
		Items []trackPayload `json:"items"`
	} `json:"tracks"`
	Artists struct {
		Items []artistPayload `json:"items"`
	} `json:"artists"`
}

// Token performs the client credentials grant and returns a bearer token.
func (c *Client) Token(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &UpstreamError{Op: "token", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Op: "token", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Op: "token", Status: resp.StatusCode}
	}

	var tok tokenResponse
	if err := decodeBody(resp.Body, &tok); err != nil {
		return "", &UpstreamError{Op: "token", Err: err}
	}
	if tok.AccessToken == "" {
		return "", &UpstreamError{Op: "token", Err: fmt.Errorf("empty access token in response")}
	}
	return tok.AccessToken, nil
}

// Recommendations fetches tracks seeded by genre, keeping only tracks that
// carry a preview clip.
func (c *Client) Recommendations(ctx context.Context, genre, token string) ([]music.Track, error) {
	endpoint := fmt.Sprintf("%s/recommendations?seed_genres=%s&limit=%d",
		c.baseURL, url.QueryEscape(strings.ToLower(genre)), DefaultSearchLimit)

	var payload recommendationsResponse
	if err := c.getJSON(ctx, "recommendations", endpoint, token, &payload); err != nil {
		return nil, err
	}

	tracks := playableTracks(payload.Tracks)
	log.Debug().
		Str("genre", genre).
		Int("fetched", len(payload.Tracks)).
		Int("playable", len(tracks)).
		Msg("Fetched recommendations")
	return tracks, nil
}

// Search runs a track search for query, keeping only tracks that carry a
// preview clip.
func (c *Client) Search(ctx context.Context, query, token string) ([]music.Track, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&type=track&limit=%d",
		c.baseURL, url.QueryEscape(query), DefaultSearchLimit)

	var payload searchResponse
	if err := c.getJSON(ctx, "search", endpoint, token, &payload); err != nil {
		return nil, err
	}

	tracks := playableTracks(payload.Tracks.Items)
	log.Debug().
		Str("query", query).
		Int("fetched", len(payload.Tracks.Items)).
		Int("playable", len(tracks)).
		Msg("Searched catalog")
	return tracks, nil
}

// ArtistID resolves an artist name to its catalog ID, or "" when the artist
// is unknown.
func (c *Client) ArtistID(ctx context.Context, artistName, token string) (string, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&type=artist&limit=1",
		c.baseURL, url.QueryEscape(artistName))

	var payload searchResponse
	if err := c.getJSON(ctx, "artist search", endpoint, token, &payload); err != nil {
		return "", err
	}

	if len(payload.Artists.Items) == 0 {
		return "", nil
	}
	return payload.Artists.Items[0].ID, nil
}

// ArtistImage returns the largest portrait for the artist. Best effort, an
// empty string means no image was found or the lookup failed.
func (c *Client) ArtistImage(ctx context.Context, artistName, token string) string {
	endpoint := fmt.Sprintf("%s/search?q=%s&type=artist&limit=1",
		c.baseURL, url.QueryEscape(artistName))

	var payload searchResponse
	if err := c.getJSON(ctx, "artist image", endpoint, token, &payload); err != nil {
		log.Debug().Err(err).Str("artist", artistName).Msg("Artist image lookup failed")
		return ""
	}

	if len(payload.Artists.Items) == 0 || len(payload.Artists.Items[0].Images) == 0 {
		return ""
	}
	return payload.Artists.Items[0].Images[0].URL
}

// FollowerCount returns the artist's follower total, or nil when the lookup
// fails or the artist is unknown.
func (c *Client) FollowerCount(ctx context.Context, artistID, token string) (*int, error) {
	artist, err := c.artistByID(ctx, artistID, token)
	if err != nil {
		return nil, err
	}
	return &artist.Followers.Total, nil
}

// Popularity returns the artist's popularity score, or nil when the lookup
// fails or the artist is unknown.
func (c *Client) Popularity(ctx context.Context, artistID, token string) (*int, error) {
	artist, err := c.artistByID(ctx, artistID, token)
	if err != nil {
		return nil, err
	}
	return &artist.Popularity, nil
}

func (c *Client) artistByID(ctx context.Context, artistID, token string) (*artistPayload, error) {
	endpoint := fmt.Sprintf("%s/artists/%s", c.baseURL, url.PathEscape(artistID))

	var payload artistPayload
	if err := c.getJSON(ctx, "artist lookup", endpoint, token, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, op, endpoint, token string, out any) error {
	if token == "" {
		return &UpstreamError{Op: op, Err: fmt.Errorf("missing access token")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Op: op, Status: resp.StatusCode}
	}

	if err := decodeBody(resp.Body, out); err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	return nil
}

func decodeBody(r io.Reader, out any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// playableTracks maps wire payloads to domain tracks, dropping entries
// without a preview clip.
func playableTracks(payloads []trackPayload) []music.Track {
	tracks := make([]music.Track, 0, len(payloads))
	for _, p := range payloads {
		if p.PreviewURL == "" {
			continue
		}
		tracks = append(tracks, toTrack(p))
	}
	return tracks
}

func toTrack(p trackPayload) music.Track {
	artists := make([]music.Artist, 0, len(p.Artists))
	for _, a := range p.Artists {
		artists = append(artists, music.Artist{Name: a.Name})
	}
	images := make([]music.Image, 0, len(p.Album.Images))
	for _, img := range p.Album.Images {
		images = append(images, music.Image{URL: img.URL})
	}
	return music.Track{
		ID:      p.ID,
		Name:    p.Name,
		Artists: artists,
		Album: music.Album{
			Name:   p.Album.Name,
			Images: images,
		},
		PreviewURL: p.PreviewURL,
	}
}
