// Package bio fetches short artist biographies from a Last.fm style API.
// Lookups are best effort, callers always get a usable string back.
package bio

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
)

const (
	// DefaultBaseURL is the Last.fm API root.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 15 * time.Second

	// FallbackBio is returned whenever a biography cannot be fetched.
	FallbackBio = "No biography available for this artist."
)

// Client is a Last.fm artist info client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a biography client using the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type artistInfoResponse struct {
	Artist struct {
		Bio struct {
			Summary string `json:"summary"`
		} `json:"bio"`
	} `json:"artist"`
}

// ArtistBio returns a short biography for artistName. On any failure the
// fallback placeholder is returned; this call never reports an error.
func (c *Client) ArtistBio(ctx context.Context, artistName string) string {
	endpoint := fmt.Sprintf("%s/?method=artist.getinfo&artist=%s&api_key=%s&format=json",
		c.baseURL, url.QueryEscape(artistName), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Debug().Err(err).Str("artist", artistName).Msg("Bio request build failed")
		return FallbackBio
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("artist", artistName).Msg("Bio request failed")
		return FallbackBio
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Str("artist", artistName).Msg("Bio lookup rejected")
		return FallbackBio
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug().Err(err).Str("artist", artistName).Msg("Bio response read failed")
		return FallbackBio
	}

	var info artistInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		log.Debug().Err(err).Str("artist", artistName).Msg("Bio response parse failed")
		return FallbackBio
	}

	summary := stripMarkup(info.Artist.Bio.Summary)
	if summary == "" {
		return FallbackBio
	}
	return summary
}

// stripMarkup drops the trailing "Read more" anchor Last.fm appends to every
// summary and trims whitespace.
func stripMarkup(s string) string {
	if idx := strings.Index(s, "<a href="); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
