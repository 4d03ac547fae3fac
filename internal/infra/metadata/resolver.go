// Package metadata assembles artist detail from the catalog and biography
// collaborators. Every lookup is best effort, failures degrade to fallbacks
// and never reach the caller as errors.
package metadata

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// BioProvider supplies artist biographies.
type BioProvider interface {
	ArtistBio(ctx context.Context, artistName string) string
}

// CatalogProvider supplies artist lookups from the streaming catalog.
type CatalogProvider interface {
	ArtistID(ctx context.Context, artistName, token string) (string, error)
	ArtistImage(ctx context.Context, artistName, token string) string
	FollowerCount(ctx context.Context, artistID, token string) (*int, error)
	Popularity(ctx context.Context, artistID, token string) (*int, error)
}

// Detail is the assembled artist profile. Bio is always populated, the
// remaining fields carry zero values when their lookups failed.
type Detail struct {
	Bio        string
	ImageURL   string
	Followers  *int
	Popularity *int
}

// Resolver fans out the per-artist lookups and collects the results.
type Resolver struct {
	bio     BioProvider
	catalog CatalogProvider
}

// NewResolver wires a resolver to its collaborators.
func NewResolver(bio BioProvider, catalog CatalogProvider) *Resolver {
	return &Resolver{bio: bio, catalog: catalog}
}

// Resolve gathers the artist profile for artistName. The bio and image
// lookups run concurrently; follower and popularity counts need the artist
// ID first and are fetched after it resolves.
func (r *Resolver) Resolve(ctx context.Context, artistName, token string) Detail {
	var detail Detail
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		detail.Bio = r.bio.ArtistBio(ctx, artistName)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		detail.ImageURL = r.catalog.ArtistImage(ctx, artistName, token)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		artistID, err := r.catalog.ArtistID(ctx, artistName, token)
		if err != nil || artistID == "" {
			if err != nil {
				log.Debug().Err(err).Str("artist", artistName).Msg("Artist ID lookup failed")
			}
			return
		}

		if followers, err := r.catalog.FollowerCount(ctx, artistID, token); err == nil {
			detail.Followers = followers
		} else {
			log.Debug().Err(err).Str("artist", artistName).Msg("Follower lookup failed")
		}
		if popularity, err := r.catalog.Popularity(ctx, artistID, token); err == nil {
			detail.Popularity = popularity
		} else {
			log.Debug().Err(err).Str("artist", artistName).Msg("Popularity lookup failed")
		}
	}()

	wg.Wait()
	return detail
}
