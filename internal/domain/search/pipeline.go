// Package search runs the debounced catalog query pipeline. Keystrokes are
// collapsed into one remote request per quiescence window and responses that
// arrive out of order are discarded, so the results delivered always match
// the latest query.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
)

// DefaultWindow is the quiescence period after the last query change before
// the catalog request is issued.
const DefaultWindow = 300 * time.Millisecond

// MinQueryLength is the shortest query dispatched to the catalog. Anything
// shorter clears the current results instead.
const MinQueryLength = 2

// Catalog is the remote search surface the pipeline queries.
type Catalog interface {
	Search(ctx context.Context, query, token string) ([]music.Track, error)
}

// Error wraps a failed catalog request so callers can distinguish search
// failures from other snapshot errors.
type Error struct {
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("search %q: %v", e.Query, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Pipeline debounces queries and serializes result delivery. Responses for
// superseded queries never reach the callbacks.
type Pipeline struct {
	catalog   Catalog
	window    time.Duration
	onResults func(query string, tracks []music.Track)
	onError   func(err *Error)

	mu      sync.Mutex
	seq     uint64
	query   string
	token   string
	timer   *time.Timer
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithWindow overrides the debounce window, used by tests.
func WithWindow(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.window = d
		}
	}
}

// NewPipeline builds a pipeline over catalog. onResults receives the tracks
// for the query they answer; onError receives catalog failures for queries
// that were still current when the failure arrived.
func NewPipeline(catalog Catalog, onResults func(query string, tracks []music.Track), onError func(err *Error), opts ...PipelineOption) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		catalog:   catalog,
		window:    DefaultWindow,
		onResults: onResults,
		onError:   onError,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetToken updates the bearer token attached to catalog requests.
func (p *Pipeline) SetToken(token string) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
}

// Query records a new query string. Each call supersedes the previous one:
// the debounce timer restarts and any in-flight response becomes stale.
// Queries below the minimum length clear the results immediately.
func (p *Pipeline) Query(query string) {
	p.mu.Lock()

	if p.stopped {
		p.mu.Unlock()
		return
	}

	p.seq++
	p.query = query

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}

	if len(query) < MinQueryLength {
		p.mu.Unlock()
		if p.onResults != nil {
			p.onResults(query, nil)
		}
		return
	}

	seq := p.seq
	p.timer = time.AfterFunc(p.window, func() { p.dispatch(seq) })
	p.mu.Unlock()
}

// Stop cancels the debounce timer and any in-flight catalog request.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.cancel()
}

// dispatch runs the catalog request for the query captured at seq. The
// sequence number is checked again after the response so a result for a
// superseded query is dropped on the floor.
func (p *Pipeline) dispatch(seq uint64) {
	p.mu.Lock()
	if p.stopped || seq != p.seq {
		p.mu.Unlock()
		return
	}
	query := p.query
	token := p.token
	p.mu.Unlock()

	tracks, err := p.catalog.Search(p.ctx, query, token)

	p.mu.Lock()
	stale := p.stopped || seq != p.seq
	p.mu.Unlock()
	if stale {
		log.Debug().Str("query", query).Msg("Discarding stale search response")
		return
	}

	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Catalog search failed")
		if p.onError != nil {
			p.onError(&Error{Query: query, Err: err})
		}
		return
	}
	if p.onResults != nil {
		p.onResults(query, tracks)
	}
}
