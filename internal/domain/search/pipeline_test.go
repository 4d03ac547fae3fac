package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lmarujo/chime-preview-backend/internal/domain/music"
)

type fakeCatalog struct {
	mu      sync.Mutex
	queries []string
	calls   int32
	results map[string][]music.Track
	err     error
	block   chan struct{}
}

func (f *fakeCatalog) Search(ctx context.Context, query, token string) ([]music.Track, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeCatalog) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func track(id, name string) music.Track {
	return music.Track{ID: id, Name: name, PreviewURL: "https://cdn.example/" + id}
}

func TestPipelineCollapsesRapidTyping(t *testing.T) {
	catalog := &fakeCatalog{results: map[string][]music.Track{
		"abc": {track("1", "Abacab")},
	}}

	done := make(chan struct{}, 1)
	var gotQuery string
	var gotTracks []music.Track
	p := NewPipeline(catalog, func(query string, tracks []music.Track) {
		gotQuery = query
		gotTracks = tracks
		done <- struct{}{}
	}, nil, WithWindow(20*time.Millisecond))
	defer p.Stop()

	p.Query("a")
	p.Query("ab")
	p.Query("abc")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("results never delivered")
	}

	if got := atomic.LoadInt32(&catalog.calls); got != 1 {
		t.Errorf("rapid typing should collapse to one request, got %d", got)
	}
	if seen := catalog.seen(); len(seen) != 1 || seen[0] != "abc" {
		t.Errorf("only the final query should be dispatched, saw %v", seen)
	}
	if gotQuery != "abc" || len(gotTracks) != 1 {
		t.Errorf("unexpected delivery %q / %d tracks", gotQuery, len(gotTracks))
	}
}

func TestPipelineShortQueryClearsImmediately(t *testing.T) {
	catalog := &fakeCatalog{}

	cleared := make(chan string, 2)
	p := NewPipeline(catalog, func(query string, tracks []music.Track) {
		if tracks != nil {
			t.Errorf("short query must clear, got %d tracks", len(tracks))
		}
		cleared <- query
	}, nil, WithWindow(10*time.Millisecond))
	defer p.Stop()

	p.Query("a")

	select {
	case q := <-cleared:
		if q != "a" {
			t.Errorf("unexpected query %q", q)
		}
	case <-time.After(time.Second):
		t.Fatal("clear never delivered")
	}

	time.Sleep(30 * time.Millisecond)
	if atomic.LoadInt32(&catalog.calls) != 0 {
		t.Error("short query must not reach the catalog")
	}
}

func TestPipelineShortQueryCancelsPendingDispatch(t *testing.T) {
	catalog := &fakeCatalog{}

	p := NewPipeline(catalog, func(string, []music.Track) {}, nil, WithWindow(20*time.Millisecond))
	defer p.Stop()

	p.Query("abc")
	p.Query("a")

	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&catalog.calls) != 0 {
		t.Error("clearing below the minimum length must cancel the pending request")
	}
}

func TestPipelineDiscardsStaleResponse(t *testing.T) {
	block := make(chan struct{})
	catalog := &fakeCatalog{
		block: block,
		results: map[string][]music.Track{
			"first":  {track("1", "First")},
			"second": {track("2", "Second")},
		},
	}

	var mu sync.Mutex
	var delivered []string
	done := make(chan struct{}, 2)
	p := NewPipeline(catalog, func(query string, tracks []music.Track) {
		mu.Lock()
		delivered = append(delivered, query)
		mu.Unlock()
		done <- struct{}{}
	}, nil, WithWindow(5*time.Millisecond))
	defer p.Stop()

	p.Query("first")

	// Wait for the first request to be in flight, then supersede it.
	for atomic.LoadInt32(&catalog.calls) == 0 {
		time.Sleep(time.Millisecond)
	}
	p.Query("second")
	for atomic.LoadInt32(&catalog.calls) < 2 {
		time.Sleep(time.Millisecond)
	}
	close(block)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 || delivered[0] != "second" {
		t.Errorf("only the latest query may deliver, got %v", delivered)
	}
}

func TestPipelineReportsErrorsForCurrentQuery(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("upstream 503")}

	errs := make(chan *Error, 1)
	p := NewPipeline(catalog, func(string, []music.Track) {
		t.Error("failed search must not deliver results")
	}, func(err *Error) {
		errs <- err
	}, WithWindow(5*time.Millisecond))
	defer p.Stop()

	p.Query("ab")

	select {
	case err := <-errs:
		if err.Query != "ab" {
			t.Errorf("error carries wrong query %q", err.Query)
		}
		if !errors.Is(err, catalog.err) {
			t.Error("error must unwrap to the catalog failure")
		}
	case <-time.After(time.Second):
		t.Fatal("error never delivered")
	}
}

func TestPipelineStopSilencesCallbacks(t *testing.T) {
	catalog := &fakeCatalog{}

	p := NewPipeline(catalog, func(string, []music.Track) {
		t.Error("stopped pipeline must not deliver")
	}, nil, WithWindow(10*time.Millisecond))

	p.Query("abc")
	p.Stop()

	time.Sleep(40 * time.Millisecond)
	if atomic.LoadInt32(&catalog.calls) != 0 {
		t.Error("stop before the window elapses must cancel the dispatch")
	}
}
