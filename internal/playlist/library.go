package playlist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eldhoz-sb/Audio-Player/internal/metadata"
	"github.com/eldhoz-sb/Audio-Player/internal/store"
)

// Store is the persistence the library needs
type Store interface {
	PutAll(ctx context.Context, entries []store.Entry) error
	GetAll(ctx context.Context) ([]store.Entry, error)
	Delete(ctx context.Context, name string) error
	Clear(ctx context.Context) error
}

// Extractor derives metadata from raw audio bytes
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (metadata.Result, error)
}

// ProgressEvent reports one finished item of an import or hydrate batch
type ProgressEvent struct {
	Name  string
	Done  int
	Total int
	Err   error // Recoverable extraction error, if any
}

// LibraryConfig configures a Library
type LibraryConfig struct {
	SourceDir string // Directory for playable copies; empty uses a temp dir
	Workers   int    // Concurrent imports; <= 0 uses GOMAXPROCS
}

// Library keeps the playlist in sync with the persistent store
type Library struct {
	store     Store
	extractor Extractor
	playlist  *Playlist
	logger    zerolog.Logger

	srcDir  string
	ownsDir bool
	workers int
	seq     atomic.Uint64

	mu       sync.Mutex // serializes batches
	progress func(ProgressEvent)
}

// item is one unit of batch work
type item struct {
	name string
	data []byte
}

// NewLibrary creates a Library over an empty playlist
func NewLibrary(st Store, ex Extractor, cfg LibraryConfig, logger zerolog.Logger) (*Library, error) {
	srcDir := cfg.SourceDir
	ownsDir := false
	if srcDir == "" {
		dir, err := os.MkdirTemp("", "audioplayer-src-")
		if err != nil {
			return nil, fmt.Errorf("failed to create source directory: %w", err)
		}
		srcDir = dir
		ownsDir = true
	} else if err := os.MkdirAll(srcDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create source directory: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Library{
		store:     st,
		extractor: ex,
		playlist:  New(),
		logger:    logger.With().Str("component", "library").Logger(),
		srcDir:    srcDir,
		ownsDir:   ownsDir,
		workers:   workers,
	}, nil
}

// Playlist returns the playlist the library publishes to
func (l *Library) Playlist() *Playlist {
	return l.playlist
}

// OnProgress registers a callback invoked once per finished batch item.
// It may be called from several goroutines.
func (l *Library) OnProgress(fn func(ProgressEvent)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = fn
}

// Import stores the given files and appends them to the playlist.
//
// Files are read in argument order, processed concurrently, then written
// to the store in one transaction in argument order and published. A file
// whose name is already in the playlist replaces that entry in place.
// Read or storage errors fail the whole batch and nothing is stored.
func (l *Library) Import(ctx context.Context, paths []string) ([]Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]item, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		items[i] = item{name: filepath.Base(p), data: data}
	}

	tracks, err := l.build(ctx, items)
	if err != nil {
		return nil, err
	}

	entries := make([]store.Entry, len(items))
	for i, it := range items {
		entries[i] = store.Entry{Name: it.name, Data: it.data}
	}
	if err := l.store.PutAll(ctx, entries); err != nil {
		l.release(tracks)
		return nil, fmt.Errorf("failed to store batch: %w", err)
	}

	l.release(l.playlist.Merge(tracks))
	l.logger.Info().Int("count", len(tracks)).Msg("Imported tracks")
	return tracks, nil
}

// Hydrate rebuilds the playlist from every entry in the store
func (l *Library) Hydrate(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	items := make([]item, len(entries))
	for i, e := range entries {
		items[i] = item{name: e.Name, data: e.Data}
	}

	tracks, err := l.build(ctx, items)
	if err != nil {
		return err
	}

	l.release(l.playlist.Replace(tracks))
	l.logger.Debug().Int("count", len(tracks)).Msg("Hydrated playlist")
	return nil
}

// Clear removes every track from the store and the playlist
func (l *Library) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear library: %w", err)
	}
	l.release(l.playlist.Clear())
	return nil
}

// Remove deletes a single track by name
func (l *Library) Remove(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	if t, ok := l.playlist.Remove(name); ok {
		l.release([]Track{t})
	}
	return nil
}

// Close releases every materialized source
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.release(l.playlist.Clear())
	if l.ownsDir {
		return os.RemoveAll(l.srcDir)
	}
	return nil
}

// build processes items concurrently and returns tracks in input order
func (l *Library) build(ctx context.Context, items []item) ([]Track, error) {
	tracks := make([]Track, len(items))
	var done atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			t, extractErr, err := l.buildOne(ctx, it)
			if err != nil {
				return err
			}
			tracks[i] = t

			ev := ProgressEvent{Name: it.name, Done: int(done.Add(1)), Total: len(items)}
			if extractErr != nil {
				ev.Err = extractErr
			}
			l.emit(ev)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.release(tracks)
		return nil, err
	}
	return tracks, nil
}

// buildOne materializes and extracts a single item. A recoverable
// extraction error is returned separately from fatal errors.
func (l *Library) buildOne(ctx context.Context, it item) (Track, *metadata.ExtractError, error) {
	src, err := l.materialize(it.name, it.data)
	if err != nil {
		return Track{}, nil, err
	}

	t := Track{Name: it.name, Src: src}

	res, err := l.extractor.Extract(ctx, it.name, it.data)
	t.Metadata = res.Metadata
	t.Cover = res.Cover
	if err != nil {
		var extractErr *metadata.ExtractError
		if errors.As(err, &extractErr) && extractErr.Recoverable() {
			l.logger.Warn().Err(err).Str("track", it.name).Msg("Keeping track without full metadata")
			return t, extractErr, nil
		}
		os.Remove(src)
		return Track{}, nil, err
	}

	return t, nil, nil
}

// materialize writes data to a uniquely named file under the source directory
func (l *Library) materialize(name string, data []byte) (string, error) {
	path := filepath.Join(l.srcDir, fmt.Sprintf("%06d-%s", l.seq.Add(1), filepath.Base(name)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write source for %s: %w", name, err)
	}
	return path, nil
}

// release removes the materialized sources of tracks
func (l *Library) release(tracks []Track) {
	for _, t := range tracks {
		if t.Src == "" {
			continue
		}
		if err := os.Remove(t.Src); err != nil && !os.IsNotExist(err) {
			l.logger.Debug().Err(err).Str("src", t.Src).Msg("Failed to release source")
		}
	}
}

func (l *Library) emit(ev ProgressEvent) {
	if l.progress != nil {
		l.progress(ev)
	}
}
