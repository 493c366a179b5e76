package media

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotReady is returned when a loaded source does not become playable in time
	ErrNotReady = errors.New("media element not ready")

	// ErrNoSource is returned when playback is requested before a source is loaded
	ErrNoSource = errors.New("no source loaded")
)

// DefaultReadyTimeout bounds the wait for a loaded source to become playable
const DefaultReadyTimeout = 5 * time.Second

// PlayState represents the current playback state of an element
type PlayState int

const (
	StateIdle    PlayState = iota // No source loaded
	StatePaused                   // Source loaded, not playing
	StatePlaying                  // Source is playing
)

// String returns a human-readable representation of the PlayState
func (s PlayState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Element is a single playback sink with one current source
type Element interface {
	// Load switches to a new source. The returned channel is closed once
	// the source is ready to play.
	Load(ctx context.Context, src string) (<-chan struct{}, error)

	// Play starts or resumes playback at the current position
	Play(ctx context.Context) error

	// Pause stops playback and keeps the position
	Pause(ctx context.Context) error

	// Seek moves the playback position
	Seek(ctx context.Context, pos time.Duration) error

	// Position returns the current playback position
	Position() time.Duration

	// State returns the current playback state
	State() PlayState

	// Ended delivers a value each time the source plays to its end
	Ended() <-chan struct{}

	// Failed delivers the error each time playback stops abnormally
	Failed() <-chan error

	// Close stops playback and releases the element
	Close() error
}

// Await waits for a ready channel, giving up after timeout
func Await(ctx context.Context, ready <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ready:
		return nil
	case <-timer.C:
		return fmt.Errorf("waited %s: %w", timeout, ErrNotReady)
	case <-ctx.Done():
		return ctx.Err()
	}
}
