package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldhoz-sb/Audio-Player/internal/media"
	"github.com/eldhoz-sb/Audio-Player/internal/playlist"
)

// Session is the resume state the controller reads and writes
type Session interface {
	LastIndex() (int, bool)
	Position() time.Duration
	SetTrack(index int) error
	SetIndex(index int) error
	UpdatePosition(pos time.Duration) error
	Flush() error
}

// Status is a snapshot of what the controller is doing
type Status struct {
	State    media.PlayState
	Index    int // playlist.NoTrack when nothing is loaded
	Track    playlist.Track
	Position time.Duration
}

// HasTrack reports whether a track is loaded
func (s Status) HasTrack() bool {
	return s.Index != playlist.NoTrack
}

// Controller is the only owner of the media element. It drives the
// Idle / Paused / Playing state machine and keeps the session in step.
type Controller struct {
	mu           sync.Mutex
	element      media.Element
	playlist     *playlist.Playlist
	session      Session
	readyTimeout time.Duration
	state        media.PlayState
	failures     int // Consecutive tracks that stopped with an error
	logger       zerolog.Logger
}

// NewController creates a Controller in the Idle state
func NewController(element media.Element, pl *playlist.Playlist, session Session, readyTimeout time.Duration, logger zerolog.Logger) *Controller {
	return &Controller{
		element:      element,
		playlist:     pl,
		session:      session,
		readyTimeout: readyTimeout,
		state:        media.StateIdle,
		logger:       logger.With().Str("component", "controller").Logger(),
	}
}

// Mount restores the last session without starting playback.
//
// The recorded track is loaded when its index is still valid, otherwise
// the first track. The recorded position is applied before anything
// plays. An empty playlist leaves the controller Idle.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playlist.IsEmpty() {
		c.state = media.StateIdle
		return nil
	}

	index, restored := c.session.LastIndex()
	if restored && (index < 0 || index >= c.playlist.Len()) {
		c.logger.Info().Int("index", index).Msg("Recorded track no longer exists")
		restored = false
	}
	if !restored {
		index = 0
	}
	position := c.session.Position()

	if err := c.load(ctx, index); err != nil {
		return err
	}

	if restored {
		if position > 0 {
			if err := c.element.Seek(ctx, position); err != nil {
				return fmt.Errorf("failed to restore position: %w", err)
			}
		}
	} else if err := c.session.SetIndex(index); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to record track index")
	}

	c.logger.Info().
		Int("index", index).
		Dur("position", c.element.Position()).
		Msg("Restored session")
	return nil
}

// Select plays the track at index i. Selecting the loaded track
// toggles between playing and paused instead.
func (c *Controller) Select(ctx context.Context, i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = 0
	if i == c.playlist.CurrentIndex() && c.state != media.StateIdle {
		return c.toggle(ctx)
	}
	return c.switchTo(ctx, i)
}

// Play starts the track at index i from the beginning, even when it is
// the loaded track
func (c *Controller) Play(ctx context.Context, i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = 0
	return c.switchTo(ctx, i)
}

// Toggle flips between playing and paused. From Idle it starts the
// current track, or the first one.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = 0
	return c.toggle(ctx)
}

// Next plays the following track, wrapping to the first
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = 0
	return c.advance(ctx, c.playlist.NextIndex(c.playlist.CurrentIndex()))
}

// Previous plays the preceding track, wrapping to the last
func (c *Controller) Previous(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = 0
	return c.advance(ctx, c.playlist.PrevIndex(c.playlist.CurrentIndex()))
}

// TrackEnded advances to the next track after a natural end of playback
func (c *Controller) TrackEnded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == media.StateIdle {
		return nil
	}
	c.failures = 0
	c.logger.Debug().Int("index", c.playlist.CurrentIndex()).Msg("Track ended")
	return c.advance(ctx, c.playlist.NextIndex(c.playlist.CurrentIndex()))
}

// TrackFailed handles playback that stopped with an error. The element
// is no longer playing, so the controller moves to Paused and skips to
// the next track. Once every track has failed in a row it stays Paused.
func (c *Controller) TrackFailed(ctx context.Context, cause error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != media.StatePlaying {
		return nil
	}
	c.state = media.StatePaused
	c.failures++

	index := c.playlist.CurrentIndex()
	c.logger.Warn().Err(cause).Int("index", index).Msg("Playback failed")

	if c.failures >= c.playlist.Len() {
		c.logger.Error().Int("failures", c.failures).Msg("Every track failed to play, pausing")
		return nil
	}
	return c.advance(ctx, c.playlist.NextIndex(index))
}

// SyncPosition writes the element position to the session
func (c *Controller) SyncPosition() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == media.StateIdle {
		return nil
	}
	return c.session.UpdatePosition(c.element.Position())
}

// Stop pauses playback and flushes the final position
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == media.StatePlaying {
		if err := c.element.Pause(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to pause on stop")
		}
		c.state = media.StatePaused
	}

	var errs []error
	if c.state != media.StateIdle {
		errs = append(errs, c.session.UpdatePosition(c.element.Position()))
	}
	errs = append(errs, c.session.Flush())
	return errors.Join(errs...)
}

// Status returns the current controller state
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{State: c.state, Index: playlist.NoTrack}
	if t, i, ok := c.playlist.Current(); ok && c.state != media.StateIdle {
		st.Index = i
		st.Track = t
		st.Position = c.element.Position()
	}
	return st
}

// toggle must be called with mu held
func (c *Controller) toggle(ctx context.Context) error {
	switch c.state {
	case media.StatePlaying:
		if err := c.element.Pause(ctx); err != nil {
			return fmt.Errorf("failed to pause: %w", err)
		}
		c.state = media.StatePaused
		c.logger.Debug().Msg("Paused")
		return nil

	case media.StatePaused:
		if err := c.element.Play(ctx); err != nil {
			return fmt.Errorf("failed to resume: %w", err)
		}
		c.state = media.StatePlaying
		c.logger.Debug().Msg("Resumed")
		return nil

	default:
		if c.playlist.IsEmpty() {
			return nil
		}
		index := c.playlist.CurrentIndex()
		if index == playlist.NoTrack {
			index = 0
		}
		return c.switchTo(ctx, index)
	}
}

// advance must be called with mu held
func (c *Controller) advance(ctx context.Context, index int) error {
	if index == playlist.NoTrack {
		c.state = media.StateIdle
		return nil
	}
	return c.switchTo(ctx, index)
}

// switchTo loads the track at index, records it and starts playback.
// Must be called with mu held.
func (c *Controller) switchTo(ctx context.Context, index int) error {
	if err := c.load(ctx, index); err != nil {
		return err
	}
	if err := c.session.SetTrack(index); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to record track")
	}

	if err := c.element.Play(ctx); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}
	c.state = media.StatePlaying

	t, _ := c.playlist.Track(index)
	c.logger.Info().Int("index", index).Str("track", t.Name).Msg("Playing")
	return nil
}

// load points the element at the track at index and waits until it is
// ready. The controller is Paused afterwards, even when readiness times out.
// Must be called with mu held.
func (c *Controller) load(ctx context.Context, index int) error {
	t, err := c.playlist.Track(index)
	if err != nil {
		return err
	}

	ready, err := c.element.Load(ctx, t.Src)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", t.Name, err)
	}
	if err := c.playlist.SetCurrent(index); err != nil {
		return err
	}
	c.state = media.StatePaused

	if err := media.Await(ctx, ready, c.readyTimeout); err != nil {
		c.logger.Warn().Err(err).Str("track", t.Name).Msg("Track did not become ready")
		return fmt.Errorf("failed to load %s: %w", t.Name, err)
	}
	return nil
}
