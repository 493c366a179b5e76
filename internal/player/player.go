package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldhoz-sb/Audio-Player/internal/media"
	"github.com/eldhoz-sb/Audio-Player/internal/playlist"
)

// Config holds player configuration
type Config struct {
	PositionInterval time.Duration // How often the position is recorded
	ReadyTimeout     time.Duration // How long a loaded track may take to become playable
	Autoplay         bool          // Start playing once the session is restored
	StartIndex       *int          // Play this track from the start instead of resuming (implies Autoplay)
}

// Player ties the playlist, media element and session together and runs
// the background loops that keep them in step
type Player struct {
	config     Config
	element    media.Element
	controller *Controller
	poller     *PositionPoller
	logger     zerolog.Logger
}

// New creates a new Player instance
func New(cfg Config, pl *playlist.Playlist, element media.Element, session Session, logger zerolog.Logger) *Player {
	controller := NewController(element, pl, session, cfg.ReadyTimeout, logger)

	return &Player{
		config:     cfg,
		element:    element,
		controller: controller,
		poller:     NewPositionPoller(controller, cfg.PositionInterval, logger),
		logger:     logger.With().Str("component", "player").Logger(),
	}
}

// Controller returns the playback controller
func (p *Player) Controller() *Controller {
	return p.controller
}

// Run serves until a shutdown signal is received
func (p *Player) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		p.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		<-sigChan
		p.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	if err := p.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Serve restores the session and runs the position poller and the
// end-of-track handler. Blocks until the context is cancelled.
func (p *Player) Serve(ctx context.Context) error {
	p.logger.Info().Msg("Starting player")

	if err := p.controller.Mount(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		p.logger.Warn().Err(err).Msg("Failed to restore session")
	}

	if err := p.start(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, playlist.ErrOutOfRange) {
			return err
		}
		p.logger.Error().Err(err).Msg("Failed to start playback")
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := p.poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Error().Err(err).Msg("Position poller error")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.handleElementEvents(ctx)
	}()

	wg.Wait()

	p.logger.Info().Msg("Player stopped")
	return ctx.Err()
}

// start begins playback when configured to
func (p *Player) start(ctx context.Context) error {
	switch {
	case p.config.StartIndex != nil:
		return p.controller.Play(ctx, *p.config.StartIndex)
	case p.config.Autoplay:
		return p.controller.Toggle(ctx)
	}
	return nil
}

// handleElementEvents advances the playlist each time the element finishes
// or fails a track
func (p *Player) handleElementEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.element.Ended():
			if err := p.controller.TrackEnded(ctx); err != nil {
				p.logger.Error().Err(err).Msg("Failed to advance to next track")
			}
		case cause := <-p.element.Failed():
			if err := p.controller.TrackFailed(ctx, cause); err != nil {
				p.logger.Error().Err(err).Msg("Failed to skip failed track")
			}
		}
	}
}

// Shutdown stops playback, writes the final position and closes the element
func (p *Player) Shutdown() error {
	p.logger.Info().Msg("Shutting down player")

	if err := p.controller.Stop(context.Background()); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to save final position")
	}

	if err := p.element.Close(); err != nil {
		return fmt.Errorf("failed to close media element: %w", err)
	}
	return nil
}
