package player

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPositionInterval is how often the playback position is recorded
const DefaultPositionInterval = time.Second

// PositionPoller records the playback position at regular intervals
type PositionPoller struct {
	controller *Controller
	interval   time.Duration
	logger     zerolog.Logger
}

// NewPositionPoller creates a new PositionPoller instance
func NewPositionPoller(controller *Controller, interval time.Duration, logger zerolog.Logger) *PositionPoller {
	if interval <= 0 {
		interval = DefaultPositionInterval
	}
	return &PositionPoller{
		controller: controller,
		interval:   interval,
		logger:     logger.With().Str("component", "poller").Logger(),
	}
}

// Run records the position on every tick until the context is cancelled
func (p *PositionPoller) Run(ctx context.Context) error {
	p.logger.Debug().
		Dur("interval", p.interval).
		Msg("Starting position poller")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug().Msg("Position poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.controller.SyncPosition(); err != nil {
				p.logger.Debug().Err(err).Msg("Failed to record position")
			}
		}
	}
}
