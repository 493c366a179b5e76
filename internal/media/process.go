package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCommand is the player invocation; "-ss <pos> <src>" is appended
var DefaultCommand = []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}

// ProcessElement plays sources by running an external player process.
//
// Pausing stops the process and remembers the position; resuming starts
// a new process seeked to that position.
type ProcessElement struct {
	mu        sync.Mutex
	path      string
	args      []string
	logger    zerolog.Logger
	src       string
	base      time.Duration // Position when the process was started or stopped
	startedAt time.Time
	state     PlayState
	cmd       *exec.Cmd
	gen       int // Bumped whenever we stop a process ourselves
	ended     chan struct{}
	failed    chan error
}

// NewProcessElement creates an element running command. An empty command
// uses DefaultCommand.
func NewProcessElement(command []string, logger zerolog.Logger) (*ProcessElement, error) {
	if len(command) == 0 {
		command = DefaultCommand
	}

	path, err := exec.LookPath(command[0])
	if err != nil {
		return nil, fmt.Errorf("player command %q not found: %w", command[0], err)
	}

	return &ProcessElement{
		path:   path,
		args:   append([]string(nil), command[1:]...),
		logger: logger.With().Str("component", "element").Logger(),
		ended:  make(chan struct{}, 1),
		failed: make(chan error, 1),
	}, nil
}

// Load stops any current playback and switches to src at position zero
func (e *ProcessElement) Load(ctx context.Context, src string) (<-chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stop()
	e.src = src
	e.base = 0
	e.state = StatePaused

	ready := make(chan struct{})
	go func() {
		if _, err := os.Stat(src); err != nil {
			e.logger.Warn().Err(err).Str("src", src).Msg("Source is not readable")
			return
		}
		close(ready)
	}()

	return ready, nil
}

// Play starts the player process at the current position
func (e *ProcessElement) Play(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.src == "" {
		return ErrNoSource
	}
	if e.state == StatePlaying {
		return nil
	}
	return e.start()
}

// Pause stops the player process and keeps the position
func (e *ProcessElement) Pause(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePlaying {
		return nil
	}
	e.base = e.position()
	e.stop()
	e.state = StatePaused
	return nil
}

// Seek moves the position, restarting the process when playing
func (e *ProcessElement) Seek(ctx context.Context, pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.src == "" {
		return ErrNoSource
	}
	if pos < 0 {
		pos = 0
	}

	playing := e.state == StatePlaying
	e.stop()
	e.base = pos
	if playing {
		return e.start()
	}
	return nil
}

// Position returns the current playback position
func (e *ProcessElement) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position()
}

// State returns the current playback state
func (e *ProcessElement) State() PlayState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Ended delivers a value when the player exits cleanly at the end of a source
func (e *ProcessElement) Ended() <-chan struct{} {
	return e.ended
}

// Failed delivers the exit error when the player stops on its own with a failure
func (e *ProcessElement) Failed() <-chan error {
	return e.failed
}

// Close stops the player process
func (e *ProcessElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StatePlaying {
		e.base = e.position()
	}
	e.stop()
	if e.src != "" {
		e.state = StatePaused
	}
	return nil
}

// position must be called with mu held
func (e *ProcessElement) position() time.Duration {
	if e.state == StatePlaying {
		return e.base + time.Since(e.startedAt)
	}
	return e.base
}

// start must be called with mu held
func (e *ProcessElement) start() error {
	args := append(append([]string(nil), e.args...), "-ss", formatSeconds(e.base), e.src)
	cmd := exec.Command(e.path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	e.gen++
	e.cmd = cmd
	e.startedAt = time.Now()
	e.state = StatePlaying
	e.logger.Debug().Str("src", e.src).Dur("position", e.base).Msg("Started player")

	go e.wait(cmd, e.gen)
	return nil
}

// stop must be called with mu held
func (e *ProcessElement) stop() {
	if e.cmd == nil {
		return
	}
	e.gen++
	if err := e.cmd.Process.Kill(); err != nil {
		e.logger.Debug().Err(err).Msg("Failed to kill player")
	}
	e.cmd = nil
}

// wait reaps a player process and reports a natural end of playback
func (e *ProcessElement) wait(cmd *exec.Cmd, gen int) {
	err := cmd.Wait()

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.base = e.position()
	e.cmd = nil
	e.state = StatePaused
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn().Err(err).Msg("Player exited with error")
		select {
		case e.failed <- fmt.Errorf("player exited: %w", err):
		default:
		}
		return
	}

	select {
	case e.ended <- struct{}{}:
	default:
	}
}

// formatSeconds renders a duration as fractional seconds for -ss
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
