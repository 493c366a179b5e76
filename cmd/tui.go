package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/eldhoz-sb/Audio-Player/internal/media"
	"github.com/eldhoz-sb/Audio-Player/internal/player"
	"github.com/eldhoz-sb/Audio-Player/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive playlist",
	Long: `Open a terminal UI with the playlist, the current track and a progress bar.

The last track and position are restored but playback does not start
until you ask for it.

Keys:
  enter  play the highlighted track (or pause/resume it if it is current)
  space  pause/resume
  n / p  next / previous track
  q      quit

Logs are discarded unless --log-file is given.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(true)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := env.library.Hydrate(ctx); err != nil {
		return err
	}

	element, err := media.NewProcessElement(env.cfg.PlayerCommand, env.logger)
	if err != nil {
		return err
	}

	p := player.New(player.Config{
		PositionInterval: env.cfg.PositionInterval,
		ReadyTimeout:     env.cfg.ReadyTimeout,
	}, env.library.Playlist(), element, env.session, env.logger)

	served := make(chan error, 1)
	go func() { served <- p.Serve(ctx) }()

	app := tui.New(tui.DefaultConfig(), p.Controller(), env.library.Playlist(), env.logger)
	runErr := app.Run(ctx)

	cancel()
	if err := <-served; err != nil && !errors.Is(err, context.Canceled) {
		env.logger.Error().Err(err).Msg("Player error")
	}
	if err := p.Shutdown(); err != nil {
		return err
	}
	return runErr
}
