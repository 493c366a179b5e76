package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eldhoz-sb/Audio-Player/internal/media"
	"github.com/eldhoz-sb/Audio-Player/internal/player"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play [INDEX]",
	Short: "Play the playlist without a UI",
	Long: `Play the playlist in the foreground without a UI.

Without an argument, playback resumes at the track and position recorded
by the previous run. With INDEX (1-based), that track plays from its start.
When a track ends the next one starts, wrapping around after the last.

The position is recorded every second. Stop with Ctrl-C; a second Ctrl-C
forces exit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	var startIndex *int
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid track index %q", args[0])
		}
		idx := n - 1
		startIndex = &idx
	}

	env, err := openEnvironment(false)
	if err != nil {
		return err
	}
	defer env.Close()

	env.logger.Info().
		Str("version", version).
		Msg("Starting audioplayer")

	ctx := context.Background()
	if err := env.library.Hydrate(ctx); err != nil {
		return err
	}
	if env.library.Playlist().IsEmpty() {
		return fmt.Errorf("playlist is empty, add tracks with 'audioplayer add'")
	}
	if n := env.library.Playlist().Len(); startIndex != nil && *startIndex >= n {
		return fmt.Errorf("track %d does not exist, the playlist has %d track(s)", *startIndex+1, n)
	}

	element, err := media.NewProcessElement(env.cfg.PlayerCommand, env.logger)
	if err != nil {
		return err
	}

	p := player.New(player.Config{
		PositionInterval: env.cfg.PositionInterval,
		ReadyTimeout:     env.cfg.ReadyTimeout,
		Autoplay:         true,
		StartIndex:       startIndex,
	}, env.library.Playlist(), element, env.session, env.logger)

	// Run player (blocks until shutdown signal)
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("player error: %w", err)
	}

	// Graceful shutdown
	if err := p.Shutdown(); err != nil {
		env.logger.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	env.logger.Info().Msg("Player stopped")
	return nil
}
