package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eldhoz-sb/Audio-Player/internal/playlist"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add FILE...",
	Short: "Add audio files to the library",
	Long: `Add audio files to the library and append them to the playlist.

Files are copied into the library database, so the originals can be moved
or deleted afterwards. A file with the same name as an existing track
replaces that track and keeps its place in the playlist.

If any file cannot be read or stored, nothing is added. Files whose
duration cannot be determined are added with an unknown duration.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(false)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	env.library.OnProgress(func(ev playlist.ProgressEvent) {
		line := fmt.Sprintf("[%d/%d] %s", ev.Done, ev.Total, ev.Name)
		if ev.Err != nil {
			line += warningStyle.Render(" (duration unknown)")
		}
		fmt.Fprintln(out, line)
	})

	tracks, err := env.library.Import(context.Background(), args)
	if err != nil {
		return fmt.Errorf("failed to add files: %w", err)
	}

	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Added %d track(s)", len(tracks))))
	return nil
}
