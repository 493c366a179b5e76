package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eldhoz-sb/Audio-Player/internal/playlist"
)

var (
	exportOutput    string
	exportWithAudio bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the playlist as M3U or PLS",
	Long: `Export the playlist to a playlist file. The format follows the file
extension: .pls writes PLS, anything else writes extended M3U.

Entries reference tracks by file name. Use --with-audio to also write the
stored audio files next to the playlist.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Playlist file to write")
	exportCmd.Flags().BoolVar(&exportWithAudio, "with-audio", false, "Also write the audio files next to the playlist")
	_ = exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := playlist.ParseFormat(filepath.Ext(exportOutput))
	if err != nil {
		return err
	}

	env, err := openEnvironment(false)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	if err := env.library.Hydrate(ctx); err != nil {
		return err
	}
	tracks := env.library.Playlist().Tracks()

	dir := filepath.Dir(exportOutput)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create playlist file: %w", err)
	}
	if err := playlist.WritePlaylist(f, format, tracks); err != nil {
		f.Close()
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}

	out := cmd.OutOrStdout()
	if exportWithAudio {
		paths, err := env.library.ExportFiles(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Wrote %d audio file(s) to %s", len(paths), dir)))
	}

	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Exported %d track(s) to %s", len(tracks), exportOutput)))
	return nil
}
