package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/eldhoz-sb/Audio-Player/internal/playlist"
)

const listNameWidth = 40

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the playlist",
	Long: `List every track in the playlist in play order, with its duration and
tags. The track that will resume on the next start is highlighted.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(false)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.library.Hydrate(context.Background()); err != nil {
		return err
	}

	current, ok := env.session.LastIndex()
	if !ok {
		current = playlist.NoTrack
	}

	writeTrackList(cmd.OutOrStdout(), env.library.Playlist().Tracks(), current)
	return nil
}

// writeTrackList prints one row per track with the current one marked
func writeTrackList(w io.Writer, tracks []playlist.Track, current int) {
	if len(tracks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("Playlist is empty"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("  %3s  %s  %5s  %s",
		"#", runewidth.FillRight("NAME", listNameWidth), "TIME", "ARTIST - TITLE")))

	for i, t := range tracks {
		marker := " "
		if i == current {
			marker = "▶"
		}

		name := runewidth.FillRight(runewidth.Truncate(t.DisplayName(), listNameWidth, "…"), listNameWidth)
		tags := strings.Trim(t.Metadata.Artist+" - "+t.Metadata.Title, " -")

		row := fmt.Sprintf("%s %3d  %s  %5s  %s", marker, i+1, name, playlist.FormatTime(t.Metadata.Duration), tags)
		if i == current {
			row = currentStyle.Render(row)
		}
		fmt.Fprintln(w, row)
	}
}
