package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// rmCmd represents the rm command
var rmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Remove a track from the library",
	Long: `Remove a single track, by file name, from the library and the playlist.

The resume point follows the track it referred to. Removing the track
that would resume clears the resume point.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	env, err := openEnvironment(false)
	if err != nil {
		return err
	}
	defer env.Close()

	keys, err := env.store.Keys(ctx)
	if err != nil {
		return err
	}
	removed := -1
	for i, k := range keys {
		if k == name {
			removed = i
			break
		}
	}

	if err := env.library.Remove(ctx, name); err != nil {
		return err
	}

	if last, ok := env.session.LastIndex(); ok && removed >= 0 {
		switch {
		case last == removed:
			err = env.session.Reset()
		case last > removed:
			err = env.session.SetIndex(last - 1)
		}
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Removed "+name))
	return nil
}
