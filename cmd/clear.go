package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every track from the library",
	Long:  `Remove every track from the library and forget the resume point.`,
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(false)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.library.Clear(context.Background()); err != nil {
		return err
	}
	if err := env.session.Reset(); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Library cleared"))
	return nil
}
