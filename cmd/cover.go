package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eldhoz-sb/Audio-Player/internal/metadata"
)

var (
	coverOutput string
	coverSize   int
)

// coverCmd represents the cover command
var coverCmd = &cobra.Command{
	Use:   "cover NAME",
	Short: "Save the cover image of a track",
	Long: `Save the cover image embedded in a track to a file.

The image is scaled to fit within --size pixels on its longest edge and
written as JPEG. With --size 0 the embedded image bytes are written as-is.`,
	Args: cobra.ExactArgs(1),
	RunE: runCover,
}

func init() {
	rootCmd.AddCommand(coverCmd)

	coverCmd.Flags().StringVarP(&coverOutput, "output", "o", "", "Output file")
	coverCmd.Flags().IntVar(&coverSize, "size", -1, "Longest edge in pixels (0=original bytes, default from config)")
	_ = coverCmd.MarkFlagRequired("output")
}

func runCover(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(false)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	name := args[0]

	entry, err := env.store.Get(ctx, name)
	if err != nil {
		return err
	}

	res, err := env.extractor.Extract(ctx, entry.Name, entry.Data)
	if err != nil {
		var extractErr *metadata.ExtractError
		if !errors.As(err, &extractErr) || !extractErr.Recoverable() {
			return err
		}
	}
	if res.Cover == nil {
		return fmt.Errorf("%s has no cover image", name)
	}

	size := coverSize
	if size < 0 {
		size = env.cfg.ThumbnailSize
	}

	data := res.Cover.Data
	if size > 0 {
		data, err = metadata.Thumbnail(res.Cover, size)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(coverOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write cover: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Saved cover of %s to %s", name, coverOutput)))
	return nil
}
