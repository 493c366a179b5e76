/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/eldhoz-sb/Audio-Player/internal/metadata"
	"github.com/eldhoz-sb/Audio-Player/internal/playlist"
)

// nowCmd represents the now command
var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Display the last played track",
	Long: `Display the track the player will resume, with its recorded position.

The output format can be customized in ~/.config/audioplayer/config.yaml
using a Go template. Available fields: .Name, .File, .Artist, .Title,
.Index, .Duration, .Position

Exit codes:
  0 - A track has been played
  1 - Nothing has been played yet, or the track was removed`,
	Args: cobra.NoArgs,
	RunE: runNow,
}

// NowPlaying is the data available to the now output template
type NowPlaying struct {
	Name     string // Display name (file name without extension)
	File     string // File name
	Artist   string
	Title    string
	Index    int    // 1-based playlist position
	Duration string // MM:SS
	Position string // MM:SS
}

func init() {
	rootCmd.AddCommand(nowCmd)

	// Add format flag to override config
	nowCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	nowCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
	// Add marquee flag to enable scrolling
	nowCmd.Flags().Bool("marquee", false, "Enable marquee scrolling for long text (overrides config)")
}

func runNow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	env, err := openEnvironment(false)
	if err != nil {
		return err
	}

	np, found, err := lookupNowPlaying(ctx, env)
	env.Close()
	if err != nil {
		return fmt.Errorf("failed to get last played track: %w", err)
	}

	// Nothing played yet, exit with code 1
	if !found {
		os.Exit(1)
		return nil
	}

	cfg := env.cfg

	// Check for format flag override
	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag != "" {
		cfg.OutputFormat = formatFlag
	}

	// Format and print output
	output, err := formatNowPlaying(np, cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Apply width padding/marquee if requested
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = cfg.OutputWidth
	}

	marquee, _ := cmd.Flags().GetBool("marquee")
	if !marquee && !cmd.Flags().Changed("marquee") {
		// Flag not set, use config default
		marquee = cfg.MarqueeEnabled
	}

	if width > 0 {
		if marquee {
			output = marqueeText(output, width, cfg.MarqueeSpeed, cfg.MarqueeSeparator)
		} else {
			output = padToWidth(output, width)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// lookupNowPlaying resolves the session's last played index against the store
func lookupNowPlaying(ctx context.Context, env *environment) (*NowPlaying, bool, error) {
	index, ok := env.session.LastIndex()
	if !ok {
		return nil, false, nil
	}

	keys, err := env.store.Keys(ctx)
	if err != nil {
		return nil, false, err
	}
	if index >= len(keys) {
		return nil, false, nil
	}

	entry, err := env.store.Get(ctx, keys[index])
	if err != nil {
		return nil, false, err
	}

	res, err := env.extractor.Extract(ctx, entry.Name, entry.Data)
	if err != nil {
		var extractErr *metadata.ExtractError
		if !errors.As(err, &extractErr) || !extractErr.Recoverable() {
			return nil, false, err
		}
	}

	track := playlist.Track{Name: entry.Name, Metadata: res.Metadata}
	return &NowPlaying{
		Name:     track.DisplayName(),
		File:     track.Name,
		Artist:   res.Metadata.Artist,
		Title:    res.Metadata.Title,
		Index:    index + 1,
		Duration: playlist.FormatTime(res.Metadata.Duration),
		Position: playlist.FormatTime(env.session.Position()),
	}, true, nil
}

// formatNowPlaying applies the template to the track data
func formatNowPlaying(np *NowPlaying, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, np); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

const ellipsis = "..."

// padToWidth fits text to exactly width display columns, cutting long
// text with "..." and padding short text with spaces. width <= 0 leaves
// text unchanged.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if runewidth.StringWidth(text) > width {
		if width <= len(ellipsis) {
			return ellipsis[:width]
		}
		text = runewidth.Truncate(text, width-len(ellipsis), "") + ellipsis
	}
	return runewidth.FillRight(text, width)
}

// marqueeText scrolls text that does not fit in width by speed columns per
// second. The frame depends only on the clock, so repeated invocations
// from a status bar keep moving.
func marqueeText(text string, width int, speed int, separator string) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return padToWidth(text, width)
	}
	return marqueeFrame(text, width, separator, int(time.Now().Unix()*int64(speed)))
}

// marqueeFrame returns the width-column window of the looped text
// "text+separator" starting offset runes in
func marqueeFrame(text string, width int, separator string, offset int) string {
	loop := []rune(text + separator)
	start := offset % len(loop)
	if start < 0 {
		start += len(loop)
	}

	var b strings.Builder
	cols := 0
	for i := 0; i < len(loop); i++ {
		r := loop[(start+i)%len(loop)]
		w := runewidth.RuneWidth(r)
		if cols+w > width {
			break
		}
		b.WriteRune(r)
		cols += w
	}
	return runewidth.FillRight(b.String(), width)
}
