package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eldhoz-sb/Audio-Player/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after defaults, config file, environment
variables (AUDIOPLAYER_*) and command-line flags have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		writeConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

// configSaveCmd represents the config save command
var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the effective configuration to config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Saved config to "+config.GetConfigDir()))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSaveCmd)
	rootCmd.AddCommand(configCmd)
}

func writeConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, headerStyle.Render("Config directory: "+config.GetConfigDir()))

	rows := []struct {
		key   string
		value any
	}{
		{"data_dir", cfg.DataDir},
		{"log_level", cfg.LogLevel},
		{"log_file", cfg.LogFile},
		{"player_command", strings.Join(cfg.PlayerCommand, " ")},
		{"ffprobe_path", cfg.FFProbePath},
		{"duration_timeout", cfg.DurationTimeout},
		{"ready_timeout", cfg.ReadyTimeout},
		{"position_interval", cfg.PositionInterval},
		{"import_workers", cfg.ImportWorkers},
		{"thumbnail_size", cfg.ThumbnailSize},
		{"output_format", cfg.OutputFormat},
		{"output_width", cfg.OutputWidth},
		{"marquee_enabled", cfg.MarqueeEnabled},
		{"marquee_speed", cfg.MarqueeSpeed},
		{"marquee_separator", fmt.Sprintf("%q", cfg.MarqueeSeparator)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-18s %v\n", r.key, r.value)
	}
}
