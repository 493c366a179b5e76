package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Directory holding library.db and session.json
	// Default: ~/.local/share/audioplayer
	DataDir string

	// Logging
	LogLevel string
	LogFile  string

	// Player invocation; "-ss <pos> <src>" is appended
	// Default: "ffplay -nodisp -autoexit -loglevel quiet"
	PlayerCommand []string

	// ffprobe binary used when the pure-Go MP3 decoder fails
	FFProbePath string

	// Timeouts and intervals
	DurationTimeout     time.Duration
	ReadyTimeout     time.Duration
	PositionInterval time.Duration

	// Concurrent file imports
	ImportWorkers int

	// Longest edge of exported cover thumbnails (0 = original size)
	ThumbnailSize int

	// Output format template for the now command
	// Default: "{{.Name}}"
	OutputFormat string

	// Fixed output width for the now command (0 = disabled)
	OutputWidth int

	// Marquee scrolling for the now command
	MarqueeEnabled   bool
	MarqueeSpeed     int
	MarqueeSeparator string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return load(getConfigDir())
}

func load(configDir string) (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Read from environment variables
	v.SetEnvPrefix("AUDIOPLAYER")
	v.AutomaticEnv()

	cfg := &Config{
		DataDir:          v.GetString("data_dir"),
		LogLevel:         v.GetString("log_level"),
		LogFile:          v.GetString("log_file"),
		PlayerCommand:    strings.Fields(v.GetString("player_command")),
		FFProbePath:      v.GetString("ffprobe_path"),
		DurationTimeout:     v.GetDuration("duration_timeout"),
		ReadyTimeout:     v.GetDuration("ready_timeout"),
		PositionInterval: v.GetDuration("position_interval"),
		ImportWorkers:    v.GetInt("import_workers"),
		ThumbnailSize:    v.GetInt("thumbnail_size"),
		OutputFormat:     v.GetString("output_format"),
		OutputWidth:      v.GetInt("output_width"),
		MarqueeEnabled:   v.GetBool("marquee_enabled"),
		MarqueeSpeed:     v.GetInt("marquee_speed"),
		MarqueeSeparator: v.GetString("marquee_separator"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("player_command", "ffplay -nodisp -autoexit -loglevel quiet")
	v.SetDefault("ffprobe_path", "ffprobe")
	v.SetDefault("duration_timeout", "10s")
	v.SetDefault("ready_timeout", "5s")
	v.SetDefault("position_interval", "1s")
	v.SetDefault("import_workers", 4)
	v.SetDefault("thumbnail_size", 300)
	v.SetDefault("output_format", "{{.Name}}")
	v.SetDefault("output_width", 0)
	v.SetDefault("marquee_enabled", false)
	v.SetDefault("marquee_speed", 2)
	v.SetDefault("marquee_separator", " • ")
}

// defaultDataDir returns ~/.local/share/audioplayer
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "audioplayer")
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "audioplayer")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Save writes configuration to config.yaml in the configuration directory
func (c *Config) Save() error {
	return c.saveTo(getConfigDir())
}

func (c *Config) saveTo(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	v := viper.New()

	v.Set("data_dir", c.DataDir)
	v.Set("log_level", c.LogLevel)
	v.Set("log_file", c.LogFile)
	v.Set("player_command", strings.Join(c.PlayerCommand, " "))
	v.Set("ffprobe_path", c.FFProbePath)
	v.Set("duration_timeout", c.DurationTimeout.String())
	v.Set("ready_timeout", c.ReadyTimeout.String())
	v.Set("position_interval", c.PositionInterval.String())
	v.Set("import_workers", c.ImportWorkers)
	v.Set("thumbnail_size", c.ThumbnailSize)
	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)
	v.Set("marquee_enabled", c.MarqueeEnabled)
	v.Set("marquee_speed", c.MarqueeSpeed)
	v.Set("marquee_separator", c.MarqueeSeparator)

	return v.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}
