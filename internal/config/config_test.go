package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if len(cfg.PlayerCommand) != 5 || cfg.PlayerCommand[0] != "ffplay" {
		t.Errorf("PlayerCommand = %v", cfg.PlayerCommand)
	}
	if cfg.DurationTimeout != 10*time.Second {
		t.Errorf("DurationTimeout = %v, want 10s", cfg.DurationTimeout)
	}
	if cfg.PositionInterval != time.Second {
		t.Errorf("PositionInterval = %v, want 1s", cfg.PositionInterval)
	}
	if cfg.ImportWorkers != 4 {
		t.Errorf("ImportWorkers = %d, want 4", cfg.ImportWorkers)
	}
	if cfg.OutputFormat != "{{.Name}}" {
		t.Errorf("OutputFormat = %q", cfg.OutputFormat)
	}
	if filepath.Base(cfg.DataDir) != "audioplayer" {
		t.Errorf("DataDir = %q, want .../audioplayer", cfg.DataDir)
	}
}

func TestLoad_File(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()

	content := `data_dir: /tmp/music
player_command: mpv --no-video
duration_timeout: 3s
import_workers: 8
marquee_enabled: true
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DataDir != "/tmp/music" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if len(cfg.PlayerCommand) != 2 || cfg.PlayerCommand[1] != "--no-video" {
		t.Errorf("PlayerCommand = %v", cfg.PlayerCommand)
	}
	if cfg.DurationTimeout != 3*time.Second {
		t.Errorf("DurationTimeout = %v, want 3s", cfg.DurationTimeout)
	}
	if cfg.ImportWorkers != 8 {
		t.Errorf("ImportWorkers = %d, want 8", cfg.ImportWorkers)
	}
	if !cfg.MarqueeEnabled {
		t.Error("MarqueeEnabled should be true")
	}
	if cfg.ReadyTimeout != 5*time.Second {
		t.Errorf("ReadyTimeout = %v, want default 5s", cfg.ReadyTimeout)
	}
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUDIOPLAYER_LOG_LEVEL", "debug")
	t.Setenv("AUDIOPLAYER_OUTPUT_WIDTH", "40")

	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.OutputWidth != 40 {
		t.Errorf("OutputWidth = %d, want 40", cfg.OutputWidth)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := load(dir); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()

	cfg, err := load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.LogLevel = "warn"
	cfg.ReadyTimeout = 2 * time.Second
	cfg.PlayerCommand = []string{"mpv", "--no-video"}

	if err := cfg.saveTo(dir); err != nil {
		t.Fatalf("saveTo: %v", err)
	}

	reloaded, err := load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", reloaded.LogLevel)
	}
	if reloaded.ReadyTimeout != 2*time.Second {
		t.Errorf("ReadyTimeout = %v, want 2s", reloaded.ReadyTimeout)
	}
	if len(reloaded.PlayerCommand) != 2 || reloaded.PlayerCommand[0] != "mpv" {
		t.Errorf("PlayerCommand = %v", reloaded.PlayerCommand)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
