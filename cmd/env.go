package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldhoz-sb/Audio-Player/internal/config"
	"github.com/eldhoz-sb/Audio-Player/internal/metadata"
	"github.com/eldhoz-sb/Audio-Player/internal/playlist"
	"github.com/eldhoz-sb/Audio-Player/internal/session"
	"github.com/eldhoz-sb/Audio-Player/internal/store"
)

const (
	libraryFile = "library.db"
	sessionFile = "session.json"
)

// environment is everything a command needs to work with the library
type environment struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     *store.Store
	session   *session.State
	extractor *metadata.Extractor
	library   *playlist.Library
}

// loadConfig loads the config file and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	return cfg, nil
}

// openEnvironment opens the store and session in the data directory.
// With quiet set, logs go only to a log file so a full-screen UI stays intact.
func openEnvironment(quiet bool) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var logger zerolog.Logger
	if quiet && cfg.LogFile == "" {
		logger = zerolog.New(io.Discard)
	} else {
		logger = setupLogger(cfg.LogFile, cfg.LogLevel)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	logger.Debug().Str("data_dir", cfg.DataDir).Msg("Using data directory")

	st, err := store.Open(filepath.Join(cfg.DataDir, libraryFile))
	if err != nil {
		return nil, err
	}

	sess, err := session.New(filepath.Join(cfg.DataDir, sessionFile))
	if err != nil {
		logger.Warn().Err(err).Msg("Ignoring unreadable session file")
	}

	extractor := metadata.NewExtractor(metadata.DefaultDecoder(cfg.FFProbePath), cfg.DurationTimeout, logger)

	library, err := playlist.NewLibrary(st, extractor, playlist.LibraryConfig{Workers: cfg.ImportWorkers}, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &environment{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		session:   sess,
		extractor: extractor,
		library:   library,
	}, nil
}

// Close releases the library sources and closes the store
func (e *environment) Close() {
	if err := e.library.Close(); err != nil {
		e.logger.Debug().Err(err).Msg("Failed to release library sources")
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to close library")
	}
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
