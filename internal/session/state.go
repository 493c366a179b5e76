package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Well-known keys of the persisted session file
const (
	KeyLastPlayedItemIndex = "lastPlayedItemIndex"
	KeyLastPlayedPosition  = "lastPlayedPosition"
)

// DefaultPersistInterval bounds how often position updates reach the disk
const DefaultPersistInterval = time.Second

// Snapshot is the resume information for the next run
type Snapshot struct {
	Index    *int          // Last played playlist index (nil if never recorded)
	Position time.Duration // Playback position within that track
}

// HasIndex reports whether a last played index was recorded
func (s Snapshot) HasIndex() bool {
	return s.Index != nil
}

// State manages the session snapshot with thread-safe access and persistence
type State struct {
	mu       sync.RWMutex
	current  Snapshot
	filePath string // Path to session file for persistence

	persistInterval time.Duration
	lastPersist     time.Time
	dirty           bool
}

// New creates a new State instance
// If filePath is provided, attempts to restore the session from disk
func New(filePath string) (*State, error) {
	s := &State{
		filePath:        filePath,
		persistInterval: DefaultPersistInterval,
	}

	if filePath != "" {
		if err := s.restore(); err != nil && !os.IsNotExist(err) {
			// Corrupt session is not fatal, start fresh
			return s, err
		}
	}

	return s, nil
}

// Snapshot returns a copy of the current session
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.current
	if snap.Index != nil {
		idx := *snap.Index
		snap.Index = &idx
	}
	return snap
}

// LastIndex returns the recorded track index, if any
func (s *State) LastIndex() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.Index == nil {
		return 0, false
	}
	return *s.current.Index, true
}

// Position returns the recorded playback position
func (s *State) Position() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Position
}

// SetTrack records a newly selected track and resets the position to 0.
// Written to disk immediately.
func (s *State) SetTrack(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot{Index: &index}
	return s.persist()
}

// SetIndex records the track index without touching the position
func (s *State) SetIndex(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Index = &index
	return s.persist()
}

// UpdatePosition records the playback position.
// Disk writes are throttled to persistInterval; Flush writes any remainder.
func (s *State) UpdatePosition(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if pos == s.current.Position && !s.dirty {
		return nil
	}

	s.current.Position = pos
	s.dirty = true
	return s.throttledPersist()
}

// Flush writes pending changes to disk
func (s *State) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	return s.persist()
}

// Reset clears the recorded index and position
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot{}
	return s.persist()
}

// throttledPersist writes only if persistInterval has elapsed since the last write.
// Must be called with lock held
func (s *State) throttledPersist() error {
	if time.Since(s.lastPersist) < s.persistInterval {
		return nil
	}
	return s.persist()
}

// persist saves the current session to disk
// Must be called with lock held
func (s *State) persist() error {
	if s.filePath == "" {
		s.dirty = false
		return nil
	}

	// Values are string-serialized scalars under well-known keys
	values := map[string]string{
		KeyLastPlayedPosition: strconv.FormatFloat(s.current.Position.Seconds(), 'f', -1, 64),
	}
	if s.current.Index != nil {
		values[KeyLastPlayedItemIndex] = strconv.Itoa(*s.current.Index)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Write atomically via temp file + rename
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return err
	}

	s.lastPersist = time.Now()
	s.dirty = false
	return nil
}

// restore loads the session from disk
func (s *State) restore() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}

	var snap Snapshot
	if raw, ok := values[KeyLastPlayedItemIndex]; ok && raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", KeyLastPlayedItemIndex, raw, err)
		}
		if idx >= 0 {
			snap.Index = &idx
		}
	}
	if raw, ok := values[KeyLastPlayedPosition]; ok && raw != "" {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", KeyLastPlayedPosition, raw, err)
		}
		if secs > 0 {
			snap.Position = time.Duration(secs * float64(time.Second))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snap

	return nil
}
