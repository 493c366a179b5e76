package playlist

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfRange is returned for an index outside the playlist
var ErrOutOfRange = errors.New("index out of range")

// NoTrack is the current index of a playlist with no selected track
const NoTrack = -1

// Playlist is an ordered sequence of tracks with an optional current index
type Playlist struct {
	mu      sync.RWMutex
	tracks  []Track
	current int
}

// New creates an empty playlist
func New() *Playlist {
	return &Playlist{current: NoTrack}
}

// Len returns the number of tracks
func (p *Playlist) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tracks)
}

// IsEmpty returns true if the playlist has no tracks
func (p *Playlist) IsEmpty() bool {
	return p.Len() == 0
}

// Tracks returns a copy of the tracks in order
func (p *Playlist) Tracks() []Track {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// Track returns the track at index i
func (p *Playlist) Track(i int) (Track, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if i < 0 || i >= len(p.tracks) {
		return Track{}, fmt.Errorf("track %d of %d: %w", i, len(p.tracks), ErrOutOfRange)
	}
	return p.tracks[i], nil
}

// Index returns the position of the track called name, or -1
func (p *Playlist) Index(name string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for i, t := range p.tracks {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// CurrentIndex returns the current index, or NoTrack
func (p *Playlist) CurrentIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Current returns the current track, or false if none is selected
func (p *Playlist) Current() (Track, int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current < 0 || p.current >= len(p.tracks) {
		return Track{}, NoTrack, false
	}
	return p.tracks[p.current], p.current, true
}

// SetCurrent selects the track at index i
func (p *Playlist) SetCurrent(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.tracks) {
		return fmt.Errorf("select track %d of %d: %w", i, len(p.tracks), ErrOutOfRange)
	}
	p.current = i
	return nil
}

// NextIndex returns the index after i, wrapping to 0 after the last track.
// Returns NoTrack for an empty playlist.
func (p *Playlist) NextIndex(i int) int {
	n := p.Len()
	if n == 0 {
		return NoTrack
	}
	if i < 0 || i >= n-1 {
		return 0
	}
	return i + 1
}

// PrevIndex returns the index before i, wrapping to the last track before 0.
// Returns NoTrack for an empty playlist.
func (p *Playlist) PrevIndex(i int) int {
	n := p.Len()
	if n == 0 {
		return NoTrack
	}
	if i <= 0 || i >= n {
		return n - 1
	}
	return i - 1
}

// Replace swaps in a whole new track list and returns the tracks that were
// dropped. A current index that no longer fits is reset to NoTrack.
func (p *Playlist) Replace(tracks []Track) []Track {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.tracks
	p.tracks = append([]Track(nil), tracks...)
	if p.current >= len(p.tracks) {
		p.current = NoTrack
	}
	return old
}

// Merge appends a batch of tracks. A track whose name is already present
// replaces the existing entry in place. Returns the replaced tracks.
func (p *Playlist) Merge(batch []Track) []Track {
	p.mu.Lock()
	defer p.mu.Unlock()

	var replaced []Track
	for _, t := range batch {
		found := false
		for i := range p.tracks {
			if p.tracks[i].Name == t.Name {
				replaced = append(replaced, p.tracks[i])
				p.tracks[i] = t
				found = true
				break
			}
		}
		if !found {
			p.tracks = append(p.tracks, t)
		}
	}
	return replaced
}

// Remove deletes the track called name. The current index follows the
// track it pointed at, or is reset when that track is removed.
func (p *Playlist) Remove(name string) (Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, t := range p.tracks {
		if t.Name != name {
			continue
		}
		p.tracks = append(p.tracks[:i:i], p.tracks[i+1:]...)
		switch {
		case p.current == i:
			p.current = NoTrack
		case p.current > i:
			p.current--
		}
		return t, true
	}
	return Track{}, false
}

// Clear empties the playlist and returns the removed tracks
func (p *Playlist) Clear() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.tracks
	p.tracks = nil
	p.current = NoTrack
	return old
}
