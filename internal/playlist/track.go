package playlist

import (
	"fmt"
	"strings"
	"time"

	"github.com/eldhoz-sb/Audio-Player/internal/metadata"
)

// Track is one playable entry of the playlist
type Track struct {
	Name     string            // File name, also the store key
	Src      string            // Playable source (process-local file path)
	Metadata metadata.Metadata // Duration and tags
	Cover    *metadata.Cover   // Embedded cover image (nil if none)
}

// DisplayName returns the file name without its extension
func (t Track) DisplayName() string {
	return TrimExtension(t.Name)
}

// HasCover reports whether the track carries a cover image
func (t Track) HasCover() bool {
	return t.Cover != nil
}

// TrimExtension removes a trailing ".ext" from name.
// The extension must be non-empty and contain no dot or slash.
func TrimExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return name
	}
	if strings.Contains(name[idx+1:], "/") {
		return name
	}
	return name[:idx]
}

// FormatTime formats a duration as MM:SS.
// Minutes do not wrap at an hour: 3725s is "62:05".
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
