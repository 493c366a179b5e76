package playlist

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is a playlist file format
type Format int

const (
	// FormatM3U writes extended M3U (#EXTM3U with #EXTINF lines)
	FormatM3U Format = iota
	// FormatPLS writes the INI-style PLS format
	FormatPLS
)

// ParseFormat maps a name or file extension ("m3u", ".pls") to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "m3u", "m3u8":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	default:
		return FormatM3U, fmt.Errorf("unknown playlist format %q", s)
	}
}

// WritePlaylist writes tracks in the given format.
// Entries reference track names, so the playlist belongs next to the
// exported audio files.
func WritePlaylist(w io.Writer, format Format, tracks []Track) error {
	var content string
	switch format {
	case FormatPLS:
		content = createPLS(tracks)
	default:
		content = createM3U(tracks)
	}
	_, err := io.WriteString(w, content)
	return err
}

func createM3U(tracks []Track) string {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\n")
	for _, t := range tracks {
		sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", lengthSeconds(t), entryTitle(t)))
		sb.WriteString(t.Name + "\n")
	}

	return sb.String()
}

func createPLS(tracks []Track) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, t := range tracks {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, t.Name))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, entryTitle(t)))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, lengthSeconds(t)))
	}
	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(tracks)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// lengthSeconds returns the whole-second duration, or -1 when unknown
func lengthSeconds(t Track) int {
	if t.Metadata.Duration <= 0 {
		return -1
	}
	return int(t.Metadata.Duration.Seconds())
}

func entryTitle(t Track) string {
	if t.Metadata.Artist != "" && t.Metadata.Title != "" {
		return t.Metadata.Artist + " - " + t.Metadata.Title
	}
	if t.Metadata.Title != "" {
		return t.Metadata.Title
	}
	return t.DisplayName()
}

// ExportFiles writes the stored bytes of every track into dir, named by
// track name, and returns the written paths in playlist order.
func (l *Library) ExportFiles(ctx context.Context, dir string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(dir, filepath.Base(e.Name))
		if err := os.WriteFile(path, e.Data, 0644); err != nil {
			return paths, fmt.Errorf("failed to export %s: %w", e.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
