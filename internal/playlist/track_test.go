package playlist

import (
	"testing"
	"time"

	"github.com/eldhoz-sb/Audio-Player/internal/metadata"
)

func metadataWithDuration(d time.Duration) metadata.Metadata {
	return metadata.Metadata{Duration: d}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{name: "song.mp3", expected: "song"},
		{name: "my.band.flac", expected: "my.band"},
		{name: "no-extension", expected: "no-extension"},
		{name: "trailing.", expected: "trailing."},
		{name: "dir.d/file", expected: "dir.d/file"},
		{name: "日本語.ogg", expected: "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Track{Name: tt.name}.DisplayName()
			if got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{input: 125 * time.Second, expected: "02:05"},
		{input: 59 * time.Second, expected: "00:59"},
		{input: 0, expected: "00:00"},
		{input: 1500 * time.Millisecond, expected: "00:01"},
		{input: 3725 * time.Second, expected: "62:05"},
		{input: -5 * time.Second, expected: "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatTime(tt.input); got != tt.expected {
				t.Errorf("FormatTime(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
