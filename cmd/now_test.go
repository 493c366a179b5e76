package cmd

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "no padding when width is negative",
			input:    "Hello",
			width:    -1,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "This is a very long string that needs truncation",
			width:    20,
			expected: "This is a very lo...",
		},
		{
			name:     "handle emoji correctly",
			input:    "ðŸŽµ Music",
			width:    15,
			expected: "ðŸŽµ Music       ", // emoji is 2 chars wide, so 8 total + 7 spaces
		},
		{
			name:     "truncate emoji text",
			input:    "ðŸŽµ This is a very long song title",
			width:    15,
			expected: "ðŸŽµ This is a...",
		},
		{
			name:     "handle unicode characters",
			input:    "æ—¥æœ¬èªž",
			width:    10,
			expected: "æ—¥æœ¬èªž    ",
		},
		{
			name:     "truncate unicode text",
			input:    "æ—¥æœ¬èªžã¨ã¦ã‚‚é•·ã„ãƒ†ã‚­ã‚¹ãƒˆ",
			width:    10,
			expected: "æ—¥æœ¬èªž... ", // æ—¥æœ¬èªž is 6 chars, ... is 3, need 1 space
		},
		{
			name:     "empty string padding",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "single character padding",
			input:    "A",
			width:    5,
			expected: "A    ",
		},
		{
			name:     "minimum width for truncation",
			input:    "Hello",
			width:    3,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}

			// Verify the result has the expected display width (if width > 0)
			if tt.width > 0 {
				resultWidth := runewidth.StringWidth(result)
				if resultWidth != tt.width {
					t.Errorf("padToWidth(%q, %d) produced width %d, expected %d",
						tt.input, tt.width, resultWidth, tt.width)
				}
			}
		})
	}
}

func TestFormatNowPlaying(t *testing.T) {
	np := &NowPlaying{
		Name:     "Track 01",
		File:     "Track 01.mp3",
		Artist:   "Artist",
		Title:    "Song",
		Index:    3,
		Duration: "03:25",
		Position: "01:02",
	}

	tests := []struct {
		name     string
		format   string
		expected string
		wantErr  bool
	}{
		{name: "name only", format: "{{.Name}}", expected: "Track 01"},
		{name: "position and duration", format: "{{.Index}}. {{.Name}} [{{.Position}}/{{.Duration}}]", expected: "3. Track 01 [01:02/03:25]"},
		{name: "tags", format: "{{.Artist}} - {{.Title}}", expected: "Artist - Song"},
		{name: "invalid template", format: "{{.Name", wantErr: true},
		{name: "unknown field", format: "{{.Album}}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatNowPlaying(np, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("formatNowPlaying: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMarqueeFrame(t *testing.T) {
	tests := []struct {
		offset   int
		expected string
	}{
		{offset: 0, expected: "abcd"},
		{offset: 5, expected: "f | "},
		{offset: 8, expected: " abc"},
		{offset: 9, expected: "abcd"},
		{offset: -1, expected: " abc"},
	}

	for _, tt := range tests {
		if got := marqueeFrame("abcdef", 4, " | ", tt.offset); got != tt.expected {
			t.Errorf("marqueeFrame(offset=%d) = %q, want %q", tt.offset, got, tt.expected)
		}
	}
}

func TestMarqueeTextShortText(t *testing.T) {
	got := marqueeText("Hi", 6, 2, " • ")
	if got != "Hi    " {
		t.Errorf("got %q, want static padded text", got)
	}

	long := marqueeText("A rather long track name", 10, 2, " • ")
	if w := runewidth.StringWidth(long); w != 10 {
		t.Errorf("marquee width = %d, want 10", w)
	}
}
