package metadata

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// makeJPEG encodes a solid w x h image as JPEG
func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// withExifThumbnail inserts an APP1 segment carrying thumb right after the SOI of img
func withExifThumbnail(t *testing.T, img, thumb []byte) []byte {
	t.Helper()

	payload := append([]byte("Exif\x00\x00"), thumb...)
	length := len(payload) + 2
	if length > 0xFFFF {
		t.Fatalf("thumbnail too large for APP1: %d bytes", len(thumb))
	}

	out := append([]byte{}, img[:2]...)
	out = append(out, 0xFF, 0xE1, byte(length>>8), byte(length))
	out = append(out, payload...)
	return append(out, img[2:]...)
}

func TestFindImageStart(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected int
	}{
		{
			name:     "marker after padding",
			data:     []byte{0x00, 0x00, 0xFF, 0xD8, 0x01, 0x02},
			expected: 2,
		},
		{
			name:     "marker at start",
			data:     []byte{0xFF, 0xD8},
			expected: 0,
		},
		{
			name:     "first of several markers",
			data:     []byte{0x01, 0xFF, 0xD8, 0xFF, 0xD8},
			expected: 1,
		},
		{
			name:     "no marker",
			data:     []byte{0x00, 0xFF, 0xD9, 0xD8, 0xFF},
			expected: -1,
		},
		{
			name:     "prefix in last byte",
			data:     []byte{0x00, 0x00, 0xFF},
			expected: -1,
		},
		{
			name:     "empty buffer",
			data:     nil,
			expected: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindImageStart(tt.data)
			if got != tt.expected {
				t.Errorf("FindImageStart() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestFindImageEnd(t *testing.T) {
	data := []byte{0x00, 0xFF, 0xD8, 0xAA, 0xFF, 0xD9, 0xBB}

	if got := FindImageEnd(data, 1); got != 6 {
		t.Errorf("FindImageEnd() = %d, want 6", got)
	}
	if got := FindImageEnd(data, -1); got != -1 {
		t.Errorf("FindImageEnd(start=-1) = %d, want -1", got)
	}
	if got := FindImageEnd([]byte{0xFF, 0xD8, 0x01}, 0); got != -1 {
		t.Errorf("FindImageEnd without EOI = %d, want -1", got)
	}
}

func TestFindImageEndSkipsSegments(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected int
	}{
		{
			name:     "end marker inside a segment",
			data:     []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x04, 0xFF, 0xD9, 0xFF, 0xD9},
			expected: 10,
		},
		{
			name: "stuffed and restart bytes in scan data",
			data: []byte{
				0xFF, 0xD8,
				0xFF, 0xDA, 0x00, 0x02,
				0x11, 0xFF, 0x00, 0x22, 0xFF, 0xD0, 0x33,
				0xFF, 0xD9, 0x44,
			},
			expected: 15,
		},
		{
			name:     "segment length past the buffer",
			data:     []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x7F, 0xFF, 0x01, 0xFF, 0xD9},
			expected: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindImageEnd(tt.data, 0); got != tt.expected {
				t.Errorf("FindImageEnd() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestScanCover(t *testing.T) {
	t.Run("slices up to end-of-image marker", func(t *testing.T) {
		data := []byte{0x00, 0xFF, 0xD8, 0xAA, 0xFF, 0xD9, 0xBB, 0xCC}
		c := ScanCover(data)
		if c == nil {
			t.Fatal("expected cover")
		}
		want := []byte{0xFF, 0xD8, 0xAA, 0xFF, 0xD9}
		if !bytes.Equal(c.Data, want) {
			t.Errorf("cover data = %x, want %x", c.Data, want)
		}
		if c.MIMEType != "image/jpeg" {
			t.Errorf("MIMEType = %q", c.MIMEType)
		}
	})

	t.Run("runs to end without end-of-image marker", func(t *testing.T) {
		data := []byte{0x00, 0x00, 0xFF, 0xD8, 0x01, 0x02}
		c := ScanCover(data)
		if c == nil {
			t.Fatal("expected cover")
		}
		want := []byte{0xFF, 0xD8, 0x01, 0x02}
		if !bytes.Equal(c.Data, want) {
			t.Errorf("cover data = %x, want %x", c.Data, want)
		}
	})

	t.Run("no marker", func(t *testing.T) {
		if c := ScanCover([]byte{1, 2, 3, 4}); c != nil {
			t.Errorf("expected nil cover, got %d bytes", len(c.Data))
		}
	})

	t.Run("embedded image with trailing audio", func(t *testing.T) {
		img := makeJPEG(t, 8, 8)
		data := append([]byte("junk-before"), img...)
		data = append(data, []byte("trailing audio frames")...)

		c := ScanCover(data)
		if c == nil {
			t.Fatal("expected cover")
		}
		if !c.Valid() {
			t.Error("expected scanned cover to decode")
		}
		if !bytes.HasPrefix(c.Data, []byte{0xFF, 0xD8}) {
			t.Error("cover should start at SOI")
		}
		if bytes.Contains(c.Data, []byte("trailing")) {
			t.Error("cover should not include trailing data")
		}
	})
}

func TestScanCoverWithExifThumbnail(t *testing.T) {
	img := withExifThumbnail(t, makeJPEG(t, 32, 32), makeJPEG(t, 4, 4))
	if !(&Cover{Data: img}).Valid() {
		t.Fatal("fixture should decode")
	}

	data := append([]byte("ID3-ish header"), img...)
	data = append(data, []byte("audio frames")...)

	c := ScanCover(data)
	if c == nil {
		t.Fatal("expected cover")
	}
	if !bytes.Equal(c.Data, img) {
		t.Errorf("cover length = %d, want %d", len(c.Data), len(img))
	}
	if w, h, err := c.Dimensions(); err != nil || w != 32 || h != 32 {
		t.Errorf("Dimensions = %dx%d, %v; want 32x32", w, h, err)
	}
}

func TestCoverValid(t *testing.T) {
	var nilCover *Cover
	if nilCover.Valid() {
		t.Error("nil cover should not be valid")
	}

	if (&Cover{Data: []byte{0xFF, 0xD8, 0x01, 0x02}}).Valid() {
		t.Error("truncated JPEG should not be valid")
	}

	if !(&Cover{Data: makeJPEG(t, 4, 4)}).Valid() {
		t.Error("encoded JPEG should be valid")
	}
}

func TestCoverDimensions(t *testing.T) {
	w, h, err := (&Cover{Data: makeJPEG(t, 12, 7)}).Dimensions()
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 12 || h != 7 {
		t.Errorf("Dimensions = %dx%d, want 12x7", w, h)
	}

	var nilCover *Cover
	if _, _, err := nilCover.Dimensions(); err == nil {
		t.Error("expected error for nil cover")
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxEdge      int
		wantW, wantH int
	}{
		{name: "landscape shrinks to width", w: 200, h: 100, maxEdge: 50, wantW: 50, wantH: 25},
		{name: "portrait shrinks to height", w: 100, h: 200, maxEdge: 50, wantW: 25, wantH: 50},
		{name: "small image unchanged", w: 20, h: 10, maxEdge: 50, wantW: 20, wantH: 10},
		{name: "zero max edge re-encodes", w: 30, h: 30, maxEdge: 0, wantW: 30, wantH: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cover{Data: makeJPEG(t, tt.w, tt.h), MIMEType: "image/jpeg"}

			out, err := Thumbnail(c, tt.maxEdge)
			if err != nil {
				t.Fatalf("Thumbnail: %v", err)
			}

			cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("decode thumbnail: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("thumbnail size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}

	if _, err := Thumbnail(nil, 10); err == nil {
		t.Error("expected error for nil cover")
	}
}
