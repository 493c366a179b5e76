package metadata

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration for tag-embedded pictures

	"golang.org/x/image/draw"
)

// JPEG markers used by the cover scan
const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8 // start of image
	markerEOI    = 0xD9 // end of image
	markerSOS    = 0xDA // start of scan
	markerTEM    = 0x01
	markerRST0   = 0xD0
	markerRST7   = 0xD7
)

// Cover is an embedded cover image
type Cover struct {
	Data     []byte
	MIMEType string
}

// FindImageStart returns the offset of the first JPEG start-of-image
// marker (0xFF 0xD8) in data, or -1 if there is none.
// A 0xFF in the final byte never matches.
func FindImageStart(data []byte) int {
	for offset := 0; offset+1 < len(data); offset++ {
		if data[offset] == markerPrefix && data[offset+1] == markerSOI {
			return offset
		}
	}
	return -1
}

// FindImageEnd returns the offset just past the JPEG end-of-image marker
// (0xFF 0xD9) closing the image that starts at start, or -1 if there is none.
//
// Marker segments are skipped by their length, so an end marker inside a
// segment (an EXIF thumbnail in APP1) does not end the image. Where the
// segment structure breaks, the rest is scanned byte by byte.
func FindImageEnd(data []byte, start int) int {
	if start < 0 {
		return -1
	}

	offset := start + 2
	for offset+1 < len(data) && data[offset] == markerPrefix {
		marker := data[offset+1]
		switch {
		case marker == markerPrefix:
			// fill byte
			offset++
			continue
		case marker == markerEOI:
			return offset + 2
		case marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7):
			offset += 2
			continue
		}

		if offset+3 >= len(data) {
			break
		}
		length := int(data[offset+2])<<8 | int(data[offset+3])
		if length < 2 || offset+2+length > len(data) {
			break
		}
		offset += 2 + length

		if marker == markerSOS {
			offset = skipEntropyData(data, offset)
		}
	}

	return scanEOI(data, offset)
}

// skipEntropyData returns the offset of the first marker after scan data.
// Stuffed bytes (0xFF 0x00), restart markers and fill bytes belong to the scan.
func skipEntropyData(data []byte, offset int) int {
	for ; offset+1 < len(data); offset++ {
		if data[offset] != markerPrefix {
			continue
		}
		next := data[offset+1]
		if next == 0x00 || next == markerPrefix || (next >= markerRST0 && next <= markerRST7) {
			continue
		}
		return offset
	}
	return len(data)
}

// scanEOI returns the offset just past the first 0xFF 0xD9 at or after offset
func scanEOI(data []byte, offset int) int {
	for ; offset+1 < len(data); offset++ {
		if data[offset] == markerPrefix && data[offset+1] == markerEOI {
			return offset + 2
		}
	}
	return -1
}

// ScanCover locates a JPEG image embedded anywhere in data.
//
// The image runs from the start-of-image marker to its end-of-image
// marker. Without an end marker the rest of the buffer is taken.
// Returns nil when no start marker is present.
func ScanCover(data []byte) *Cover {
	start := FindImageStart(data)
	if start < 0 {
		return nil
	}

	end := FindImageEnd(data, start)
	if end < 0 {
		end = len(data)
	}

	img := make([]byte, end-start)
	copy(img, data[start:end])

	return &Cover{Data: img, MIMEType: "image/jpeg"}
}

// Valid reports whether the cover decodes as an image
func (c *Cover) Valid() bool {
	if c == nil || len(c.Data) == 0 {
		return false
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(c.Data))
	return err == nil
}

// Dimensions returns the decoded width and height of the cover
func (c *Cover) Dimensions() (width, height int, err error) {
	if c == nil {
		return 0, 0, fmt.Errorf("no cover image")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(c.Data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Thumbnail resizes the cover to fit within maxEdge x maxEdge pixels,
// preserving the aspect ratio, and returns it as JPEG bytes.
// A maxEdge <= 0 only re-encodes the image.
func Thumbnail(c *Cover, maxEdge int) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("no cover image")
	}

	img, _, err := image.Decode(bytes.NewReader(c.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxEdge > 0 && (width > maxEdge || height > maxEdge) {
		if width >= height {
			height = height * maxEdge / width
			width = maxEdge
		} else {
			width = width * maxEdge / height
			height = maxEdge
		}
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}
