package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// ErrUnknownDuration is returned when a decoder cannot determine a duration
var ErrUnknownDuration = errors.New("unknown duration")

// Decoder determines the playable duration of raw audio bytes
type Decoder interface {
	Duration(ctx context.Context, data []byte) (time.Duration, error)
}

// MP3Decoder reads MPEG audio frame headers with a pure Go decoder
type MP3Decoder struct{}

// Duration returns the total length of the MP3 stream in data
func (MP3Decoder) Duration(ctx context.Context, data []byte) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("mp3: %w", err)
	}

	// Decoded output is 16-bit stereo: 4 bytes per sample frame
	length := d.Length()
	rate := d.SampleRate()
	if length <= 0 || rate <= 0 {
		return 0, ErrUnknownDuration
	}

	samples := length / 4
	return time.Duration(samples) * time.Second / time.Duration(rate), nil
}

// FFProbeDecoder asks an external ffprobe binary for the container duration.
// The audio bytes are passed on stdin.
type FFProbeDecoder struct {
	Path string // ffprobe executable (default "ffprobe")
}

// Duration runs ffprobe over data and parses format.duration
func (f FFProbeDecoder) Duration(ctx context.Context, data []byte) (time.Duration, error) {
	bin := f.Path
	if bin == "" {
		bin = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-i", "pipe:0",
	)
	cmd.Stdin = bytes.NewReader(data)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return 0, fmt.Errorf("ffprobe error: %s", string(exitErr.Stderr))
		}
		return 0, fmt.Errorf("failed to execute ffprobe: %w", err)
	}

	return parseDurationOutput(out)
}

// parseDurationOutput extracts format.duration from ffprobe JSON output
func parseDurationOutput(out []byte) (time.Duration, error) {
	var result struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if result.Format.Duration == "" {
		return 0, ErrUnknownDuration
	}

	secs, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ffprobe duration %q: %w", result.Format.Duration, err)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

// ChainDecoder tries each decoder in order and returns the first success
type ChainDecoder []Decoder

// Duration implements Decoder
func (c ChainDecoder) Duration(ctx context.Context, data []byte) (time.Duration, error) {
	var errs []error
	for _, d := range c {
		dur, err := d.Duration(ctx, data)
		if err == nil {
			return dur, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return 0, ErrUnknownDuration
	}
	return 0, errors.Join(errs...)
}

// DefaultDecoder tries the MP3 decoder first and falls back to ffprobe
func DefaultDecoder(ffprobePath string) Decoder {
	return ChainDecoder{MP3Decoder{}, FFProbeDecoder{Path: ffprobePath}}
}
