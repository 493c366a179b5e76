package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog"
)

// DefaultDurationTimeout bounds how long a single duration read may take
const DefaultDurationTimeout = 10 * time.Second

// ErrDurationTimeout is returned when the decoder does not report a duration in time
var ErrDurationTimeout = errors.New("duration read timed out")

// Metadata holds the derived properties of an audio file
type Metadata struct {
	Duration time.Duration
	Artist   string
	Title    string
}

// Result is everything extracted from one file
type Result struct {
	Metadata Metadata
	Cover    *Cover // nil when the file carries no usable cover
}

// ExtractError reports a failure to derive part of a file's metadata.
//
// The accompanying Result is still usable; Recoverable tells callers
// whether the track can be kept.
type ExtractError struct {
	Name string // File name
	Err  error
}

// Error returns the error message.
func (e *ExtractError) Error() string {
	return fmt.Sprintf("metadata: %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Recoverable returns true if the track is playable despite the error.
// Cancellation is the only failure that is not.
func (e *ExtractError) Recoverable() bool {
	return !errors.Is(e.Err, context.Canceled)
}

// durationResult is the completion value of an asynchronous duration read
type durationResult struct {
	duration time.Duration
	err      error
}

// Extractor derives duration, tags and cover art from raw audio bytes
type Extractor struct {
	decoder Decoder
	timeout time.Duration
	logger  zerolog.Logger
}

// NewExtractor creates an Extractor. A timeout <= 0 uses DefaultDurationTimeout.
func NewExtractor(decoder Decoder, timeout time.Duration, logger zerolog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultDurationTimeout
	}
	return &Extractor{
		decoder: decoder,
		timeout: timeout,
		logger:  logger.With().Str("component", "metadata").Logger(),
	}
}

// measure starts decoding in the background and returns its completion signal.
// The channel receives exactly one value.
func (e *Extractor) measure(ctx context.Context, data []byte) <-chan durationResult {
	done := make(chan durationResult, 1)
	go func() {
		d, err := e.decoder.Duration(ctx, data)
		done <- durationResult{duration: d, err: err}
	}()
	return done
}

// Duration waits for the decoder to report a duration, up to the duration timeout
func (e *Extractor) Duration(ctx context.Context, data []byte) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	select {
	case res := <-e.measure(ctx, data):
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			return 0, ErrDurationTimeout
		}
		return res.duration, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, ErrDurationTimeout
		}
		return 0, ctx.Err()
	}
}

// Extract derives metadata and cover art for the file called name.
//
// Tag-embedded pictures are preferred over the raw JPEG marker scan.
// Covers that do not decode are dropped. A duration failure yields an
// *ExtractError together with a Result whose Duration is zero; it is
// recoverable unless ctx was cancelled.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (Result, error) {
	var res Result

	artist, title, picture := readTags(data)
	res.Metadata.Artist = artist
	res.Metadata.Title = title

	switch {
	case picture.Valid():
		res.Cover = picture
	default:
		if scanned := ScanCover(data); scanned.Valid() {
			res.Cover = scanned
		} else if scanned != nil {
			e.logger.Debug().Str("track", name).Msg("Discarding undecodable cover")
		}
	}

	dur, err := e.Duration(ctx, data)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.Warn().Err(err).Str("track", name).Msg("Failed to read duration")
		}
		return res, &ExtractError{Name: name, Err: err}
	}
	res.Metadata.Duration = dur

	return res, nil
}

// readTags reads artist, title and the attached picture when the data
// carries a recognised tag format
func readTags(data []byte) (artist, title string, picture *Cover) {
	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return "", "", nil
	}

	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		mime := pic.MIMEType
		if mime == "" {
			mime = "image/" + pic.Ext
		}
		picture = &Cover{Data: pic.Data, MIMEType: mime}
	}

	return m.Artist(), m.Title(), picture
}
