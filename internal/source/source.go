// Package source opens input videos and maps their logical frame numbers
// onto container timestamps. The index is built once when the source is
// opened and is immutable afterwards, so any number of export workers may
// resolve frames concurrently. Decoding itself is never shared: every
// export job and preview runs its own short-lived ffmpeg process, which
// sidesteps the seek-corruption problems of a shared decode cursor.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/kikiluvv/frameforge/internal/ffmpeg"
	"github.com/kikiluvv/frameforge/internal/logging"
	"github.com/kikiluvv/frameforge/pkg/util"
	"github.com/rs/zerolog"
)

var (
	// ErrUnreadableSource marks files that cannot be opened or probed
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrOutOfRange marks frame numbers outside [0, TotalFrames)
	ErrOutOfRange = errors.New("frame number out of range")
)

// DecodeKey is the seek target retrieving one exact frame: the frame's
// presentation timestamp in seconds
type DecodeKey struct {
	PTS float64
}

// Video is one opened input file together with its frame index
type Video struct {
	path   string
	info   *ffmpeg.VideoInfo
	index  []float64
	exec   *ffmpeg.Executor
	logger zerolog.Logger
	closed bool
}

// Open probes the file and scans its packets once to build the frame
// index. The scan is authoritative for the frame count; container
// metadata routinely over- or under-reports it for VFR material.
func Open(ctx context.Context, exec *ffmpeg.Executor, path string) (*Video, error) {
	logger := logging.WithComponent("source")

	if !util.FileExists(path) {
		return nil, fmt.Errorf("%w: %s: no such file", ErrUnreadableSource, path)
	}

	info, err := exec.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableSource, path, err)
	}

	index, err := exec.ScanFrames(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableSource, path, err)
	}

	if info.FrameCount != len(index) {
		logger.Debug().
			Str("path", path).
			Int("probed", info.FrameCount).
			Int("scanned", len(index)).
			Msg("frame count corrected from packet scan")
		info.FrameCount = len(index)
	}

	logger.Info().
		Str("path", path).
		Int("frames", info.FrameCount).
		Float64("fps", info.FPS).
		Int("width", info.Width).
		Int("height", info.Height).
		Bool("audio", info.HasAudio).
		Msg("source opened")

	return &Video{
		path:   path,
		info:   info,
		index:  index,
		exec:   exec,
		logger: logger,
	}, nil
}

// NewFromIndex constructs a Video from an already-computed frame index,
// bypassing the probe and scan. The index must be ascending presentation
// timestamps, one per logical frame.
func NewFromIndex(path string, info *ffmpeg.VideoInfo, index []float64) *Video {
	inf := *info
	inf.FrameCount = len(index)
	return &Video{
		path:   path,
		info:   &inf,
		index:  index,
		logger: logging.WithComponent("source"),
	}
}

// Path returns the source file path
func (v *Video) Path() string { return v.path }

// Info returns the probed metadata
func (v *Video) Info() *ffmpeg.VideoInfo { return v.info }

// TotalFrames returns the scanned frame count
func (v *Video) TotalFrames() int { return len(v.index) }

// FPS returns the native frame rate
func (v *Video) FPS() float64 { return v.info.FPS }

// HasAudio reports whether the source carries an audio stream
func (v *Video) HasAudio() bool { return v.info.HasAudio }

// Resolve maps a logical frame number to its decode key. Safe for
// concurrent use; repeated calls for the same frame always return the
// same key.
func (v *Video) Resolve(frame int) (DecodeKey, error) {
	if frame < 0 || frame >= len(v.index) {
		return DecodeKey{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, frame, len(v.index))
	}
	return DecodeKey{PTS: v.index[frame]}, nil
}

// DecodeFrameImage decodes the given logical frame for display. Each call
// runs its own decoder; no state is shared with concurrent exports.
func (v *Video) DecodeFrameImage(ctx context.Context, frame int) (image.Image, error) {
	key, err := v.Resolve(frame)
	if err != nil {
		return nil, err
	}
	return v.exec.DecodeFrame(ctx, v.path, key.PTS)
}

// WriteFrame decodes the given logical frame and writes it to a PNG file
func (v *Video) WriteFrame(ctx context.Context, frame int, output string) error {
	key, err := v.Resolve(frame)
	if err != nil {
		return err
	}
	return v.exec.WriteFrame(ctx, v.path, output, key.PTS)
}

// FrameDuration converts a frame count to wall-clock time at the native rate
func (v *Video) FrameDuration(frames int) time.Duration {
	if v.info.FPS <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / v.info.FPS * float64(time.Second))
}

// Close releases the source. The index is cheap to keep, so Close only
// flags the handle; decode processes are per-call and own their lifetime.
func (v *Video) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.logger.Debug().Str("path", v.path).Msg("source closed")
}
