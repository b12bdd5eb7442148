package ffmpeg

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kikiluvv/frameforge/pkg/util"
)

// ExtractFrames encodes one frame-bounded range of the input to a new clip
// file. It seeks on the input side to the exact presentation timestamp of
// the first wanted frame and stops after opts.Frames encoded frames, so the
// output holds precisely the planned range. The returned count is the
// number of frames ffmpeg actually emitted; callers compare it against
// opts.Frames to detect decoder drop-outs.
func (e *Executor) ExtractFrames(ctx context.Context, opts ExtractOptions) (int, error) {
	if opts.Input == "" {
		return 0, fmt.Errorf("input path is required")
	}
	if opts.Output == "" {
		return 0, fmt.Errorf("output path is required")
	}
	if opts.Frames <= 0 {
		return 0, fmt.Errorf("frame count must be positive")
	}

	e.logger.Info().
		Str("input", opts.Input).
		Str("output", opts.Output).
		Float64("start_pts", opts.StartPTS).
		Int("frames", opts.Frames).
		Msg("extracting frames")

	args := []string{
		"-ss", util.FormatSeconds(opts.StartPTS),
		"-i", opts.Input,
		"-frames:v", fmt.Sprintf("%d", opts.Frames),
	}

	if len(opts.Filters) > 0 {
		args = append(args, "-vf", strings.Join(opts.Filters, ","))
	}

	codec := opts.VideoCodec
	if codec == "" {
		codec = DefaultVideoCodec
	}
	args = append(args, "-c:v", codec)

	crf := opts.CRF
	if crf == 0 {
		crf = DefaultCRF
	}
	args = append(args, "-crf", fmt.Sprintf("%d", crf))

	preset := opts.Preset
	if preset == "" {
		preset = DefaultPreset
	}
	args = append(args, "-preset", preset)

	if opts.WithAudio {
		audioCodec := opts.AudioCodec
		if audioCodec == "" {
			audioCodec = DefaultAudioCodec
		}
		args = append(args, "-c:a", audioCodec)
		if opts.Duration > 0 {
			args = append(args, "-t", util.FormatDuration(opts.Duration))
		}
	} else {
		args = append(args, "-an")
	}

	args = append(args, "-movflags", "+faststart", opts.Output)

	var encoded atomic.Int64
	runOpts := RunOptions{
		Args: args,
		ProgressHandler: func(p *Progress) {
			encoded.Store(int64(p.Frame))
			if opts.ProgressFunc != nil {
				opts.ProgressFunc(p)
			}
		},
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return int(encoded.Load()), fmt.Errorf("frame extraction failed: %w", err)
	}

	e.logger.Info().
		Str("output", opts.Output).
		Int64("encoded", encoded.Load()).
		Msg("frame extraction complete")

	return int(encoded.Load()), nil
}
