package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"

	"github.com/kikiluvv/frameforge/pkg/util"
)

// DecodeFrame decodes the single frame at the given presentation timestamp
// and returns it as an image. Used by preview paths only; exports never
// round-trip pixels through Go.
func (e *Executor) DecodeFrame(ctx context.Context, input string, pts float64) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", util.FormatSeconds(pts),
		"-i", input,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("frame decode failed: %w: %s", err, stderr.String())
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame image: %w", err)
	}

	return img, nil
}

// WriteFrame decodes the frame at pts and writes it to a PNG file
func (e *Executor) WriteFrame(ctx context.Context, input, output string, pts float64) error {
	if output == "" {
		return fmt.Errorf("output path is required")
	}

	args := []string{
		"-ss", util.FormatSeconds(pts),
		"-i", input,
		"-frames:v", "1",
		output,
	}

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame export")
		},
	}

	return e.Run(ctx, opts)
}
