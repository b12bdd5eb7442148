// Package session ties one open source, its edit list and the export
// engine together behind the operations the presentation layer consumes.
// A session is an explicit object handed around by callers; there is no
// process-wide current-source state.
package session

import (
	"context"
	"fmt"
	"image"

	"github.com/kikiluvv/frameforge/internal/config"
	"github.com/kikiluvv/frameforge/internal/editlist"
	"github.com/kikiluvv/frameforge/internal/engine"
	"github.com/kikiluvv/frameforge/internal/extraction"
	"github.com/kikiluvv/frameforge/internal/ffmpeg"
	"github.com/kikiluvv/frameforge/internal/logging"
	"github.com/kikiluvv/frameforge/internal/planner"
	"github.com/kikiluvv/frameforge/internal/source"
	"github.com/kikiluvv/frameforge/internal/transform"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
)

// Thumbnail bounds for preview strips, the preview pane's native size
const (
	thumbWidth  = 384
	thumbHeight = 216
)

// Session is one editing/export session over a single source video
type Session struct {
	logger zerolog.Logger
	cfg    *config.Config
	exec   *ffmpeg.Executor
	engine *engine.Engine

	src   *source.Video
	edits *editlist.EditList
}

// New creates a session from configuration
func New(cfg *config.Config) (*Session, error) {
	logger := logging.WithComponent("session")

	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	eng := engine.New(exec, engine.Options{
		Workers:       cfg.Workers,
		SkipThreshold: cfg.Export.SkipThreshold,
		VideoCodec:    cfg.Export.VideoCodec,
		AudioCodec:    cfg.Export.AudioCodec,
		CRF:           cfg.Export.CRF,
		Preset:        cfg.Export.Preset,
	})

	return &Session{
		logger: logger,
		cfg:    cfg,
		exec:   exec,
		engine: eng,
	}, nil
}

// Open loads a source video, replacing any previously open one. The edit
// list starts out retaining the full timeline.
func (s *Session) Open(ctx context.Context, path string) error {
	if s.src != nil {
		s.src.Close()
	}

	src, err := source.Open(ctx, s.exec, path)
	if err != nil {
		return err
	}

	s.src = src
	s.edits = editlist.New(src.TotalFrames())
	return nil
}

// Source returns the open source video, nil when none is open
func (s *Session) Source() *source.Video { return s.src }

// Edits returns the current edit list
func (s *Session) Edits() *editlist.EditList { return s.edits }

// PreviewFrame decodes one frame for display
func (s *Session) PreviewFrame(ctx context.Context, frame int) (image.Image, error) {
	if s.src == nil {
		return nil, fmt.Errorf("no source open")
	}
	return s.src.DecodeFrameImage(ctx, frame)
}

// StripPositions returns the five sampled frame numbers of a preview
// strip over [start, start+length): first, early, mid, late and last
func StripPositions(start, length int) [5]int {
	return [5]int{
		start,
		start + length/4,
		start + length/2,
		start + 3*length/4,
		start + length - 1,
	}
}

// PreviewStrip decodes the five strip frames of the given window and
// scales each down to thumbnail size
func (s *Session) PreviewStrip(ctx context.Context, start, length int) ([]image.Image, error) {
	if s.src == nil {
		return nil, fmt.Errorf("no source open")
	}
	if length <= 0 {
		return nil, fmt.Errorf("strip length must be positive")
	}

	thumbs := make([]image.Image, 0, 5)
	for _, n := range StripPositions(start, length) {
		img, err := s.PreviewFrame(ctx, n)
		if err != nil {
			return nil, err
		}
		thumbs = append(thumbs, resize.Thumbnail(thumbWidth, thumbHeight, img, resize.Lanczos3))
	}
	return thumbs, nil
}

// ExportFrame writes one decoded frame to a PNG file
func (s *Session) ExportFrame(ctx context.Context, frame int, output string) error {
	if s.src == nil {
		return fmt.Errorf("no source open")
	}
	return s.src.WriteFrame(ctx, frame, output)
}

// DeleteFrames drops a frame range from the edit list
func (s *Session) DeleteFrames(r editlist.FrameRange) error {
	if s.edits == nil {
		return fmt.Errorf("no source open")
	}
	if err := s.edits.Delete(r); err != nil {
		return err
	}
	s.logger.Info().
		Str("range", r.String()).
		Int("retained", s.edits.RetainedCount()).
		Msg("frames deleted")
	return nil
}

// ResetEdits restores the full timeline
func (s *Session) ResetEdits() {
	if s.edits != nil {
		s.edits.Reset()
	}
}

// Plan computes the export jobs without executing anything
func (s *Session) Plan(plan extraction.Plan, spec transform.Spec, outputDir string) ([]planner.Job, error) {
	if s.src == nil {
		return nil, fmt.Errorf("no source open")
	}
	return planner.Plan(s.src, s.edits, plan, spec, outputDir)
}

// PlanAndExport plans and immediately starts the batch export, returning
// its handle for progress and cancellation
func (s *Session) PlanAndExport(ctx context.Context, plan extraction.Plan, spec transform.Spec, outputDir string) (*engine.Batch, error) {
	jobs, err := s.Plan(plan, spec, outputDir)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("plan produced no jobs: every window falls on deleted frames")
	}
	return s.engine.Export(ctx, jobs), nil
}

// Merge concatenates previously exported clips into one file
func (s *Session) Merge(ctx context.Context, inputs []string, output string, reencode bool) error {
	return s.exec.Concat(ctx, ffmpeg.ConcatOptions{
		Inputs:     inputs,
		Output:     output,
		ReEncode:   reencode,
		VideoCodec: s.cfg.Export.VideoCodec,
		AudioCodec: s.cfg.Export.AudioCodec,
		CRF:        s.cfg.Export.CRF,
	})
}

// Close releases the open source, if any
func (s *Session) Close() {
	if s.src != nil {
		s.src.Close()
		s.src = nil
		s.edits = nil
	}
}
