// Package engine executes export jobs on a bounded worker pool. Jobs are
// independent: each one runs its own decode/encode process, shares nothing
// mutable with its siblings, and fails alone. A batch always finishes with
// a complete per-job report; nothing is silently dropped.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/kikiluvv/frameforge/internal/ffmpeg"
	"github.com/kikiluvv/frameforge/internal/logging"
	"github.com/kikiluvv/frameforge/internal/planner"
	"github.com/kikiluvv/frameforge/pkg/util"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrDecodeFailed marks jobs whose decode drop-outs exceeded the
	// configured threshold
	ErrDecodeFailed = errors.New("decode failed")
	// ErrEncodeFailed marks output-side encode failures
	ErrEncodeFailed = errors.New("encode failed")
	// ErrWriteFailed marks filesystem failures around the output file
	ErrWriteFailed = errors.New("write failed")
)

// Runner abstracts the extraction pass so the pool can be exercised
// without ffmpeg on the machine
type Runner interface {
	ExtractFrames(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error)
}

// Status is the lifecycle state of one job within a batch
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// JobResult is the diagnostic record of one job
type JobResult struct {
	Index          int
	OutputPath     string
	Status         Status
	FramesExpected int
	FramesEncoded  int
	FramesSkipped  int
	Err            error
}

// Options tunes engine behavior
type Options struct {
	// Workers bounds concurrent jobs; zero means one per CPU
	Workers int
	// SkipThreshold is the fraction of a job's frames that may fail to
	// decode before the job itself fails and its output is discarded.
	// Zero fails the job on any skipped frame.
	SkipThreshold float64

	VideoCodec string
	AudioCodec string
	CRF        int
	Preset     string
}

// Engine executes export jobs
type Engine struct {
	logger zerolog.Logger
	runner Runner
	opts   Options
}

// New creates an engine running jobs through the given runner
func New(runner Runner, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	// Zero is a legal strict setting, not an unset value; config supplies
	// the default. Only negatives are clamped.
	if opts.SkipThreshold < 0 {
		opts.SkipThreshold = 0
	}
	return &Engine{
		logger: logging.WithComponent("engine"),
		runner: runner,
		opts:   opts,
	}
}

// Export starts a batch over the given jobs and returns its handle
// immediately. Completion order is whatever the pool produces; the report
// is always grouped by job index.
func (e *Engine) Export(ctx context.Context, jobs []planner.Job) *Batch {
	ctx, cancel := context.WithCancel(ctx)

	b := &Batch{
		ID:      uuid.NewString(),
		cancel:  cancel,
		done:    make(chan struct{}),
		results: make([]JobResult, len(jobs)),
	}
	for i, job := range jobs {
		b.results[i] = JobResult{
			Index:          i,
			OutputPath:     job.OutputPath,
			Status:         StatusPending,
			FramesExpected: job.Range.Len(),
		}
	}

	e.logger.Info().
		Str("batch", b.ID).
		Int("jobs", len(jobs)).
		Int("workers", e.opts.Workers).
		Msg("starting batch export")

	go func() {
		defer close(b.done)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Workers)

		for _, job := range jobs {
			job := job
			g.Go(func() error {
				e.runJob(gctx, b, job)
				// Job failures are recorded, never propagated: one bad
				// job must not abort its siblings
				return nil
			})
		}

		g.Wait()
		e.logger.Info().Str("batch", b.ID).Msg("batch export finished")
	}()

	return b
}

func (e *Engine) runJob(ctx context.Context, b *Batch, job planner.Job) {
	if ctx.Err() != nil {
		// Cancelled before the job ever started; stays pending
		return
	}

	b.setStatus(job.Index, StatusRunning, 0, nil)

	logger := e.logger.With().Str("batch", b.ID).Int("job", job.Index).Logger()
	expected := job.Range.Len()

	key, err := job.Source.Resolve(job.Range.Start)
	if err != nil {
		b.setStatus(job.Index, StatusFailed, 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err))
		return
	}

	if err := util.EnsureDir(filepath.Dir(job.OutputPath)); err != nil {
		b.setStatus(job.Index, StatusFailed, 0, fmt.Errorf("%w: %v", ErrWriteFailed, err))
		return
	}

	// Encode into a staging path and rename on success, so a failed or
	// cancelled job never leaves a half-written clip at the final path
	staging := job.OutputPath + ".part.mp4"

	encoded, err := e.runner.ExtractFrames(ctx, ffmpeg.ExtractOptions{
		Input:      job.Source.Path(),
		StartPTS:   key.PTS,
		Frames:     expected,
		Duration:   job.Source.FrameDuration(expected),
		Filters:    job.Spec.Filters(),
		WithAudio:  job.Source.HasAudio(),
		VideoCodec: e.opts.VideoCodec,
		AudioCodec: e.opts.AudioCodec,
		CRF:        e.opts.CRF,
		Preset:     e.opts.Preset,
		Output:     staging,
	})

	if err != nil {
		util.CleanupFiles(staging)
		if ctx.Err() != nil {
			logger.Warn().Msg("job cancelled, partial output removed")
			b.setStatus(job.Index, StatusFailed, encoded, context.Canceled)
			return
		}
		logger.Error().Err(err).Msg("job failed")
		b.setStatus(job.Index, StatusFailed, encoded, fmt.Errorf("%w: %v", ErrEncodeFailed, err))
		return
	}

	skipped := expected - encoded
	if skipped < 0 {
		skipped = 0
	}
	if encoded == 0 || float64(skipped) > e.opts.SkipThreshold*float64(expected) {
		util.CleanupFiles(staging)
		logger.Error().
			Int("expected", expected).
			Int("encoded", encoded).
			Msg("decode drop-outs exceeded threshold, output discarded")
		b.setStatus(job.Index, StatusFailed, encoded,
			fmt.Errorf("%w: %d of %d frames decoded", ErrDecodeFailed, encoded, expected))
		return
	}

	if err := os.Rename(staging, job.OutputPath); err != nil {
		util.CleanupFiles(staging)
		b.setStatus(job.Index, StatusFailed, encoded, fmt.Errorf("%w: %v", ErrWriteFailed, err))
		return
	}

	if skipped > 0 {
		logger.Warn().
			Int("skipped", skipped).
			Int("expected", expected).
			Msg("frames skipped within threshold")
	}
	logger.Info().Str("output", job.OutputPath).Int("frames", encoded).Msg("job completed")
	b.setStatus(job.Index, StatusCompleted, encoded, nil)
}
