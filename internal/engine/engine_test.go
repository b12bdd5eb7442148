package engine

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/kikiluvv/frameforge/internal/editlist"
	"github.com/kikiluvv/frameforge/internal/extraction"
	"github.com/kikiluvv/frameforge/internal/ffmpeg"
	"github.com/kikiluvv/frameforge/internal/planner"
	"github.com/kikiluvv/frameforge/internal/source"
	"github.com/kikiluvv/frameforge/internal/transform"
)

// runnerFunc lets tests stand in for the ffmpeg extraction pass
type runnerFunc func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error)

func (f runnerFunc) ExtractFrames(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
	return f(ctx, opts)
}

// writeStaging mimics a successful encode: the staging file exists and
// the runner reports how many frames made it in
func writeStaging(t *testing.T, path string, encoded int) int {
	t.Helper()
	if err := os.WriteFile(path, []byte("encoded"), 0644); err != nil {
		t.Fatalf("write staging: %v", err)
	}
	return encoded
}

func planJobs(t *testing.T, windows []extraction.Window, outputDir string) []planner.Job {
	t.Helper()
	index := make([]float64, 300)
	for i := range index {
		index[i] = float64(i) / 30.0
	}
	src := source.NewFromIndex("testdata/clip.mp4", &ffmpeg.VideoInfo{
		Width:  1920,
		Height: 1080,
		FPS:    30,
	}, index)

	jobs, err := planner.Plan(src, editlist.New(300), extraction.Plan{Explicit: windows}, transform.Spec{}, outputDir)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	return jobs
}

func TestExportAllJobsComplete(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{
		{Start: 0, Frames: 100},
		{Start: 100, Frames: 100},
		{Start: 200, Frames: 100},
	}, dir)

	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		return writeStaging(t, opts.Output, opts.Frames), nil
	})

	e := New(runner, Options{Workers: 2})
	batch := e.Export(context.Background(), jobs)
	batch.Wait()

	if batch.Failed() {
		t.Fatalf("expected clean batch, report: %+v", batch.Report())
	}

	report := batch.Report()
	if len(report) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report))
	}
	for i, r := range report {
		if r.Index != i {
			t.Errorf("result %d: expected index %d, got %d", i, i, r.Index)
		}
		if r.Status != StatusCompleted {
			t.Errorf("job %d: expected completed, got %s (%v)", i, r.Status, r.Err)
		}
		if r.FramesEncoded != 100 || r.FramesSkipped != 0 {
			t.Errorf("job %d: expected 100 encoded 0 skipped, got %d/%d", i, r.FramesEncoded, r.FramesSkipped)
		}
		if _, err := os.Stat(r.OutputPath); err != nil {
			t.Errorf("job %d: output missing: %v", i, err)
		}
		if _, err := os.Stat(r.OutputPath + ".part.mp4"); !os.IsNotExist(err) {
			t.Errorf("job %d: staging file left behind", i)
		}
	}
}

// One job decodes only 40 of its 100 frames. At the 50% threshold it
// must fail with a decode error and leave no output, while its siblings
// complete untouched.
func TestExportSkipThreshold(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{
		{Start: 0, Frames: 100},
		{Start: 100, Frames: 100},
		{Start: 200, Frames: 100},
	}, dir)
	corrupt := jobs[1].OutputPath

	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		if opts.Output == corrupt+".part.mp4" {
			return writeStaging(t, opts.Output, 40), nil
		}
		return writeStaging(t, opts.Output, opts.Frames), nil
	})

	e := New(runner, Options{Workers: 2, SkipThreshold: 0.5})
	batch := e.Export(context.Background(), jobs)
	batch.Wait()

	if !batch.Failed() {
		t.Fatal("expected batch to report failure")
	}

	report := batch.Report()
	if report[1].Status != StatusFailed {
		t.Fatalf("job 1: expected failed, got %s", report[1].Status)
	}
	if !errors.Is(report[1].Err, ErrDecodeFailed) {
		t.Fatalf("job 1: expected ErrDecodeFailed, got %v", report[1].Err)
	}
	if report[1].FramesEncoded != 40 || report[1].FramesSkipped != 60 {
		t.Errorf("job 1: expected 40 encoded 60 skipped, got %d/%d",
			report[1].FramesEncoded, report[1].FramesSkipped)
	}
	if _, err := os.Stat(corrupt); !os.IsNotExist(err) {
		t.Error("job 1: discarded output still present")
	}
	if _, err := os.Stat(corrupt + ".part.mp4"); !os.IsNotExist(err) {
		t.Error("job 1: staging file not removed")
	}

	for _, i := range []int{0, 2} {
		if report[i].Status != StatusCompleted {
			t.Errorf("job %d: expected completed despite sibling failure, got %s", i, report[i].Status)
		}
		if _, err := os.Stat(report[i].OutputPath); err != nil {
			t.Errorf("job %d: output missing: %v", i, err)
		}
	}
}

func TestExportWithinThresholdKeepsOutput(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{{Start: 0, Frames: 100}}, dir)

	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		return writeStaging(t, opts.Output, 80), nil
	})

	e := New(runner, Options{SkipThreshold: 0.5})
	batch := e.Export(context.Background(), jobs)
	batch.Wait()

	r := batch.Report()[0]
	if r.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%v)", r.Status, r.Err)
	}
	if r.FramesSkipped != 20 {
		t.Errorf("expected 20 skipped, got %d", r.FramesSkipped)
	}
	if _, err := os.Stat(r.OutputPath); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

// A zero threshold is a strict setting, not an unset default: any
// skipped frame fails the job.
func TestExportStrictThresholdFailsAnySkip(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{{Start: 0, Frames: 100}}, dir)

	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		return writeStaging(t, opts.Output, 80), nil
	})

	e := New(runner, Options{SkipThreshold: 0})
	batch := e.Export(context.Background(), jobs)
	batch.Wait()

	r := batch.Report()[0]
	if r.Status != StatusFailed || !errors.Is(r.Err, ErrDecodeFailed) {
		t.Fatalf("expected ErrDecodeFailed under strict threshold, got %s (%v)", r.Status, r.Err)
	}
	if r.FramesEncoded != 80 || r.FramesSkipped != 20 {
		t.Errorf("expected 80 encoded 20 skipped, got %d/%d", r.FramesEncoded, r.FramesSkipped)
	}
	if _, err := os.Stat(r.OutputPath); !os.IsNotExist(err) {
		t.Error("discarded output still present")
	}
}

func TestExportZeroFramesFails(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{{Start: 0, Frames: 100}}, dir)

	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		return writeStaging(t, opts.Output, 0), nil
	})

	e := New(runner, Options{})
	batch := e.Export(context.Background(), jobs)
	batch.Wait()

	r := batch.Report()[0]
	if !errors.Is(r.Err, ErrDecodeFailed) {
		t.Fatalf("expected ErrDecodeFailed for zero frames, got %v", r.Err)
	}
	if _, err := os.Stat(r.OutputPath); !os.IsNotExist(err) {
		t.Error("output present for failed job")
	}
}

func TestExportEncodeErrorIsolated(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{
		{Start: 0, Frames: 50},
		{Start: 100, Frames: 50},
	}, dir)
	bad := jobs[0].OutputPath + ".part.mp4"

	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		if opts.Output == bad {
			return 0, errors.New("encoder exploded")
		}
		return writeStaging(t, opts.Output, opts.Frames), nil
	})

	e := New(runner, Options{Workers: 2})
	batch := e.Export(context.Background(), jobs)
	batch.Wait()

	report := batch.Report()
	if !errors.Is(report[0].Err, ErrEncodeFailed) {
		t.Fatalf("job 0: expected ErrEncodeFailed, got %v", report[0].Err)
	}
	if report[1].Status != StatusCompleted {
		t.Fatalf("job 1: expected completed, got %s", report[1].Status)
	}
}

// Cancel mid-batch on a single worker: the finished job keeps its
// output, the running job fails with context.Canceled and loses its
// partial file, and the queued job never leaves pending.
func TestExportCancellation(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{
		{Start: 0, Frames: 10},
		{Start: 50, Frames: 20},
		{Start: 100, Frames: 30},
	}, dir)

	blocking := jobs[1].OutputPath + ".part.mp4"
	started := make(chan struct{})

	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		if opts.Output == blocking {
			writeStaging(t, opts.Output, 5)
			close(started)
			<-ctx.Done()
			return 5, ctx.Err()
		}
		return writeStaging(t, opts.Output, opts.Frames), nil
	})

	e := New(runner, Options{Workers: 1})
	batch := e.Export(context.Background(), jobs)

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("second job never started")
	}
	batch.Cancel()
	batch.Wait()

	report := batch.Report()

	if report[0].Status != StatusCompleted {
		t.Errorf("job 0: expected completed, got %s", report[0].Status)
	}
	if _, err := os.Stat(report[0].OutputPath); err != nil {
		t.Errorf("job 0: output missing: %v", err)
	}

	if report[1].Status != StatusFailed || !errors.Is(report[1].Err, context.Canceled) {
		t.Errorf("job 1: expected cancelled failure, got %s (%v)", report[1].Status, report[1].Err)
	}
	if _, err := os.Stat(blocking); !os.IsNotExist(err) {
		t.Error("job 1: partial output not removed")
	}

	if report[2].Status != StatusPending {
		t.Errorf("job 2: expected pending, got %s", report[2].Status)
	}
}

func TestObserveSeesTerminalTransitions(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{
		{Start: 0, Frames: 50},
		{Start: 100, Frames: 50},
	}, dir)

	// Hold the workers until the observer is registered
	release := make(chan struct{})
	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		<-release
		return writeStaging(t, opts.Output, opts.Frames), nil
	})

	e := New(runner, Options{Workers: 1})

	terminal := make(chan int, len(jobs))
	batch := e.Export(context.Background(), jobs)
	batch.Observe(func(r JobResult) {
		if r.Status == StatusCompleted || r.Status == StatusFailed {
			terminal <- r.Index
		}
	})
	close(release)
	batch.Wait()

	if len(terminal) != len(jobs) {
		t.Fatalf("observer saw %d terminal transitions, want %d", len(terminal), len(jobs))
	}
}

// Registering the observer after the batch has already finished must
// replay every terminal result, so a caller attaching progress reporting
// after Export cannot miss fast jobs.
func TestObserveReplaysEarlierTransitions(t *testing.T) {
	dir := t.TempDir()
	jobs := planJobs(t, []extraction.Window{
		{Start: 0, Frames: 50},
		{Start: 100, Frames: 50},
	}, dir)

	runner := runnerFunc(func(ctx context.Context, opts ffmpeg.ExtractOptions) (int, error) {
		return writeStaging(t, opts.Output, opts.Frames), nil
	})

	e := New(runner, Options{Workers: 2})
	batch := e.Export(context.Background(), jobs)
	batch.Wait()

	seen := make(map[int]int)
	batch.Observe(func(r JobResult) {
		if r.Status == StatusCompleted || r.Status == StatusFailed {
			seen[r.Index]++
		}
	})

	if len(seen) != len(jobs) {
		t.Fatalf("replay covered %d jobs, want %d", len(seen), len(jobs))
	}
	for idx, n := range seen {
		if n != 1 {
			t.Errorf("job %d replayed %d times, want exactly once", idx, n)
		}
	}
}
