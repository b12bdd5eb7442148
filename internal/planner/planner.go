// Package planner turns an extraction plan, an edit list and a transform
// spec into the ordered list of export jobs the engine will run. Planning
// is pure: it touches no files, spawns no processes, and cannot fail on
// inputs the validation layers already accepted.
package planner

import (
	"fmt"
	"path/filepath"

	"github.com/kikiluvv/frameforge/internal/editlist"
	"github.com/kikiluvv/frameforge/internal/extraction"
	"github.com/kikiluvv/frameforge/internal/source"
	"github.com/kikiluvv/frameforge/internal/transform"
	"github.com/kikiluvv/frameforge/pkg/util"
)

// Job is one unit of export work producing one output clip file
type Job struct {
	// Index is the job's position in the plan, used for deterministic
	// reporting regardless of completion order
	Index int
	// Source is the video the frames come from
	Source *source.Video
	// Range is the contiguous retained frame range to export
	Range editlist.FrameRange
	// Spec is the spatial transform shared by every job in the plan
	Spec transform.Spec
	// OutputPath is derived from the source name, job index and range
	// bounds, so no two jobs in one plan can collide
	OutputPath string
}

// Plan evaluates the extraction windows, subtracts deleted frames, and
// emits one job per surviving contiguous range. Deleted frames never
// appear in any job: a window overlapping a deletion shrinks, or splits
// into multiple jobs, rather than substituting other frames.
func Plan(src *source.Video, edits *editlist.EditList, plan extraction.Plan, spec transform.Spec, outputDir string) ([]Job, error) {
	if err := plan.Validate(src.TotalFrames()); err != nil {
		return nil, fmt.Errorf("extraction plan: %w", err)
	}
	if err := spec.Validate(src.Info().Width, src.Info().Height); err != nil {
		return nil, fmt.Errorf("transform spec: %w", err)
	}

	base := util.BaseName(src.Path())
	retained := edits.Retained()

	var jobs []Job
	for _, window := range plan.Windows(src.TotalFrames()) {
		for _, kept := range retained {
			part, ok := window.Intersect(kept)
			if !ok {
				continue
			}
			jobs = append(jobs, Job{
				Index:  len(jobs),
				Source: src,
				Range:  part,
				Spec:   spec,
				OutputPath: filepath.Join(outputDir,
					fmt.Sprintf("%s_c%03d_f%d-%d.mp4", base, len(jobs), part.Start, part.End)),
			})
		}
	}

	return jobs, nil
}
