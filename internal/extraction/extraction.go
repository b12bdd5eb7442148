// Package extraction describes how a long source is split into candidate
// clip windows before the edit list is applied. A plan is evaluated purely
// over frame numbers; no decoding happens here.
package extraction

import (
	"fmt"

	"github.com/kikiluvv/frameforge/internal/editlist"
)

// Window is one requested clip: a start frame and a length in frames
type Window struct {
	Start  int
	Frames int
}

// Plan generates candidate clip windows over a source timeline
type Plan struct {
	// ClipFrames is the requested clip length for fixed-window plans
	ClipFrames int
	// Stride is the distance between consecutive clip start frames.
	// Smaller than ClipFrames overlaps clips, larger leaves gaps.
	Stride int
	// Offset shifts the first fixed window's start frame
	Offset int
	// MaxClips caps the number of fixed windows; zero means no cap
	MaxClips int

	// Explicit lists windows directly, overriding the fixed fields
	Explicit []Window
}

// Validate rejects plans that cannot generate any in-bounds window
func (p Plan) Validate(totalFrames int) error {
	if len(p.Explicit) > 0 {
		for i, w := range p.Explicit {
			if w.Frames <= 0 {
				return fmt.Errorf("window %d: length must be positive, got %d", i, w.Frames)
			}
			if w.Start < 0 || w.Start >= totalFrames {
				return fmt.Errorf("window %d: start %d outside [0,%d)", i, w.Start, totalFrames)
			}
		}
		return nil
	}

	if p.ClipFrames <= 0 {
		return fmt.Errorf("clip length must be positive, got %d frames", p.ClipFrames)
	}
	if p.Stride <= 0 {
		return fmt.Errorf("stride must be positive, got %d frames", p.Stride)
	}
	if p.Offset < 0 || p.Offset >= totalFrames {
		return fmt.Errorf("offset %d outside [0,%d)", p.Offset, totalFrames)
	}
	if p.MaxClips < 0 {
		return fmt.Errorf("max clips cannot be negative, got %d", p.MaxClips)
	}
	return nil
}

// Windows evaluates the plan into candidate frame ranges over the original
// timeline. Every range is clamped to [0, totalFrames); a trailing window
// short of the requested length is kept as long as one frame survives.
func (p Plan) Windows(totalFrames int) []editlist.FrameRange {
	var out []editlist.FrameRange

	if len(p.Explicit) > 0 {
		for _, w := range p.Explicit {
			r := clamp(w.Start, w.Start+w.Frames, totalFrames)
			if r.Len() > 0 {
				out = append(out, r)
			}
		}
		return out
	}

	for start := p.Offset; start < totalFrames; start += p.Stride {
		if p.MaxClips > 0 && len(out) >= p.MaxClips {
			break
		}
		r := clamp(start, start+p.ClipFrames, totalFrames)
		if r.Len() > 0 {
			out = append(out, r)
		}
	}
	return out
}

func clamp(start, end, total int) editlist.FrameRange {
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}
	return editlist.FrameRange{Start: start, End: end}
}
