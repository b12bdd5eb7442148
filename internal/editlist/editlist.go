// Package editlist tracks which frames of a source survive trimming. The
// list starts with the full timeline retained and only ever shrinks:
// frames are dropped with Delete and the single way to get them back is
// Reset. Because nothing is ever inserted, deletion can never create two
// touching retained ranges, so the sorted-disjoint-non-adjacent invariant
// holds without a merge pass.
package editlist

import (
	"errors"
	"fmt"
)

// ErrInvalidRange marks ranges outside the source timeline
var ErrInvalidRange = errors.New("invalid frame range")

// FrameRange is a half-open interval [Start, End) of logical frame numbers
type FrameRange struct {
	Start int
	End   int
}

// Len returns the number of frames in the range
func (r FrameRange) Len() int { return r.End - r.Start }

// Contains reports whether the frame lies inside the range
func (r FrameRange) Contains(frame int) bool {
	return frame >= r.Start && frame < r.End
}

// Intersect returns the overlap of two ranges and whether it is non-empty
func (r FrameRange) Intersect(other FrameRange) (FrameRange, bool) {
	start := max(r.Start, other.Start)
	end := min(r.End, other.End)
	if start >= end {
		return FrameRange{}, false
	}
	return FrameRange{Start: start, End: end}, true
}

func (r FrameRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// EditList is the set of retained frame ranges over one source timeline
type EditList struct {
	total    int
	retained []FrameRange
}

// New creates an edit list retaining the full timeline of a source with
// the given frame count
func New(totalFrames int) *EditList {
	l := &EditList{total: totalFrames}
	l.Reset()
	return l
}

// TotalFrames returns the source timeline length the list was built for
func (l *EditList) TotalFrames() int { return l.total }

// Delete removes the given range from every retained range it overlaps.
// An overlapped range is replaced by its surviving left and right parts;
// parts that end up empty are dropped.
func (l *EditList) Delete(r FrameRange) error {
	if r.Start < 0 || r.End > l.total || r.Start >= r.End {
		return fmt.Errorf("%w: %s over %d frames", ErrInvalidRange, r, l.total)
	}

	result := l.retained[:0:0]
	for _, kept := range l.retained {
		if kept.End <= r.Start || kept.Start >= r.End {
			result = append(result, kept)
			continue
		}
		if left := (FrameRange{Start: kept.Start, End: r.Start}); left.Len() > 0 {
			result = append(result, left)
		}
		if right := (FrameRange{Start: r.End, End: kept.End}); right.Len() > 0 {
			result = append(result, right)
		}
	}
	l.retained = result
	return nil
}

// Retained returns the retained ranges, ascending and disjoint. The
// returned slice is a copy; mutating it does not affect the list.
func (l *EditList) Retained() []FrameRange {
	out := make([]FrameRange, len(l.retained))
	copy(out, l.retained)
	return out
}

// RetainedCount returns the total number of retained frames
func (l *EditList) RetainedCount() int {
	n := 0
	for _, r := range l.retained {
		n += r.Len()
	}
	return n
}

// Deleted reports whether the given frame has been dropped
func (l *EditList) Deleted(frame int) bool {
	for _, r := range l.retained {
		if r.Contains(frame) {
			return false
		}
	}
	return frame >= 0 && frame < l.total
}

// Reset restores the single full-timeline range
func (l *EditList) Reset() {
	if l.total > 0 {
		l.retained = []FrameRange{{Start: 0, End: l.total}}
	} else {
		l.retained = nil
	}
}
