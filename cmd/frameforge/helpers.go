package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kikiluvv/frameforge/internal/editlist"
	"github.com/kikiluvv/frameforge/internal/transform"
	"github.com/kikiluvv/frameforge/pkg/util"
)

// parseCrop parses "w:h:x:y" (ffmpeg crop filter order) into a rectangle
func parseCrop(s string) (*transform.Rect, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("crop must be w:h:x:y, got %q", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("crop must be w:h:x:y, got %q", s)
		}
		vals[i] = v
	}
	return &transform.Rect{Width: vals[0], Height: vals[1], X: vals[2], Y: vals[3]}, nil
}

// parseSize parses "WxH" into target dimensions
func parseSize(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("size must be WxH, got %q", s)
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("size must be WxH, got %q", s)
	}
	return w, h, nil
}

// parseFrameRange parses "start-end" as a half-open frame range
func parseFrameRange(s string) (editlist.FrameRange, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return editlist.FrameRange{}, fmt.Errorf("range must be start-end, got %q", s)
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return editlist.FrameRange{}, fmt.Errorf("range must be start-end, got %q", s)
	}
	return editlist.FrameRange{Start: start, End: end}, nil
}

// parseStart resolves the start flag into a frame number: either a bare
// frame number or a MM:SS / HH:MM:SS timestamp converted at the source
// frame rate
func parseStart(s string, fps float64) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := util.ParseTimestamp(s)
	if err != nil {
		return 0, err
	}
	return util.DurationToFrames(d, fps), nil
}
