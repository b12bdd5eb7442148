package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// Crop adds a crop filter selecting a w x h region at (x, y)
func (fb *FilterBuilder) Crop(width, height, x, y int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("crop=%d:%d:%d:%d", width, height, x, y))
	return fb
}

// Scale adds a plain scale filter, ignoring aspect ratio
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// ScaleFit scales uniformly to fit inside the target box and pads the
// remainder with the given color, keeping the frame centered
func (fb *FilterBuilder) ScaleFit(width, height int, padColor string) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	if padColor == "" {
		padColor = "black"
	}
	fb.filters = append(fb.filters,
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", width, height),
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s", width, height, padColor),
	)
	return fb
}

// ScaleCover scales uniformly so the frame covers the target box, then
// center-crops the excess
func (fb *FilterBuilder) ScaleCover(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters,
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", width, height),
		fmt.Sprintf("crop=%d:%d", width, height),
	)
	return fb
}

// FPS adds an fps filter
func (fb *FilterBuilder) FPS(fps float64) *FilterBuilder {
	if fps <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("fps=%g", fps))
	return fb
}

// Custom adds a custom filter string
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}

// BuildAll returns all filters as a slice
func (fb *FilterBuilder) BuildAll() []string {
	return fb.filters
}
