// Package transform validates spatial transform parameters at the
// presentation boundary and renders them into ffmpeg filter chains. A Spec
// is an immutable value by convention: validated once against the source
// it will be applied to, then carried unchanged through planning into the
// export engine.
package transform

import (
	"errors"
	"fmt"

	"github.com/kikiluvv/frameforge/internal/ffmpeg"
)

var (
	// ErrInvalidCrop marks crop rectangles outside the source bounds
	ErrInvalidCrop = errors.New("invalid crop rectangle")
	// ErrInvalidResolution marks non-positive target dimensions
	ErrInvalidResolution = errors.New("invalid target resolution")
)

// ScalePolicy selects how frames are mapped onto the target resolution
type ScalePolicy string

const (
	// ScaleStretch scales non-uniformly to exactly the target dimensions
	ScaleStretch ScalePolicy = "stretch"
	// ScaleLetterbox scales uniformly to fit, padding the remainder
	ScaleLetterbox ScalePolicy = "letterbox"
	// ScaleCover scales uniformly to cover, center-cropping the excess
	ScaleCover ScalePolicy = "cover"
)

// ParsePolicy maps a user-entered policy name onto a ScalePolicy
func ParsePolicy(s string) (ScalePolicy, error) {
	switch ScalePolicy(s) {
	case ScaleStretch, ScaleLetterbox, ScaleCover:
		return ScalePolicy(s), nil
	case "":
		return ScaleStretch, nil
	}
	return "", fmt.Errorf("unknown scale policy %q", s)
}

// Rect is a crop rectangle in source pixel coordinates
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Spec describes the spatial transform applied to every exported frame:
// optional crop in source coordinates, then the resolution policy applied
// to the cropped region
type Spec struct {
	// Crop selects a source region; nil means the full frame
	Crop *Rect
	// Width and Height are the target resolution; zero means native
	Width  int
	Height int
	Policy ScalePolicy
	// PadColor fills letterbox bars, ffmpeg color syntax
	PadColor string
}

// Validate checks the spec against the source resolution. Validation
// happens before planning; the engine never sees an invalid spec.
func (s Spec) Validate(srcWidth, srcHeight int) error {
	if s.Crop != nil {
		c := *s.Crop
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("%w: %dx%d has non-positive dimension", ErrInvalidCrop, c.Width, c.Height)
		}
		if c.X < 0 || c.Y < 0 || c.X+c.Width > srcWidth || c.Y+c.Height > srcHeight {
			return fmt.Errorf("%w: (%d,%d) %dx%d exceeds source %dx%d",
				ErrInvalidCrop, c.X, c.Y, c.Width, c.Height, srcWidth, srcHeight)
		}
	}

	if (s.Width == 0) != (s.Height == 0) {
		return fmt.Errorf("%w: width and height must be set together", ErrInvalidResolution)
	}
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidResolution, s.Width, s.Height)
	}

	if s.Policy != "" {
		if _, err := ParsePolicy(string(s.Policy)); err != nil {
			return err
		}
	}

	return nil
}

// Filters renders the spec into an ffmpeg filter chain. Crop comes first
// so the resolution policy operates on the cropped pixel region.
func (s Spec) Filters() []string {
	fb := ffmpeg.NewFilterBuilder()

	if s.Crop != nil {
		fb.Crop(s.Crop.Width, s.Crop.Height, s.Crop.X, s.Crop.Y)
	}

	if s.Width > 0 && s.Height > 0 {
		switch s.Policy {
		case ScaleLetterbox:
			fb.ScaleFit(s.Width, s.Height, s.PadColor)
		case ScaleCover:
			fb.ScaleCover(s.Width, s.Height)
		default:
			fb.Scale(s.Width, s.Height)
		}
	}

	return fb.BuildAll()
}
