package ports

import (
	"fmt"
	"image"
)

// Interpolation selects the resampling kernel used when resizing frames.
type Interpolation int

const (
	// InterpolationCubic is Catmull-Rom cubic interpolation.
	InterpolationCubic Interpolation = iota
	InterpolationBilinear
	InterpolationApproxBilinear
	InterpolationNearest
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationCubic:
		return "cubic"
	case InterpolationBilinear:
		return "bilinear"
	case InterpolationApproxBilinear:
		return "approx-bilinear"
	case InterpolationNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// ParseInterpolation parses an interpolation name. Empty means cubic.
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "", "cubic", "catmullrom":
		return InterpolationCubic, nil
	case "bilinear", "linear":
		return InterpolationBilinear, nil
	case "approx-bilinear":
		return InterpolationApproxBilinear, nil
	case "nearest":
		return InterpolationNearest, nil
	default:
		return InterpolationCubic, fmt.Errorf("unknown interpolation %q", s)
	}
}

// Scaler resizes decoded frames.
type Scaler interface {
	// Resize returns img scaled to width x height.
	Resize(img image.Image, width, height int, interp Interpolation) image.Image
}
