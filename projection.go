package vr

import (
	"github.com/Yeicor/sdfx-vr/internal"
	"github.com/fogleman/fauxgl"
	"math"
)

// EyeFOV is the field of view of one eye, in degrees from the view axis to each frustum edge.
type EyeFOV = internal.EyeFOV

const (
	minFOVDegrees = 1.
	maxFOVDegrees = 89.

	// DefaultEyeNear and DefaultEyeFar are the clip planes of both eye cameras
	DefaultEyeNear = 0.01
	DefaultEyeFar  = 10000.
)

// ClampFOV forces every angle of the field of view into [1º, 89º] (NaN becomes 1º), reporting whether any
// angle had to be modified. A non-positive angle would invert the frustum and 90º or more would make it infinite.
func ClampFOV(fov EyeFOV) (EyeFOV, bool) {
	clamped := false
	clamp := func(deg float64) float64 {
		switch {
		case math.IsNaN(deg) || deg < minFOVDegrees:
			clamped = true
			return minFOVDegrees
		case deg > maxFOVDegrees:
			clamped = true
			return maxFOVDegrees
		}
		return deg
	}
	return EyeFOV{
		UpDegrees:    clamp(fov.UpDegrees),
		DownDegrees:  clamp(fov.DownDegrees),
		LeftDegrees:  clamp(fov.LeftDegrees),
		RightDegrees: clamp(fov.RightDegrees),
	}, clamped
}

// FovToProjection builds the (possibly off-axis) perspective projection whose frustum edges match the four
// angles of the field of view at the near plane. Degenerate angles and clip planes are clamped.
func FovToProjection(fov EyeFOV, near, far float64) fauxgl.Matrix {
	fov, _ = ClampFOV(fov)
	if !(near > 0) || math.IsInf(near, 0) {
		near = DefaultEyeNear
	}
	if !(far > near) || math.IsInf(far, 0) {
		far = near * 1e4
	}
	deg2rad := math.Pi / 180
	return fauxgl.Frustum(
		-near*math.Tan(fov.LeftDegrees*deg2rad),
		near*math.Tan(fov.RightDegrees*deg2rad),
		-near*math.Tan(fov.DownDegrees*deg2rad),
		near*math.Tan(fov.UpDegrees*deg2rad),
		near, far)
}
