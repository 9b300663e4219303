package vr

import (
	"github.com/Yeicor/sdfx-vr/internal"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fogleman/fauxgl"
	"gonum.org/v1/gonum/num/quat"
	"log"
)

// Camera is what the renderer needs to draw the scene from one viewpoint.
type Camera interface {
	ProjectionMatrix() fauxgl.Matrix
	ViewMatrix() fauxgl.Matrix
	Position() v3.Vec
}

// FOVSource provides the per-eye hardware parameters (implemented by *Tracker).
type FOVSource interface {
	RecommendedFOV(eye Eye) (EyeFOV, error)
	EyeOffset(eye Eye) (v3.Vec, error)
}

//-----------------------------------------------------------------------------
// EYE CAMERA
//-----------------------------------------------------------------------------

// EyeCamera is one of the two cameras of the rig: a projection plus the eye's offset, rotated by the head pose.
type EyeCamera struct {
	eye        Eye
	projection fauxgl.Matrix
	offset     v3.Vec      // Head-center to eye (head space)
	rotation   quat.Number // Shared head orientation (unit)
	position   v3.Vec      // Absolute eye position (world space)
}

func (c *EyeCamera) Eye() Eye                        { return c.eye }
func (c *EyeCamera) ProjectionMatrix() fauxgl.Matrix { return c.projection }
func (c *EyeCamera) Position() v3.Vec                { return c.position }
func (c *EyeCamera) Offset() v3.Vec                  { return c.offset }
func (c *EyeCamera) Rotation() quat.Number           { return c.rotation }

// ViewMatrix is the inverse of the eye's rigid transform (rotation then translation to position).
func (c *EyeCamera) ViewMatrix() fauxgl.Matrix {
	return viewMatrix(c.rotation, c.position)
}

//-----------------------------------------------------------------------------
// MONO CAMERA
//-----------------------------------------------------------------------------

// MonoCamera is the plain perspective camera used in windowed mono mode (looks towards -Z).
type MonoCamera struct {
	fovYDegrees, aspect, near, far float64
	position                       v3.Vec
}

// NewMonoCamera creates a mono camera (the aspect ratio is set later from the render target).
func NewMonoCamera(fovYDegrees, near, far float64, position v3.Vec) *MonoCamera {
	return &MonoCamera{fovYDegrees: fovYDegrees, aspect: 1, near: near, far: far, position: position}
}

// SetAspect recomputes the aspect ratio from the render target dimensions.
func (c *MonoCamera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float64(width) / float64(height)
}

func (c *MonoCamera) Aspect() float64  { return c.aspect }
func (c *MonoCamera) Position() v3.Vec { return c.position }

func (c *MonoCamera) ProjectionMatrix() fauxgl.Matrix {
	return fauxgl.Perspective(c.fovYDegrees, c.aspect, c.near, c.far)
}

func (c *MonoCamera) ViewMatrix() fauxgl.Matrix {
	return fauxgl.Translate(toFauxglVector(c.position.Neg()))
}

//-----------------------------------------------------------------------------
// RIG
//-----------------------------------------------------------------------------

// Rig owns the left and right eye cameras plus the independent mono camera.
type Rig struct {
	eyes      [2]*EyeCamera
	mono      *MonoCamera
	near, far float64
	base      Pose // Last applied head pose (the eyes are always derived from it from scratch)
	logger    *log.Logger
}

// NewRig creates the two eye cameras at the identity pose with a default symmetric projection.
// Clamped hardware fields of view are logged to logger (log.Default() if nil).
func NewRig(near, far float64, mono *MonoCamera, logger *log.Logger) *Rig {
	if logger == nil {
		logger = log.Default()
	}
	r := &Rig{mono: mono, near: near, far: far, base: IdentityPose(), logger: logger}
	defaultFOV := EyeFOV{UpDegrees: 45, DownDegrees: 45, LeftDegrees: 45, RightDegrees: 45}
	for i := range r.eyes {
		r.eyes[i] = &EyeCamera{eye: Eye(i), projection: FovToProjection(defaultFOV, near, far)}
	}
	r.applyPose()
	return r
}

// Eye returns the camera of the given eye
func (r *Rig) Eye(eye Eye) *EyeCamera {
	return r.eyes[eye]
}

// MonoCamera returns the camera used in mono mode
func (r *Rig) MonoCamera() *MonoCamera {
	return r.mono
}

// ConfigureProjections rebuilds both eyes' projection and offset from the hardware. It is called once when
// entering stereo mode, as the hardware field of view is treated as static for the session.
func (r *Rig) ConfigureProjections(src FOVSource) error {
	var projections [2]fauxgl.Matrix
	var offsets [2]v3.Vec
	for i := range r.eyes {
		eye := Eye(i)
		fov, err := src.RecommendedFOV(eye)
		if err != nil {
			return err
		}
		if clampedFOV, clamped := ClampFOV(fov); clamped {
			r.logger.Printf("Degenerate %s eye field of view %+v, clamped to %+v", eye, fov, clampedFOV)
		}
		offsets[i], err = src.EyeOffset(eye)
		if err != nil {
			return err
		}
		projections[i] = FovToProjection(fov, r.near, r.far)
	}
	// Only modify the cameras once every query succeeded
	for i, eyeCam := range r.eyes {
		eyeCam.projection = projections[i]
		eyeCam.offset = offsets[i]
	}
	r.applyPose()
	return nil
}

// UpdatePose moves both eyes to the given head pose: they share its orientation and are displaced by their own
// offset (rotated with the head) from its position. The result only depends on the last pose, never on previous ones.
func (r *Rig) UpdatePose(p Pose) {
	r.base = p
	r.applyPose()
}

func (r *Rig) applyPose() {
	rotation := normalizeQuat(r.base.Orientation)
	for _, eyeCam := range r.eyes {
		eyeCam.rotation = rotation
		eyeCam.position = r.base.Position.Add(rotateVector(rotation, eyeCam.offset))
	}
}

// EyeTranslations returns the current offsets formatted for status output
func (r *Rig) EyeTranslations() (left, right string) {
	return internal.FormatNumbers(r.eyes[EyeLeft].offset), internal.FormatNumbers(r.eyes[EyeRight].offset)
}

//-----------------------------------------------------------------------------
// MATH HELPERS
//-----------------------------------------------------------------------------

// normalizeQuat returns the unit quaternion (identity for a zero or invalid one).
func normalizeQuat(q quat.Number) quat.Number {
	l := quat.Abs(q)
	if !(l > 1e-12) || quat.IsInf(q) {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/l, q)
}

// rotateVector applies the unit quaternion q to v (q·v·q*)
func rotateVector(q quat.Number, v v3.Vec) v3.Vec {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return v3.Vec{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// viewMatrix builds the world-to-camera matrix for a camera rotated by q and placed at pos.
func viewMatrix(q quat.Number, pos v3.Vec) fauxgl.Matrix {
	// The rows of the inverse rotation are the rotated basis vectors
	rx := rotateVector(q, v3.Vec{X: 1})
	ry := rotateVector(q, v3.Vec{Y: 1})
	rz := rotateVector(q, v3.Vec{Z: 1})
	return fauxgl.Matrix{
		X00: rx.X, X01: rx.Y, X02: rx.Z, X03: -rx.Dot(pos),
		X10: ry.X, X11: ry.Y, X12: ry.Z, X13: -ry.Dot(pos),
		X20: rz.X, X21: rz.Y, X22: rz.Z, X23: -rz.Dot(pos),
		X33: 1,
	}
}

func toFauxglVector(v v3.Vec) fauxgl.Vector {
	return fauxgl.Vector{X: v.X, Y: v.Y, Z: v.Z}
}
