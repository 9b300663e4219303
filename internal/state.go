package internal

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/num/quat"
)

// EyeFOV is one eye's field of view as reported by the hardware (degrees from the view axis to each edge).
// It is an internal struct that has to be exported for RPC.
type EyeFOV struct {
	UpDegrees, DownDegrees, LeftDegrees, RightDegrees float64
}

// Pose is a tracker sample: orientation and position plus the optional derivatives reported by the sensor.
// It is an internal struct that has to be exported for RPC.
type Pose struct {
	Orientation quat.Number // Unit quaternion (Imag, Jmag, Kmag, Real) = (x, y, z, w)
	Position    v3.Vec
	// Optional (nil if the sensor does not report them)
	AngularVelocity, LinearVelocity         *v3.Vec
	AngularAcceleration, LinearAcceleration *v3.Vec
}

// DeviceInfo describes one enumerated device without its behaviour (that is reached through DeviceProvider).
// It is an internal struct that has to be exported for RPC.
type DeviceInfo struct {
	Index          int    // Position in the enumeration (stable for the lifetime of the provider)
	Capability     string // "hmd" or "position_sensor"
	HardwareUnitID string
	DeviceName     string
}

// EyeArgs selects the eye of one device in a remote call.
// It is an internal struct that has to be exported for RPC.
type EyeArgs struct {
	Index int
	Eye   int // 0: left, 1: right
}

// DeviceProvider is the backend served by the DeviceService.
type DeviceProvider interface {
	// Devices lists the currently known devices
	Devices() []DeviceInfo
	// FieldOfView returns the recommended field of view of the given HMD device and eye
	FieldOfView(index, eye int) EyeFOV
	// EyeTranslation returns the head-center to eye offset of the given HMD device and eye
	EyeTranslation(index, eye int) v3.Vec
	// State returns the latest pose of the given position sensor
	State(index int) Pose
}
