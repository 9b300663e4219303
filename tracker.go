package vr

import (
	"fmt"
	"github.com/Yeicor/sdfx-vr/internal"
	"github.com/barkimedes/go-deepcopy"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is one tracker sample (value snapshot: re-query every frame).
type Pose = internal.Pose

// IdentityPose is the static pose used when no sensor is bound
func IdentityPose() Pose {
	return Pose{Orientation: quat.Number{Real: 1}}
}

// Eye identifies one of the two eye views.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

func (e Eye) String() string {
	if e == EyeLeft {
		return "left"
	}
	return "right"
}

// Capability is the tag that classifies an enumerated device (checked by value).
type Capability string

const (
	CapabilityHMD            Capability = "hmd"
	CapabilityPositionSensor Capability = "position_sensor"
)

// HMDDevice is the behaviour of a device with CapabilityHMD.
type HMDDevice interface {
	RecommendedEyeFieldOfView(eye Eye) EyeFOV
	EyeTranslation(eye Eye) v3.Vec
}

// PositionSensor is the behaviour of a device with CapabilityPositionSensor.
type PositionSensor interface {
	State() Pose
}

// Device is one handle returned by the device enumeration service.
// Exactly one of HMD and Sensor is expected to be set, matching Capability.
type Device struct {
	Capability     Capability
	HardwareUnitID string // Shared by the HMD and the position sensor of the same hardware unit
	DeviceName     string
	HMD            HMDDevice
	Sensor         PositionSensor
}

// DeviceBinding is the selected HMD and its matching position sensor (each may be nil).
type DeviceBinding struct {
	HMD, Sensor *Device
}

// SelectDevices picks the first HMD and then the position sensor of the same hardware unit.
// The returned error is ErrNoDevice when there is no HMD (empty binding) or ErrNoSensorFound when only the HMD
// could be bound: both are informative, never fatal.
func SelectDevices(devs []Device) (DeviceBinding, error) {
	var binding DeviceBinding
	for i := range devs {
		if devs[i].Capability == CapabilityHMD && devs[i].HMD != nil {
			binding.HMD = &devs[i]
			break
		}
	}
	if binding.HMD == nil {
		return DeviceBinding{}, ErrNoDevice
	}
	for i := range devs {
		if devs[i].Capability == CapabilityPositionSensor && devs[i].Sensor != nil &&
			devs[i].HardwareUnitID == binding.HMD.HardwareUnitID {
			binding.Sensor = &devs[i]
			break
		}
	}
	if binding.Sensor == nil {
		return binding, fmt.Errorf("%w (hardware unit %q)", ErrNoSensorFound, binding.HMD.HardwareUnitID)
	}
	return binding, nil
}

//-----------------------------------------------------------------------------
// TRACKER
//-----------------------------------------------------------------------------

// Tracker holds the session's device binding and answers pose/FOV queries against it.
// The binding is set once after discovery and never re-probed (no hot-unplug support).
type Tracker struct {
	binding DeviceBinding
}

// Bind stores the result of discovery
func (t *Tracker) Bind(b DeviceBinding) {
	t.binding = b
}

// Binding returns the current binding
func (t *Tracker) Binding() DeviceBinding {
	return t.binding
}

func (t *Tracker) HasHMD() bool {
	return t.binding.HMD != nil
}

func (t *Tracker) HasSensor() bool {
	return t.binding.Sensor != nil
}

// Sample returns a detached copy of the latest pose reported by the bound sensor.
func (t *Tracker) Sample() (Pose, error) {
	if !t.HasSensor() {
		return Pose{}, ErrNoSensorBound
	}
	state := t.binding.Sensor.Sensor.State()
	// Optional fields are pointers that may reference the device's own buffers
	return deepcopy.MustAnything(state).(Pose), nil
}

// RecommendedFOV returns the field of view recommended by the bound HMD for the given eye.
func (t *Tracker) RecommendedFOV(eye Eye) (EyeFOV, error) {
	if !t.HasHMD() {
		return EyeFOV{}, ErrNoHMDBound
	}
	return t.binding.HMD.HMD.RecommendedEyeFieldOfView(eye), nil
}

// EyeOffset returns the translation from head center to the given eye reported by the bound HMD.
func (t *Tracker) EyeOffset(eye Eye) (v3.Vec, error) {
	if !t.HasHMD() {
		return v3.Vec{}, ErrNoHMDBound
	}
	return t.binding.HMD.HMD.EyeTranslation(eye), nil
}
