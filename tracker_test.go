package vr

import (
	"errors"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/num/quat"
	"testing"
)

type fakeHMD struct {
	fov     [2]EyeFOV
	offsets [2]v3.Vec
}

func (h *fakeHMD) RecommendedEyeFieldOfView(eye Eye) EyeFOV { return h.fov[eye] }
func (h *fakeHMD) EyeTranslation(eye Eye) v3.Vec            { return h.offsets[eye] }

type fakeSensor struct {
	pose  Pose
	calls int
}

func (s *fakeSensor) State() Pose {
	s.calls++
	return s.pose
}

func newFakeHMD() *fakeHMD {
	src := newTestFOVSource()
	return &fakeHMD{fov: src.fov, offsets: src.offsets}
}

// testDevices returns an HMD and its sensor, plus the sensor of another unit listed first
func testDevices(sensor *fakeSensor) []Device {
	return []Device{
		{Capability: CapabilityPositionSensor, HardwareUnitID: "other", DeviceName: "Other sensor", Sensor: &fakeSensor{}},
		{Capability: CapabilityHMD, HardwareUnitID: "unit-1", DeviceName: "Test HMD", HMD: newFakeHMD()},
		{Capability: CapabilityPositionSensor, HardwareUnitID: "unit-1", DeviceName: "Test sensor", Sensor: sensor},
	}
}

func TestSelectDevices(t *testing.T) {
	devs := testDevices(&fakeSensor{})
	b, err := SelectDevices(devs)
	if err != nil {
		t.Fatal(err)
	}
	if b.HMD != &devs[1] {
		t.Fatalf("expected the HMD to be bound, got %+v", b.HMD)
	}
	if b.Sensor != &devs[2] {
		t.Fatalf("expected the sensor of the same hardware unit, got %+v", b.Sensor)
	}
}

func TestSelectDevicesNoHMD(t *testing.T) {
	for _, devs := range [][]Device{nil, {{Capability: CapabilityPositionSensor, Sensor: &fakeSensor{}}}} {
		b, err := SelectDevices(devs)
		if !errors.Is(err, ErrNoDevice) {
			t.Fatalf("expected ErrNoDevice, got %v", err)
		}
		if b.HMD != nil || b.Sensor != nil {
			t.Fatalf("expected an empty binding, got %+v", b)
		}
	}
}

func TestSelectDevicesHMDWithoutSensor(t *testing.T) {
	devs := testDevices(&fakeSensor{})[:2]
	b, err := SelectDevices(devs)
	if !errors.Is(err, ErrNoSensorFound) {
		t.Fatalf("expected ErrNoSensorFound, got %v", err)
	}
	if b.HMD == nil || b.Sensor != nil {
		t.Fatalf("expected only the HMD to be bound, got %+v", b)
	}
}

func TestTrackerUnbound(t *testing.T) {
	tr := &Tracker{}
	if _, err := tr.Sample(); err != ErrNoSensorBound {
		t.Fatalf("expected ErrNoSensorBound, got %v", err)
	}
	if _, err := tr.RecommendedFOV(EyeLeft); err != ErrNoHMDBound {
		t.Fatalf("expected ErrNoHMDBound, got %v", err)
	}
	if _, err := tr.EyeOffset(EyeRight); err != ErrNoHMDBound {
		t.Fatalf("expected ErrNoHMDBound, got %v", err)
	}
}

func TestTrackerSampleIsDetached(t *testing.T) {
	velocity := v3.Vec{X: 1}
	sensor := &fakeSensor{pose: Pose{
		Orientation:     quat.Number{Real: 1},
		Position:        v3.Vec{Y: 1.7},
		AngularVelocity: &velocity,
	}}
	tr := &Tracker{}
	b, _ := SelectDevices(testDevices(sensor))
	tr.Bind(b)
	got, err := tr.Sample()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sensor.pose, got); diff != "" {
		t.Fatalf("sample mismatch (-want +got):\n%s", diff)
	}
	// The device reuses its buffers: the snapshot must not change with them
	velocity.X = 2
	if got.AngularVelocity == &velocity || got.AngularVelocity.X != 1 {
		t.Fatalf("sample shares memory with the device: %+v", got.AngularVelocity)
	}
}

func TestTrackerHMDQueries(t *testing.T) {
	tr := &Tracker{}
	b, _ := SelectDevices(testDevices(&fakeSensor{}))
	tr.Bind(b)
	hmd := b.HMD.HMD.(*fakeHMD)
	for _, eye := range []Eye{EyeLeft, EyeRight} {
		fov, err := tr.RecommendedFOV(eye)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(hmd.fov[eye], fov); diff != "" {
			t.Fatalf("%s fov mismatch (-want +got):\n%s", eye, diff)
		}
		off, err := tr.EyeOffset(eye)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(hmd.offsets[eye], off, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("%s offset mismatch (-want +got):\n%s", eye, diff)
		}
	}
}
