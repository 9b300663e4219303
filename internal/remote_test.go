package internal

import (
	"errors"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/num/quat"
	"net"
	"net/rpc"
	"os"
	"strings"
	"testing"
)

type fakeProvider struct {
	fov   [2]EyeFOV
	trans [2]v3.Vec
	pose  Pose
}

func (p *fakeProvider) Devices() []DeviceInfo {
	return []DeviceInfo{
		{Index: 0, Capability: "hmd", HardwareUnitID: "unit-1", DeviceName: "Test HMD"},
		{Index: 1, Capability: "position_sensor", HardwareUnitID: "unit-1", DeviceName: "Test sensor"},
	}
}

func (p *fakeProvider) FieldOfView(_, eye int) EyeFOV    { return p.fov[eye] }
func (p *fakeProvider) EyeTranslation(_, eye int) v3.Vec { return p.trans[eye] }
func (p *fakeProvider) State(int) Pose                   { return p.pose }

func newTestClient(t *testing.T, provider DeviceProvider) *rpc.Client {
	t.Helper()
	server := NewDeviceService(provider, make(chan os.Signal, 1))
	srvConn, cliConn := net.Pipe()
	go server.ServeConn(srvConn)
	client := rpc.NewClient(cliConn)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDeviceServiceFieldOfView(t *testing.T) {
	provider := &fakeProvider{fov: [2]EyeFOV{{UpDegrees: 40}, {UpDegrees: 41}}}
	client := newTestClient(t, provider)
	var fov EyeFOV
	if err := client.Call("DeviceService.FieldOfView", EyeArgs{Index: 0, Eye: 1}, &fov); err != nil {
		t.Fatal(err)
	}
	if fov.UpDegrees != 41 {
		t.Fatalf("expected the right eye's field of view, got %+v", fov)
	}
}

func TestDeviceServiceRejectsUnknownEye(t *testing.T) {
	client := newTestClient(t, &fakeProvider{})
	for _, eye := range []int{-1, 2, 7} {
		var fov EyeFOV
		err := client.Call("DeviceService.FieldOfView", EyeArgs{Index: 0, Eye: eye}, &fov)
		if err == nil || !strings.Contains(err.Error(), errUnknownEye.Error()) {
			t.Fatalf("eye %d: expected %q, got %v", eye, errUnknownEye, err)
		}
		var trans v3.Vec
		err = client.Call("DeviceService.EyeTranslation", EyeArgs{Index: 0, Eye: eye}, &trans)
		if err == nil || !strings.Contains(err.Error(), errUnknownEye.Error()) {
			t.Fatalf("eye %d: expected %q, got %v", eye, errUnknownEye, err)
		}
	}
	// The connection survives the rejected calls
	var trans v3.Vec
	if err := client.Call("DeviceService.EyeTranslation", EyeArgs{Index: 0, Eye: 0}, &trans); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceServiceChecksCapability(t *testing.T) {
	client := newTestClient(t, &fakeProvider{pose: Pose{Orientation: quat.Number{Real: 1}}})
	var pose Pose
	if err := client.Call("DeviceService.State", 0, &pose); err == nil {
		t.Fatal("expected the HMD to be rejected as a position sensor")
	}
	if err := client.Call("DeviceService.State", 5, &pose); err == nil || !strings.Contains(err.Error(), errUnknownDevice.Error()) {
		t.Fatalf("expected %q, got %v", errUnknownDevice, err)
	}
	if err := client.Call("DeviceService.State", 1, &pose); err != nil {
		t.Fatal(err)
	}
	if pose.Orientation.Real != 1 {
		t.Fatalf("unexpected pose %+v", pose)
	}
}

func TestCheckEye(t *testing.T) {
	if err := checkEye(0); err != nil {
		t.Fatal(err)
	}
	if err := checkEye(1); err != nil {
		t.Fatal(err)
	}
	if err := checkEye(2); !errors.Is(err, errUnknownEye) {
		t.Fatalf("expected errUnknownEye, got %v", err)
	}
}
