package internal

import (
	"errors"
	"fmt"
	"github.com/barkimedes/go-deepcopy"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"log"
	"net/rpc"
	"os"
	"time"
)

// DeviceService is an internal struct that has to be exported for RPC.
// It is the server counterpart to the remote platform client: it provides remote access to a DeviceProvider.
type DeviceService struct {
	provider DeviceProvider
	done     chan os.Signal
}

// NewDeviceService see DeviceService
func NewDeviceService(provider DeviceProvider, done chan os.Signal) *rpc.Server {
	server := rpc.NewServer()
	srv := DeviceService{
		provider: provider,
		done:     done,
	}
	err := server.Register(&srv)
	if err != nil {
		panic(err) // Shouldn't happen (only on bad implementation)
	}
	return server
}

var (
	errUnknownDevice = errors.New("unknown device index")
	errUnknownEye    = errors.New("unknown eye (0: left, 1: right)")
)

func (d *DeviceService) checkIndex(index int, capability string) error {
	for _, info := range d.provider.Devices() {
		if info.Index == index {
			if info.Capability != capability {
				return fmt.Errorf("device %d is a %q, not a %q", index, info.Capability, capability)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %d", errUnknownDevice, index)
}

func checkEye(eye int) error {
	if eye != 0 && eye != 1 {
		return fmt.Errorf("%w: %d", errUnknownEye, eye)
	}
	return nil
}

// Devices is an internal method that has to be exported for RPC.
func (d *DeviceService) Devices(_ int, out *[]DeviceInfo) error {
	*out = d.provider.Devices()
	log.Println("[VR-Remote] Enumerated", len(*out), "devices")
	return nil
}

// FieldOfView is an internal method that has to be exported for RPC.
func (d *DeviceService) FieldOfView(args EyeArgs, out *EyeFOV) error {
	if err := d.checkIndex(args.Index, "hmd"); err != nil {
		return err
	}
	if err := checkEye(args.Eye); err != nil {
		return err
	}
	*out = d.provider.FieldOfView(args.Index, args.Eye)
	return nil
}

// EyeTranslation is an internal method that has to be exported for RPC.
func (d *DeviceService) EyeTranslation(args EyeArgs, out *v3.Vec) error {
	if err := d.checkIndex(args.Index, "hmd"); err != nil {
		return err
	}
	if err := checkEye(args.Eye); err != nil {
		return err
	}
	*out = d.provider.EyeTranslation(args.Index, args.Eye)
	return nil
}

// State is an internal method that has to be exported for RPC.
// The pose is copied before encoding so that the provider may keep updating its own buffers.
func (d *DeviceService) State(index int, out *Pose) error {
	if err := d.checkIndex(index, "position_sensor"); err != nil {
		return err
	}
	state := d.provider.State(index)
	*out = deepcopy.MustAnything(state).(Pose)
	return nil
}

// Shutdown is an internal method that has to be exported for RPC.
// Shutdown sends a signal on the configured channel (with a timeout)
func (d *DeviceService) Shutdown(t time.Duration, _ *int) error {
	select {
	case d.done <- os.Kill:
		return nil
	case <-time.After(t):
		return errors.New("shutdown timeout")
	}
}
