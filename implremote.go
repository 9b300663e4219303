package vr

import (
	"context"
	"errors"
	"github.com/Yeicor/sdfx-vr/internal"
	"github.com/cenkalti/backoff/v4"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"log"
	"net"
	"net/rpc"
	"os"
	"os/signal"
	"sync"
	"time"
)

//-----------------------------------------------------------------------------
// CLIENT
//-----------------------------------------------------------------------------

// RemotePlatform enumerates the devices served by ServeDevices at addr, through the promise convention.
// The connection is closed when the context is done.
func RemotePlatform(addr string) Platform {
	return Platform{GetDevices: func(ctx context.Context) ([]Device, error) {
		cl, err := dialRemote(ctx, addr)
		if err != nil {
			return nil, err
		}
		devs, err := remoteDevices(cl)
		if err != nil {
			_ = cl.Close()
			return nil, err
		}
		go func() {
			<-ctx.Done()
			_ = cl.Close()
		}()
		return devs, nil
	}}
}

// dialRemote connects to the device server, retrying while it starts up
func dialRemote(ctx context.Context, addr string) (*rpc.Client, error) {
	var cl *rpc.Client
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	err := backoff.RetryNotify(func() error {
		conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		cl = rpc.NewClient(conn)
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		log.Println("[VR-Remote] Could not connect to", addr, "retrying in", next, "error:", err)
	})
	return cl, err
}

func remoteDevices(cl *rpc.Client) ([]Device, error) {
	var infos []internal.DeviceInfo
	if err := cl.Call("DeviceService.Devices", 0, &infos); err != nil {
		return nil, err
	}
	devs := make([]Device, 0, len(infos))
	for _, info := range infos {
		dev := Device{Capability: Capability(info.Capability), HardwareUnitID: info.HardwareUnitID, DeviceName: info.DeviceName}
		switch dev.Capability {
		case CapabilityHMD:
			// The hardware parameters are static: fetch them once
			hmd := &staticHMD{}
			for _, eye := range []Eye{EyeLeft, EyeRight} {
				args := internal.EyeArgs{Index: info.Index, Eye: int(eye)}
				if err := cl.Call("DeviceService.FieldOfView", args, &hmd.fov[eye]); err != nil {
					return nil, err
				}
				if err := cl.Call("DeviceService.EyeTranslation", args, &hmd.offsets[eye]); err != nil {
					return nil, err
				}
			}
			dev.HMD = hmd
		case CapabilityPositionSensor:
			dev.Sensor = &remoteSensor{cl: cl, index: info.Index, last: IdentityPose()}
		default:
			log.Println("[VR-Remote] Ignoring device", info.DeviceName, "with unknown capability", info.Capability)
			continue
		}
		devs = append(devs, dev)
	}
	return devs, nil
}

// remoteSensor implements PositionSensor by calling a remote implementation (using Go's net/rpc)
type remoteSensor struct {
	cl    *rpc.Client
	index int
	last  Pose
}

func (s *remoteSensor) State() Pose {
	var out Pose
	err := s.cl.Call("DeviceService.State", s.index, &out)
	if err != nil {
		log.Println("[VR-Remote] Error on remote call (DeviceService.State):", err)
		return s.last // Keep the last known pose
	}
	s.last = out
	return out
}

// ShutdownRemote asks the device server at addr to stop (waiting at most timeout for it to accept)
func ShutdownRemote(ctx context.Context, addr string, timeout time.Duration) error {
	cl, err := dialRemote(ctx, addr)
	if err != nil {
		return err
	}
	defer func(cl *rpc.Client) {
		_ = cl.Close()
	}(cl)
	var out int
	return cl.Call("DeviceService.Shutdown", timeout, &out)
}

//-----------------------------------------------------------------------------
// SERVER
//-----------------------------------------------------------------------------

// deviceProvider exposes a device list to the RPC service
type deviceProvider struct {
	devs []Device
}

func (p *deviceProvider) Devices() []internal.DeviceInfo {
	infos := make([]internal.DeviceInfo, len(p.devs))
	for i, d := range p.devs {
		infos[i] = internal.DeviceInfo{Index: i, Capability: string(d.Capability), HardwareUnitID: d.HardwareUnitID, DeviceName: d.DeviceName}
	}
	return infos
}

func (p *deviceProvider) FieldOfView(index, eye int) EyeFOV {
	return p.devs[index].HMD.RecommendedEyeFieldOfView(Eye(eye))
}

func (p *deviceProvider) EyeTranslation(index, eye int) v3.Vec {
	return p.devs[index].HMD.EyeTranslation(Eye(eye))
}

func (p *deviceProvider) State(index int) Pose {
	return p.devs[index].Sensor.State()
}

// ServeDevices serves the devices over net/rpc on the listener (see RemotePlatform) until the context is done,
// a termination signal is received or a client calls ShutdownRemote. The listener is closed on return.
func ServeDevices(ctx context.Context, l net.Listener, devs []Device) error {
	done := make(chan os.Signal, 1)
	signal.Notify(done, signals()...)
	defer signal.Stop(done)
	server := internal.NewDeviceService(&deviceProvider{devs: devs}, done)
	log.Println("[VR-Remote] Serving", len(devs), "devices on", l.Addr())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		server.Accept(l) // Returns once the listener is closed
	}()
	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case sig := <-done:
		log.Println("[VR-Remote] Stopping on", sig)
	}
	if closeErr := l.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		log.Println("[VR-Remote] Error closing listener:", closeErr)
	}
	wg.Wait()
	return err
}
