package vr

import (
	"context"
	"fmt"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"gonum.org/v1/gonum/num/quat"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// deviceFile is the TOML description of a set of devices, see LoadDevices
type deviceFile struct {
	Devices []deviceFileEntry `toml:"device"`
}

type deviceFileEntry struct {
	Capability     string         `toml:"capability"`
	HardwareUnitID string         `toml:"hardware_unit_id"`
	Name           string         `toml:"name"`
	Left           *eyeFileEntry  `toml:"left"`
	Right          *eyeFileEntry  `toml:"right"`
	Pose           *poseFileEntry `toml:"pose"`
}

type eyeFileEntry struct {
	FOV struct {
		Up    float64 `toml:"up"`
		Down  float64 `toml:"down"`
		Left  float64 `toml:"left"`
		Right float64 `toml:"right"`
	} `toml:"fov"`
	Translation vecFileEntry `toml:"translation"`
}

type poseFileEntry struct {
	Orientation struct {
		X float64 `toml:"x"`
		Y float64 `toml:"y"`
		Z float64 `toml:"z"`
		W float64 `toml:"w"`
	} `toml:"orientation"`
	Position vecFileEntry `toml:"position"`
}

type vecFileEntry struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
	Z float64 `toml:"z"`
}

func (e *eyeFileEntry) fov() EyeFOV {
	return EyeFOV{UpDegrees: e.FOV.Up, DownDegrees: e.FOV.Down, LeftDegrees: e.FOV.Left, RightDegrees: e.FOV.Right}
}

func (v vecFileEntry) vec() v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func (p *poseFileEntry) pose() Pose {
	if p == nil {
		return IdentityPose()
	}
	o := p.Orientation
	return Pose{Orientation: quat.Number{Real: o.W, Imag: o.X, Jmag: o.Y, Kmag: o.Z}, Position: p.Position.vec()}
}

//-----------------------------------------------------------------------------
// STATIC DEVICES
//-----------------------------------------------------------------------------

// staticHMD is an HMDDevice with fixed parameters
type staticHMD struct {
	fov     [2]EyeFOV
	offsets [2]v3.Vec
}

func (h *staticHMD) RecommendedEyeFieldOfView(eye Eye) EyeFOV { return h.fov[eye] }
func (h *staticHMD) EyeTranslation(eye Eye) v3.Vec            { return h.offsets[eye] }

// manualSensor is a PositionSensor whose pose is set from outside (e.g. file reloads)
type manualSensor struct {
	lock *sync.RWMutex
	pose Pose
}

func newManualSensor(p Pose) *manualSensor {
	return &manualSensor{lock: &sync.RWMutex{}, pose: p}
}

func (s *manualSensor) State() Pose {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.pose
}

func (s *manualSensor) set(p Pose) {
	s.lock.Lock()
	s.pose = p
	s.lock.Unlock()
}

// ParseDevices builds the devices described by a TOML document: one [[device]] table per device, with
// capability "hmd" (requiring [device.left] and [device.right] fov and translation) or "position_sensor"
// (with an optional [device.pose], identity by default).
func ParseDevices(data []byte) ([]Device, error) {
	var f deviceFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	devs := make([]Device, 0, len(f.Devices))
	for i, e := range f.Devices {
		dev := Device{Capability: Capability(e.Capability), HardwareUnitID: e.HardwareUnitID, DeviceName: e.Name}
		switch dev.Capability {
		case CapabilityHMD:
			if e.Left == nil || e.Right == nil {
				return nil, fmt.Errorf("device %d (%s): an HMD needs both [device.left] and [device.right]", i, e.Name)
			}
			dev.HMD = &staticHMD{
				fov:     [2]EyeFOV{e.Left.fov(), e.Right.fov()},
				offsets: [2]v3.Vec{e.Left.Translation.vec(), e.Right.Translation.vec()},
			}
		case CapabilityPositionSensor:
			dev.Sensor = newManualSensor(e.Pose.pose())
		default:
			return nil, fmt.Errorf("device %d (%s): unknown capability %q", i, e.Name, e.Capability)
		}
		devs = append(devs, dev)
	}
	return devs, nil
}

// LoadDevices reads a TOML device file, see ParseDevices.
func LoadDevices(path string) ([]Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	devs, err := ParseDevices(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return devs, nil
}

//-----------------------------------------------------------------------------
// FILE PLATFORM
//-----------------------------------------------------------------------------

// FilePlatform enumerates the devices of a TOML device file through the callback convention. While the context
// is alive the file is watched and every change updates the poses of the already enumerated position sensors
// (the field of view of an HMD is static for the session).
func FilePlatform(ctx context.Context, path string) Platform {
	return Platform{GetDevicesWithCallback: func(callback func([]Device)) {
		go func() {
			devs, err := LoadDevices(path)
			if err != nil {
				log.Println("[VR-Devices] Error loading device file:", err)
			}
			callback(devs)
			if err == nil {
				watchDeviceFile(ctx, path, devs)
			}
		}()
	}}
}

func watchDeviceFile(ctx context.Context, path string, devs []Device) {
	watcher, err := newFsWatcher()
	if err != nil {
		log.Println("[VR-Devices] Device file changes will be ignored:", err)
		return
	}
	defer func(watcher *fsnotify.Watcher) {
		_ = watcher.Close()
	}(watcher)
	// Watch the directory: editors usually replace the file instead of writing to it
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		log.Println("[VR-Devices] Device file changes will be ignored:", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			reloadSensors(path, devs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Println("[VR-Devices] Device file watcher error:", err)
		}
	}
}

// reloadSensors copies the poses of the file's position sensors to the enumerated ones (matched by order)
func reloadSensors(path string, devs []Device) {
	newDevs, err := LoadDevices(path)
	if err != nil {
		log.Println("[VR-Devices] Ignoring device file change:", err)
		return
	}
	var sensors []*manualSensor
	for _, d := range devs {
		if s, ok := d.Sensor.(*manualSensor); ok {
			sensors = append(sensors, s)
		}
	}
	for _, d := range newDevs {
		if d.Sensor == nil || len(sensors) == 0 {
			continue
		}
		sensors[0].set(d.Sensor.State())
		sensors = sensors[1:]
	}
}
