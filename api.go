package vr

import (
	"context"
	"errors"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/subchen/go-trylock/v2"
	"log"
)

// Renderer is the opaque scene rasterizer: it draws a scene from a camera into a sub-rectangle of one framebuffer.
type Renderer interface {
	Surface
	SetViewport(x, y, width, height int)
	SetScissor(x, y, width, height int)
	EnableScissorTest(enabled bool)
	Render(scene interface{}, camera Camera)
}

// Fullscreen is the platform's fullscreen service. Its change notification carries no payload: the host calls
// Session.OnFullscreenChanged and the state is re-queried through IsFullscreen and ScreenSize.
type Fullscreen interface {
	// RequestFullscreen asks for fullscreen output, with the HMD as display hint
	RequestFullscreen(hmd *Device) error
	ExitFullscreen() error
	IsFullscreen() bool
	ScreenSize() (width, height int)
}

// Session is the explicit context of one stereo viewer: device binding, cameras, mode and collaborators.
// All of its state is modified only from the discovery completion (polled by Tick), OnFullscreenChanged and Tick,
// which the host must call from a single goroutine.
type Session struct {
	id         string
	logger     *log.Logger
	renderer   Renderer
	scene      interface{}
	fullscreen Fullscreen

	tracker *Tracker
	rig     *Rig
	mode    *ModeController

	// Configuration
	windowWidth, windowHeight int
	eyeNear, eyeFar           float64
	monoFovY, monoNear        float64
	monoFar                   float64
	monoPosition              v3.Vec
	pixelRatio                float64
	stereoOnDiscovery         bool
	status                    func(msg string)
	discoveryOpts             []DiscoveryOption

	discovery        *DiscoveryFuture
	discoveryHandled bool
	tickLock         interface {
		TryLock(ctx context.Context) bool
		Unlock()
	}
	lastPose   Pose
	lastStatus string
}

//-----------------------------------------------------------------------------
// CONFIGURATION
//-----------------------------------------------------------------------------

// Option configures a Session
type Option func(s *Session)

// OptWindowSize sets the windowed (mono) render size (default 640x338).
func OptWindowSize(width, height int) Option {
	return func(s *Session) {
		s.windowWidth = width
		s.windowHeight = height
	}
}

// OptClipPlanes sets the near and far clip distances of both eye cameras.
func OptClipPlanes(near, far float64) Option {
	return func(s *Session) {
		s.eyeNear = near
		s.eyeFar = far
	}
}

// OptMonoCamera configures the mono camera (vertical FOV in degrees, clip planes and position; looks towards -Z).
func OptMonoCamera(fovYDegrees, near, far float64, position v3.Vec) Option {
	return func(s *Session) {
		s.monoFovY = fovYDegrees
		s.monoNear = near
		s.monoFar = far
		s.monoPosition = position
	}
}

// OptStereoOnDiscovery enters stereo mode (at the windowed size per eye) as soon as an HMD is discovered (default true).
func OptStereoOnDiscovery(enabled bool) Option {
	return func(s *Session) {
		s.stereoOnDiscovery = enabled
	}
}

// OptPixelRatio sets the scale factor passed to the renderer when resizing the output surface (default 1).
func OptPixelRatio(ratio float64) Option {
	return func(s *Session) {
		s.pixelRatio = ratio
	}
}

// OptStatus sets the sink for user-visible status messages and warnings (default: logged).
func OptStatus(status func(msg string)) Option {
	return func(s *Session) {
		s.status = status
	}
}

// OptLogger replaces the session logger.
func OptLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// OptDiscovery forwards options to the device discovery started by Start.
func OptDiscovery(opts ...DiscoveryOption) Option {
	return func(s *Session) {
		s.discoveryOpts = append(s.discoveryOpts, opts...)
	}
}

//-----------------------------------------------------------------------------
// SESSION
//-----------------------------------------------------------------------------

// NewSession creates a session in MONO mode. Call Start to size the output and begin device discovery.
func NewSession(renderer Renderer, scene interface{}, fullscreen Fullscreen, opts ...Option) *Session {
	id := uuid.NewString()
	s := &Session{
		id:                id,
		logger:            log.New(log.Writer(), "[VR "+id[:8]+"] ", log.Flags()),
		renderer:          renderer,
		scene:             scene,
		fullscreen:        fullscreen,
		tracker:           &Tracker{},
		windowWidth:       640,
		windowHeight:      338,
		eyeNear:           DefaultEyeNear,
		eyeFar:            DefaultEyeFar,
		monoFovY:          60,
		monoNear:          1,
		monoFar:           10000,
		monoPosition:      v3.Vec{Z: 500},
		pixelRatio:        1,
		stereoOnDiscovery: true,
		lastPose:          IdentityPose(),
		tickLock:          trylock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.status == nil {
		s.status = func(msg string) { s.logger.Println("Status:", msg) }
	}
	s.rig = NewRig(s.eyeNear, s.eyeFar, NewMonoCamera(s.monoFovY, s.monoNear, s.monoFar, s.monoPosition), s.logger)
	s.mode = NewModeController(s.windowWidth, s.windowHeight, s.pixelRatio, s.logger)
	return s
}

// ID identifies the session in logs
func (s *Session) ID() string { return s.id }

func (s *Session) Tracker() *Tracker       { return s.tracker }
func (s *Session) Rig() *Rig               { return s.rig }
func (s *Session) Mode() *ModeController   { return s.mode }
func (s *Session) LastPose() Pose          { return s.lastPose }
func (s *Session) LastStatus() string      { return s.lastStatus }
func (s *Session) Scene() interface{}      { return s.scene }
func (s *Session) SetScene(sc interface{}) { s.scene = sc }

// Start sizes the output surface for the initial mono mode and begins the asynchronous device discovery.
// Its result is handled by the next Tick.
func (s *Session) Start(ctx context.Context, p Platform) {
	s.mode.Init(s.rig, s.renderer)
	if p.GetDevices == nil && p.GetDevicesWithCallback == nil {
		s.setStatus("No support for VR devices")
	}
	s.discovery = Discover(ctx, p, s.discoveryOpts...)
}

// DiscoveryDone reports whether the discovery result has already been handled
func (s *Session) DiscoveryDone() bool {
	return s.discoveryHandled
}

func (s *Session) pollDiscovery() {
	if s.discovery == nil || s.discoveryHandled {
		return
	}
	res, ok := s.discovery.Value()
	if !ok {
		return
	}
	s.discoveryHandled = true
	s.onDiscovered(res)
}

func (s *Session) onDiscovered(res DiscoveryResult) {
	s.tracker.Bind(res.Binding)
	if !s.tracker.HasHMD() {
		switch {
		case errors.Is(res.Err, ErrDiscoveryUnsupported):
			s.logger.Println("Device discovery unsupported, staying in", s.mode.Mode())
		case res.Err != nil && !errors.Is(res.Err, ErrNoDevice):
			s.logger.Println("Device discovery failed:", res.Err)
			s.setStatus(ErrNoDevice.Error() + "!")
		default:
			s.setStatus(ErrNoDevice.Error() + "!")
		}
		s.mode.EnterMono(s.rig, s.renderer)
		return
	}
	if errors.Is(res.Err, ErrNoSensorFound) {
		s.logger.Println("Warning:", res.Err)
		s.setStatus(ErrNoSensorFound.Error() + "?")
	}
	s.setStatus("VR device detected: " + res.Binding.HMD.DeviceName)
	if s.stereoOnDiscovery {
		if err := s.mode.EnterStereo(s.windowWidth, s.windowHeight, s.tracker, s.rig, s.renderer); err != nil {
			s.logger.Println("Could not enter stereo mode:", err)
		}
	}
}

// OnFullscreenChanged handles the (payload-less) fullscreen change notification: fullscreen with a bound HMD renders
// stereo at half the screen width per eye, anything else renders mono. Duplicate notifications are no-ops.
func (s *Session) OnFullscreenChanged() {
	if s.fullscreen.IsFullscreen() && s.tracker.HasHMD() {
		w, h := s.fullscreen.ScreenSize()
		if err := s.mode.EnterStereo(w/2, h, s.tracker, s.rig, s.renderer); err != nil {
			s.logger.Println("Could not enter stereo mode:", err)
			s.mode.EnterMono(s.rig, s.renderer)
		}
		return
	}
	s.mode.EnterMono(s.rig, s.renderer)
}

// ToggleFullscreen requests (or exits) fullscreen stereo output. Without a bound HMD the request is rejected with
// ErrFullscreenRejectedWithoutHMD and a warning, leaving the state unchanged.
func (s *Session) ToggleFullscreen() error {
	if !s.tracker.HasHMD() {
		s.setStatus(ErrFullscreenRejectedWithoutHMD.Error())
		return ErrFullscreenRejectedWithoutHMD
	}
	if s.fullscreen.IsFullscreen() {
		return s.fullscreen.ExitFullscreen()
	}
	return s.fullscreen.RequestFullscreen(s.tracker.Binding().HMD)
}

func (s *Session) setStatus(msg string) {
	s.lastStatus = msg
	s.status(msg)
}
