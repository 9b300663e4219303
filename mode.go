package vr

import (
	"image"
	"log"
)

// ViewMode is the current output mode.
type ViewMode int

const (
	ModeMono ViewMode = iota
	ModeStereo
)

func (m ViewMode) String() string {
	if m == ModeStereo {
		return "STEREO"
	}
	return "MONO"
}

// RenderTarget is the per-eye render size and whether the output is split side by side.
type RenderTarget struct {
	Width, Height int
	Stereo        bool
}

// SurfaceSize is the total output size: twice the per-eye width in stereo.
func (t RenderTarget) SurfaceSize() (width, height int) {
	if t.Stereo {
		return 2 * t.Width, t.Height
	}
	return t.Width, t.Height
}

// Viewports returns the disjoint rectangles drawn each frame: left and right eye in stereo, the full surface in mono.
func (t RenderTarget) Viewports() []image.Rectangle {
	if t.Stereo {
		return []image.Rectangle{
			image.Rect(0, 0, t.Width, t.Height),
			image.Rect(t.Width, 0, 2*t.Width, t.Height),
		}
	}
	return []image.Rectangle{image.Rect(0, 0, t.Width, t.Height)}
}

// Surface is the part of the renderer that the mode controller resizes.
type Surface interface {
	SetSize(width, height int, stereo bool, scaleFactor float64)
}

type surfaceSize struct {
	width, height int
	stereo        bool
}

//-----------------------------------------------------------------------------
// MODE CONTROLLER
//-----------------------------------------------------------------------------

// ModeController is the MONO/STEREO state machine. Transitions are synchronous and idempotent: re-entering the
// current mode never touches the cameras and only resizes the surface if its dimensions changed.
type ModeController struct {
	mode        ViewMode
	window      RenderTarget // The windowed (mono) target, restored when leaving stereo
	target      RenderTarget
	scaleFactor float64
	lastSize    *surfaceSize // Last size issued to the surface (nil before the first one)
	logger      *log.Logger
}

// NewModeController starts in MONO with the given windowed size. Transitions are logged to logger
// (log.Default() if nil).
func NewModeController(windowWidth, windowHeight int, scaleFactor float64, logger *log.Logger) *ModeController {
	if logger == nil {
		logger = log.Default()
	}
	window := RenderTarget{Width: windowWidth, Height: windowHeight}
	return &ModeController{mode: ModeMono, window: window, target: window, scaleFactor: scaleFactor, logger: logger}
}

func (c *ModeController) Mode() ViewMode       { return c.mode }
func (c *ModeController) Target() RenderTarget { return c.target }
func (c *ModeController) Window() RenderTarget { return c.window }

// Init applies the initial mono state to the camera and the surface.
func (c *ModeController) Init(rig *Rig, surface Surface) {
	rig.MonoCamera().SetAspect(c.window.Width, c.window.Height)
	c.resize(surface)
}

// EnterStereo switches to side-by-side rendering with the given per-eye size. It fails with ErrNoHMDBound (state
// unchanged) if the source has no HMD. Already in stereo, only a size change is applied.
func (c *ModeController) EnterStereo(perEyeWidth, perEyeHeight int, src FOVSource, rig *Rig, surface Surface) error {
	if perEyeWidth <= 0 || perEyeHeight <= 0 {
		perEyeWidth, perEyeHeight = c.window.Width, c.window.Height
	}
	newTarget := RenderTarget{Width: perEyeWidth, Height: perEyeHeight, Stereo: true}
	if c.mode == ModeStereo {
		c.target = newTarget
		c.resize(surface)
		return nil
	}
	if err := rig.ConfigureProjections(src); err != nil {
		return err
	}
	c.mode = ModeStereo
	c.target = newTarget
	left, right := rig.EyeTranslations()
	c.logger.Println("Entering STEREO", perEyeWidth, "x", perEyeHeight, "per eye. Left translation:", left, "Right translation:", right)
	c.resize(surface)
	return nil
}

// EnterMono restores the windowed target and the mono camera's aspect ratio.
func (c *ModeController) EnterMono(rig *Rig, surface Surface) {
	if c.mode == ModeMono {
		c.target = c.window
		c.resize(surface)
		return
	}
	c.mode = ModeMono
	c.target = c.window
	rig.MonoCamera().SetAspect(c.target.Width, c.target.Height)
	c.logger.Println("Entering MONO", c.target.Width, "x", c.target.Height)
	c.resize(surface)
}

// resize issues SetSize only if the surface size actually changes
func (c *ModeController) resize(surface Surface) {
	w, h := c.target.SurfaceSize()
	size := &surfaceSize{width: w, height: h, stereo: c.target.Stereo}
	if c.lastSize != nil && *c.lastSize == *size {
		return
	}
	c.lastSize = size
	surface.SetSize(w, h, size.stereo, c.scaleFactor)
}
