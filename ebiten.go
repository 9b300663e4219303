package vr

import (
	"context"
	"github.com/hajimehoshi/ebiten/v2"
	"image"
	"log"
)

// EbitenHost shows a Session in an ebiten window: it schedules its frames (one per ebiten update), detects the
// fullscreen changes and displays the framebuffer of its FauxglRenderer.
type EbitenHost struct {
	session       *Session
	renderer      *FauxglRenderer
	pendingFrame  func()
	wasFullscreen bool
	surfaceImg    *ebiten.Image
	windowSize    image.Point
	showStatus    bool
}

// NewEbitenHost creates a host for the given renderer. Use EbitenFullscreen as the Session's fullscreen service.
func NewEbitenHost(renderer *FauxglRenderer) *EbitenHost {
	return &EbitenHost{renderer: renderer, showStatus: true}
}

// RequestFrame implements Scheduler: the function runs on the next ebiten update.
func (h *EbitenHost) RequestFrame(tick func()) {
	h.pendingFrame = tick
}

// Run starts the session and its render loop and blocks until the window is closed or the context is done.
func (h *EbitenHost) Run(ctx context.Context, s *Session, p Platform) error {
	h.session = s
	h.wasFullscreen = ebiten.IsFullscreen()
	ebiten.SetWindowTitle("VR (" + s.ID()[:8] + ")")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	s.Start(ctx, p)
	s.Animate(h)
	return ebiten.RunGame(ebitenGame{h, ctx})
}

// ebitenGame hides the ebiten implementation while behaving like an *EbitenHost internally
type ebitenGame struct {
	*EbitenHost
	ctx context.Context
}

func (g ebitenGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if fullscreen := ebiten.IsFullscreen(); fullscreen != g.wasFullscreen {
		g.wasFullscreen = fullscreen
		g.session.OnFullscreenChanged()
	}
	g.onUpdateInputs()
	if !g.wasFullscreen {
		g.syncWindowSize()
	}
	if tick := g.pendingFrame; tick != nil {
		g.pendingFrame = nil
		tick()
	}
	return nil
}

func (g ebitenGame) Draw(screen *ebiten.Image) {
	g.renderer.Framebuffer(func(fb *image.NRGBA) {
		if g.surfaceImg == nil || g.surfaceImg.Bounds().Size() != fb.Bounds().Size() {
			if g.surfaceImg != nil {
				g.surfaceImg.Deallocate()
			}
			g.surfaceImg = ebiten.NewImage(fb.Bounds().Dx(), fb.Bounds().Dy())
		}
		g.surfaceImg.WritePixels(fb.Pix) // Always opaque, so already premultiplied
	})
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(screen.Bounds().Dx())/float64(g.surfaceImg.Bounds().Dx()),
		float64(screen.Bounds().Dy())/float64(g.surfaceImg.Bounds().Dy()))
	screen.DrawImage(g.surfaceImg, op)
	g.drawUI(screen)
}

func (g ebitenGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return outsideWidth, outsideHeight // Use all available pixels, the framebuffer is scaled to fit
}

// syncWindowSize makes the window follow the (windowed) surface size set by the mode controller
func (h *EbitenHost) syncWindowSize() {
	w, hh := h.session.Mode().Target().SurfaceSize()
	size := image.Pt(w, hh)
	if size != h.windowSize {
		h.windowSize = size
		ebiten.SetWindowSize(w, hh)
	}
}

//-----------------------------------------------------------------------------
// FULLSCREEN
//-----------------------------------------------------------------------------

// EbitenFullscreen is the Fullscreen service of the ebiten window. Change notifications are delivered by
// EbitenHost, which polls the state every update.
type EbitenFullscreen struct{}

func (EbitenFullscreen) RequestFullscreen(hmd *Device) error {
	if hmd != nil {
		log.Println("[VR] Requesting fullscreen for", hmd.DeviceName)
	}
	ebiten.SetFullscreen(true)
	return nil
}

func (EbitenFullscreen) ExitFullscreen() error {
	ebiten.SetFullscreen(false)
	return nil
}

func (EbitenFullscreen) IsFullscreen() bool {
	return ebiten.IsFullscreen()
}

func (EbitenFullscreen) ScreenSize() (width, height int) {
	return ebiten.Monitor().Size()
}
