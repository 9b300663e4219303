package vr

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"image"
	"testing"
)

type setSizeCall struct {
	Width, Height int
	Stereo        bool
	Scale         float64
}

type fakeSurface struct {
	calls []setSizeCall
}

func (s *fakeSurface) SetSize(width, height int, stereo bool, scaleFactor float64) {
	s.calls = append(s.calls, setSizeCall{width, height, stereo, scaleFactor})
}

func newTestModeController() (*ModeController, *Rig, *fakeSurface) {
	c := NewModeController(640, 338, 1, discardLogger)
	rig := NewRig(DefaultEyeNear, DefaultEyeFar, NewMonoCamera(60, 1, 10000, v3.Vec{Z: 500}), discardLogger)
	surface := &fakeSurface{}
	c.Init(rig, surface)
	return c, rig, surface
}

func TestRenderTargetViewports(t *testing.T) {
	stereo := RenderTarget{Width: 640, Height: 338, Stereo: true}
	w, h := stereo.SurfaceSize()
	if w != 1280 || h != 338 {
		t.Fatalf("expected a 1280x338 surface, got %dx%d", w, h)
	}
	want := []image.Rectangle{image.Rect(0, 0, 640, 338), image.Rect(640, 0, 1280, 338)}
	if diff := cmp.Diff(want, stereo.Viewports()); diff != "" {
		t.Fatalf("stereo viewports mismatch (-want +got):\n%s", diff)
	}
	if stereo.Viewports()[0].Overlaps(stereo.Viewports()[1]) {
		t.Fatal("eye viewports overlap")
	}
	mono := RenderTarget{Width: 640, Height: 338}
	if diff := cmp.Diff([]image.Rectangle{image.Rect(0, 0, 640, 338)}, mono.Viewports()); diff != "" {
		t.Fatalf("mono viewport mismatch (-want +got):\n%s", diff)
	}
}

func TestModeControllerInit(t *testing.T) {
	c, rig, surface := newTestModeController()
	if c.Mode() != ModeMono {
		t.Fatalf("expected MONO, got %s", c.Mode())
	}
	if diff := cmp.Diff([]setSizeCall{{640, 338, false, 1}}, surface.calls); diff != "" {
		t.Fatalf("SetSize calls mismatch (-want +got):\n%s", diff)
	}
	if rig.MonoCamera().Aspect() != 640./338. {
		t.Fatalf("unexpected mono aspect %v", rig.MonoCamera().Aspect())
	}
}

func TestModeControllerStereoAndBack(t *testing.T) {
	c, rig, surface := newTestModeController()
	src := newTestFOVSource()
	if err := c.EnterStereo(640, 338, src, rig, surface); err != nil {
		t.Fatal(err)
	}
	if c.Mode() != ModeStereo {
		t.Fatalf("expected STEREO, got %s", c.Mode())
	}
	if diff := cmp.Diff(RenderTarget{Width: 640, Height: 338, Stereo: true}, c.Target()); diff != "" {
		t.Fatalf("stereo target mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(FovToProjection(src.fov[EyeRight], DefaultEyeNear, DefaultEyeFar), rig.Eye(EyeRight).ProjectionMatrix(), approxOpt); diff != "" {
		t.Fatalf("right projection not configured:\n%s", diff)
	}

	rig.MonoCamera().SetAspect(1, 1) // Must be restored
	c.EnterMono(rig, surface)
	if c.Mode() != ModeMono {
		t.Fatalf("expected MONO, got %s", c.Mode())
	}
	if diff := cmp.Diff(c.Window(), c.Target()); diff != "" {
		t.Fatalf("windowed target not restored (-want +got):\n%s", diff)
	}
	if rig.MonoCamera().Aspect() != 640./338. {
		t.Fatalf("mono aspect not restored: %v", rig.MonoCamera().Aspect())
	}
	want := []setSizeCall{{640, 338, false, 1}, {1280, 338, true, 1}, {640, 338, false, 1}}
	if diff := cmp.Diff(want, surface.calls); diff != "" {
		t.Fatalf("SetSize calls mismatch (-want +got):\n%s", diff)
	}
}

func TestModeControllerIdempotent(t *testing.T) {
	c, rig, surface := newTestModeController()
	src := newTestFOVSource()
	for i := 0; i < 3; i++ {
		if err := c.EnterStereo(960, 1080, src, rig, surface); err != nil {
			t.Fatal(err)
		}
	}
	// Re-entering stereo never reconfigures the cameras
	src.err = ErrNoHMDBound
	if err := c.EnterStereo(960, 1080, src, rig, surface); err != nil {
		t.Fatalf("re-entering stereo queried the hardware: %v", err)
	}
	c.EnterMono(rig, surface)
	c.EnterMono(rig, surface)
	want := []setSizeCall{{640, 338, false, 1}, {1920, 1080, true, 1}, {640, 338, false, 1}}
	if diff := cmp.Diff(want, surface.calls); diff != "" {
		t.Fatalf("SetSize calls mismatch (-want +got):\n%s", diff)
	}
}

func TestModeControllerStereoResize(t *testing.T) {
	c, rig, surface := newTestModeController()
	src := newTestFOVSource()
	if err := c.EnterStereo(640, 338, src, rig, surface); err != nil {
		t.Fatal(err)
	}
	if err := c.EnterStereo(960, 1080, src, rig, surface); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(setSizeCall{1920, 1080, true, 1}, surface.calls[len(surface.calls)-1]); diff != "" {
		t.Fatalf("stereo resize not applied (-want +got):\n%s", diff)
	}
}

func TestModeControllerStereoWithoutHMD(t *testing.T) {
	c, rig, surface := newTestModeController()
	if err := c.EnterStereo(640, 338, &Tracker{}, rig, surface); err != ErrNoHMDBound {
		t.Fatalf("expected ErrNoHMDBound, got %v", err)
	}
	if c.Mode() != ModeMono || c.Target() != c.Window() {
		t.Fatalf("state changed on failure: %s %+v", c.Mode(), c.Target())
	}
	if len(surface.calls) != 1 {
		t.Fatalf("unexpected resize: %+v", surface.calls)
	}
}

func TestModeControllerScaleFactor(t *testing.T) {
	c := NewModeController(800, 600, 2, discardLogger)
	surface := &fakeSurface{}
	c.Init(NewRig(DefaultEyeNear, DefaultEyeFar, NewMonoCamera(60, 1, 10000, v3.Vec{}), discardLogger), surface)
	if diff := cmp.Diff([]setSizeCall{{800, 600, false, 2}}, surface.calls); diff != "" {
		t.Fatalf("SetSize calls mismatch (-want +got):\n%s", diff)
	}
}
