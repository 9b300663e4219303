package vr

import (
	"context"
	"image"
	"time"
)

// Scheduler runs the given function once on the next display refresh (animation-frame style).
type Scheduler interface {
	RequestFrame(tick func())
}

// Animate arms the render loop: every frame re-requests the next one and then ticks. There is no stop operation,
// the loop lives as long as the scheduler keeps calling.
func (s *Session) Animate(sched Scheduler) {
	var frame func()
	frame = func() {
		sched.RequestFrame(frame)
		s.Tick()
	}
	sched.RequestFrame(frame)
}

// Tick renders one frame: handles a completed discovery, samples the head pose in stereo mode and draws either both
// eyes into their own viewport+scissor rectangle or the mono camera into the whole surface.
func (s *Session) Tick() {
	ctx, cancelFunc := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancelFunc()
	if !s.tickLock.TryLock(ctx) { // Never overlap ticks
		s.logger.Println("Tick skipped: the previous one is still rendering")
		return
	}
	defer s.tickLock.Unlock()

	s.pollDiscovery()

	stereo := s.mode.Mode() == ModeStereo
	if stereo && s.tracker.HasSensor() {
		pose, err := s.tracker.Sample()
		if err != nil {
			s.logger.Println("Pose sample failed:", err)
		} else {
			s.rig.UpdatePose(pose)
			s.lastPose = pose
		}
	}

	s.renderer.EnableScissorTest(true)
	viewports := s.mode.Target().Viewports()
	if stereo {
		s.draw(viewports[0], s.rig.Eye(EyeLeft))
		s.draw(viewports[1], s.rig.Eye(EyeRight))
	} else {
		s.draw(viewports[0], s.rig.MonoCamera())
	}
}

func (s *Session) draw(rect image.Rectangle, cam Camera) {
	s.renderer.SetViewport(rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())
	s.renderer.SetScissor(rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())
	s.renderer.Render(s.scene, cam)
}
