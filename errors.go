package vr

import "errors"

var (
	// ErrNoHMDBound is returned by FOV and eye offset queries while no HMD is bound.
	ErrNoHMDBound = errors.New("no HMD bound")
	// ErrNoSensorBound is returned by pose queries while no position sensor is bound.
	ErrNoSensorBound = errors.New("no position sensor bound")
	// ErrDiscoveryUnsupported means the platform offers no device enumeration at all (handled as "nothing found").
	ErrDiscoveryUnsupported = errors.New("device discovery unsupported")
	// ErrNoDevice means discovery completed without finding an HMD.
	ErrNoDevice = errors.New("no VR device detected")
	// ErrNoSensorFound is the warning for an HMD without a matching position sensor (static pose).
	ErrNoSensorFound = errors.New("found a HMD, but didn't find its orientation sensor")
	// ErrFullscreenRejectedWithoutHMD is returned when fullscreen stereo is requested with no HMD bound.
	ErrFullscreenRejectedWithoutHMD = errors.New("no HMD found")
)
