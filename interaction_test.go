package vr

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/num/quat"
	"strings"
	"testing"
)

func TestStatusTextMono(t *testing.T) {
	got := statusText("no VR device detected!", ModeMono, 640, 338, 60, nil)
	assert.Equal(t, "no VR device detected!\nMONO 640x338 (TPS: 60.00)", got)
}

func TestStatusTextWholePose(t *testing.T) {
	pose := Pose{
		Orientation:        quat.Number{Real: 1},
		Position:           v3.Vec{Y: 1.7},
		AngularVelocity:    &v3.Vec{Y: 0.5},
		LinearAcceleration: &v3.Vec{Z: -9.8},
	}
	got := statusText("VR device detected: Test HMD", ModeStereo, 1280, 338, 60, &pose)
	lines := strings.Split(got, "\n")
	if assert.Len(t, lines, 6, got) {
		assert.Equal(t, "STEREO 1280x338 (TPS: 60.00)", lines[1])
		assert.True(t, strings.HasPrefix(lines[2], "orientation: "), lines[2])
		assert.Contains(t, lines[2], "w: +1.00000")
		assert.Equal(t, "position: x: +0.00000  y: +1.70000  z: +0.00000", lines[3])
		assert.Equal(t, "angularVelocity: x: +0.00000  y: +0.50000  z: +0.00000", lines[4])
		assert.Equal(t, "linearAcceleration: x: +0.00000  y: +0.00000  z: -9.80000", lines[5])
	}
	assert.NotContains(t, got, "linearVelocity", "unreported values are omitted")
}
