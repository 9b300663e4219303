package internal

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/num/quat"
	"strings"
	"testing"
)

func TestFormatNumbersVector(t *testing.T) {
	got := FormatNumbers(v3.Vec{X: 1, Y: -2, Z: 0.5})
	expected := "x: +1.00000  y: -2.00000  z: +0.50000"
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestFormatNumbersQuaternion(t *testing.T) {
	got := FormatNumbers(quat.Number{Real: 1, Imag: 0.25})
	for _, expected := range []string{"w: +1.00000", "x: +0.25000", "y: +0.00000", "z: +0.00000"} {
		if !strings.Contains(got, expected) {
			t.Fatalf("expected %q in %q", expected, got)
		}
	}
}

func TestFormatNumbersNestedOptional(t *testing.T) {
	p := &Pose{
		Orientation:    quat.Number{Real: 1},
		Position:       v3.Vec{X: 0.1},
		LinearVelocity: &v3.Vec{Z: -3},
	}
	got := FormatNumbers(p)
	for _, expected := range []string{"position.x: +0.10000", "linearVelocity.z: -3.00000", "orientation.w: +1.00000"} {
		if !strings.Contains(got, expected) {
			t.Fatalf("expected %q in %q", expected, got)
		}
	}
	if strings.Contains(got, "angularVelocity") {
		t.Fatalf("nil optional fields should be skipped, got %q", got)
	}
}

func TestFormatSigned(t *testing.T) {
	for in, expected := range map[float64]string{0: "+0.00000", -0.5: "-0.50000", 12.345678: "+12.34568"} {
		if got := FormatSigned(in); got != expected {
			t.Fatalf("FormatSigned(%v): expected %q, got %q", in, expected, got)
		}
	}
}
