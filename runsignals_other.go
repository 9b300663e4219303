//go:build !linux
// +build !linux

package vr

import (
	"os"
)

// signals stop a device server
func signals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
