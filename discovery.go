package vr

import (
	"context"
	"github.com/Yeicor/sdfx-vr/internal"
	"github.com/cenkalti/backoff/v5"
	"log"
	"time"
)

// Platform is the device enumeration service. It may offer a promise-style call, a callback-style call or
// neither (discovery unsupported). When both are set the promise-style call is preferred.
type Platform struct {
	// GetDevices returns the enumerated devices (may block, it is called from its own goroutine)
	GetDevices func(ctx context.Context) ([]Device, error)
	// GetDevicesWithCallback calls back (at any time, from any goroutine) with the enumerated devices
	GetDevicesWithCallback func(callback func([]Device))
}

// DiscoveryResult is the completion value of Discover: the binding (possibly empty) and an informative error
// (ErrDiscoveryUnsupported, ErrNoDevice, ErrNoSensorFound or the last enumeration error).
type DiscoveryResult struct {
	Binding DeviceBinding
	Err     error
}

// DiscoveryFuture completes once with the DiscoveryResult.
type DiscoveryFuture = internal.Future[DiscoveryResult]

//-----------------------------------------------------------------------------
// CONFIGURATION
//-----------------------------------------------------------------------------

// DiscoveryOption configures Discover
type DiscoveryOption func(d *discovery)

// OptDiscoveryRetries sets how many times a failing promise-style enumeration is tried before giving up
// (defaults to 3, the callback convention has no error path and is never retried).
func OptDiscoveryRetries(tries uint, initialInterval time.Duration) DiscoveryOption {
	return func(d *discovery) {
		d.maxTries = tries
		d.initialInterval = initialInterval
	}
}

//-----------------------------------------------------------------------------
// DISCOVERY
//-----------------------------------------------------------------------------

type discovery struct {
	maxTries        uint
	initialInterval time.Duration
	result          *DiscoveryFuture
}

// Discover starts the asynchronous device enumeration. Both calling conventions feed the same single-resolution
// future, so later completions (e.g. a callback fired twice) are ignored. There is no timeout: if the platform
// never answers the future never resolves.
func Discover(ctx context.Context, p Platform, opts ...DiscoveryOption) *DiscoveryFuture {
	d := &discovery{
		maxTries:        3,
		initialInterval: 100 * time.Millisecond,
		result:          internal.NewFuture[DiscoveryResult](),
	}
	for _, opt := range opts {
		opt(d)
	}
	switch {
	case p.GetDevices != nil:
		go d.promise(ctx, p.GetDevices)
	case p.GetDevicesWithCallback != nil:
		p.GetDevicesWithCallback(d.complete)
	default:
		d.result.Resolve(DiscoveryResult{Err: ErrDiscoveryUnsupported})
	}
	return d.result
}

func (d *discovery) promise(ctx context.Context, getDevices func(ctx context.Context) ([]Device, error)) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.initialInterval
	devs, err := backoff.Retry(ctx, func() ([]Device, error) {
		return getDevices(ctx)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(d.maxTries), backoff.WithNotify(func(err error, next time.Duration) {
		log.Println("[VR-Devices] Enumeration failed, retrying in", next, "error:", err)
	}))
	if err != nil {
		log.Println("[VR-Devices] Enumeration failed:", err)
		d.result.Resolve(DiscoveryResult{Err: err})
		return
	}
	d.complete(devs)
}

func (d *discovery) complete(devs []Device) {
	log.Println("[VR-Devices]", len(devs), "VR devices")
	binding, err := SelectDevices(devs)
	d.result.Resolve(DiscoveryResult{Binding: binding, Err: err})
}
