// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"errors"

	"gioui.org/cpu"

	"grapheon.dev/render/backend"
	"grapheon.dev/render/backend/software"
)

// ErrNoBackend is returned when every tier's preconditions fail.
var ErrNoBackend = errors.New("render: no available backend tier")

// Device probes the host environment's drawing and compute
// capabilities. It is the single seam between this package and the
// host's actual GPU context creation, an external collaborator this
// package never constructs itself; tests substitute a fake Device to
// exercise every tier path deterministically.
type Device interface {
	// HasModernDrawAPI reports whether a modern GPU draw API (e.g.
	// WebGPU) context could be created.
	HasModernDrawAPI() bool
	// HasLegacyDrawAPI reports whether a legacy GPU draw API (e.g.
	// WebGL2) context could be created.
	HasLegacyDrawAPI() bool
	// HasComputeShaders reports whether the modern draw API's device
	// also advertises compute shader support.
	HasComputeShaders() bool
	// NewLegacyBackend constructs the legacy-tier GPU backend bound
	// to this device.
	NewLegacyBackend() (backend.Backend, error)
	// NewModernBackend constructs the modern-tier GPU backend bound
	// to this device.
	NewModernBackend() (backend.Backend, error)
}

// tierCandidate pairs a tier tag with the thunk that tries to satisfy
// it, mirroring gio's headless.go newContext first-fit chain
// (newContextPrimary, newContextFallback tried in order, first
// success wins) generalized from 2 entries to 4.
type tierCandidate struct {
	tier  backend.Tier
	ready func(dev Device) bool
	build func(dev Device) (backend.Backend, error)
}

// SelectTier runs the tier table top-down: modern+compute, legacy+SIMD,
// legacy+scalar, software. Preconditions are checked with
// ready(); the first one that is ready AND whose build() succeeds
// wins, same "first success, not first precondition match" contract
// gio's newContext applies across its platform-specific context
// constructors.
func SelectTier(dev Device, viewportW, viewportH int) (backend.Backend, backend.Tier, error) {
	if dev == nil {
		dev = NullDevice{}
	}
	simdAvailable := cpu.Supported
	candidates := []tierCandidate{
		{
			tier:  backend.TierModernCompute,
			ready: func(d Device) bool { return d.HasModernDrawAPI() && d.HasComputeShaders() },
			build: func(d Device) (backend.Backend, error) { return d.NewModernBackend() },
		},
		{
			tier:  backend.TierLegacySIMD,
			ready: func(d Device) bool { return d.HasLegacyDrawAPI() && simdAvailable },
			build: func(d Device) (backend.Backend, error) { return d.NewLegacyBackend() },
		},
		{
			tier:  backend.TierLegacyScalar,
			ready: func(d Device) bool { return d.HasLegacyDrawAPI() },
			build: func(d Device) (backend.Backend, error) { return d.NewLegacyBackend() },
		},
		{
			tier:  backend.TierSoftware,
			ready: func(d Device) bool { return true },
			build: func(d Device) (backend.Backend, error) { return software.New(viewportW, viewportH), nil },
		},
	}

	var firstErr error
	for _, c := range candidates {
		if !c.ready(dev) {
			continue
		}
		be, err := c.build(dev)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return be, c.tier, nil
	}
	if firstErr != nil {
		return nil, 0, firstErr
	}
	return nil, 0, ErrNoBackend
}

// NullDevice reports no GPU capability of any kind, forcing
// SelectTier down to the software tier - useful for hosts (and tests)
// that never have a GPU context, and a safe default when dev is nil.
type NullDevice struct{}

func (NullDevice) HasModernDrawAPI() bool                       { return false }
func (NullDevice) HasLegacyDrawAPI() bool                        { return false }
func (NullDevice) HasComputeShaders() bool                       { return false }
func (NullDevice) NewLegacyBackend() (backend.Backend, error)    { return nil, ErrNoBackend }
func (NullDevice) NewModernBackend() (backend.Backend, error)    { return nil, ErrNoBackend }
