// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"errors"
	"testing"

	"grapheon.dev/render/backend"
	"grapheon.dev/render/backend/software"
)

// fakeDevice lets each test dial in exactly the capability combination
// it wants to probe, standing in for the real GPU-context-creation
// collaborator SelectTier's Device interface documents.
type fakeDevice struct {
	modern, legacy, compute bool
	modernErr, legacyErr    error
}

func (d fakeDevice) HasModernDrawAPI() bool  { return d.modern }
func (d fakeDevice) HasLegacyDrawAPI() bool  { return d.legacy }
func (d fakeDevice) HasComputeShaders() bool { return d.compute }
func (d fakeDevice) NewLegacyBackend() (backend.Backend, error) {
	if d.legacyErr != nil {
		return nil, d.legacyErr
	}
	return software.New(64, 64), nil
}
func (d fakeDevice) NewModernBackend() (backend.Backend, error) {
	if d.modernErr != nil {
		return nil, d.modernErr
	}
	return software.New(64, 64), nil
}

func TestSelectTierPrefersModernCompute(t *testing.T) {
	dev := fakeDevice{modern: true, compute: true, legacy: true}
	be, tier, err := SelectTier(dev, 800, 600)
	if err != nil {
		t.Fatalf("SelectTier: %v", err)
	}
	defer be.Release()
	if tier != backend.TierModernCompute {
		t.Fatalf("tier = %v, want TierModernCompute", tier)
	}
}

func TestSelectTierFallsBackWhenModernBuildFails(t *testing.T) {
	dev := fakeDevice{modern: true, compute: true, legacy: true, modernErr: errors.New("no adapter")}
	be, tier, err := SelectTier(dev, 800, 600)
	if err != nil {
		t.Fatalf("SelectTier: %v", err)
	}
	defer be.Release()
	if tier != backend.TierLegacySIMD && tier != backend.TierLegacyScalar {
		t.Fatalf("tier = %v, want a legacy tier after modern build failure", tier)
	}
}

func TestSelectTierFallsBackToSoftware(t *testing.T) {
	dev := fakeDevice{}
	be, tier, err := SelectTier(dev, 800, 600)
	if err != nil {
		t.Fatalf("SelectTier: %v", err)
	}
	defer be.Release()
	if tier != backend.TierSoftware {
		t.Fatalf("tier = %v, want TierSoftware", tier)
	}
}

func TestSelectTierNilDeviceUsesSoftware(t *testing.T) {
	be, tier, err := SelectTier(nil, 800, 600)
	if err != nil {
		t.Fatalf("SelectTier: %v", err)
	}
	defer be.Release()
	if tier != backend.TierSoftware {
		t.Fatalf("tier = %v, want TierSoftware for a nil device", tier)
	}
}

func TestNullDeviceForcesSoftwareTier(t *testing.T) {
	be, tier, err := SelectTier(NullDevice{}, 400, 300)
	if err != nil {
		t.Fatalf("SelectTier: %v", err)
	}
	defer be.Release()
	if tier != backend.TierSoftware {
		t.Fatalf("tier = %v, want TierSoftware", tier)
	}
}
