// SPDX-License-Identifier: Unlicense OR MIT

package forcelayout

import "gioui.org/cpu"

// simdSupported mirrors the check gpu/compute.go makes against
// gioui.org/cpu's Supported flag before taking its CPU fast path
// ("if !cpu.Supported { ... fall back ... }"): a package-level
// boolean, decided once, gating a batched kernel against a scalar
// one. cpu.Supported narrows to the platforms gio's own CPU fallback
// trusts; simdSupportedForArch further narrows to the architectures
// with a tuned sumRepulsion4 (amd64, arm64) rather than the portable
// loop in simd_generic.go.
var simdSupported = cpu.Supported && simdSupportedForArch()
