// SPDX-License-Identifier: Unlicense OR MIT

// Package shaders embeds the three draw passes' WGSL sources at build
// time via go:embed, so shader text ships inside the binary with no
// runtime shader generation - the same practice gio follows by
// shipping precompiled shader sources (gioui.org/shader) rather than
// generating them at runtime.
package shaders

import _ "embed"

//go:embed src/node.wgsl
var Node string

//go:embed src/edge.wgsl
var Edge string

//go:embed src/label.wgsl
var Label string
