// SPDX-License-Identifier: Unlicense OR MIT

package render

import "grapheon.dev/render/backend"

// instanceBuffer grows a GPU buffer to the next power of two and
// rebinds: if the instance buffer is smaller than the required count,
// grow to the next power of two and rebind. It is gio's
// gpu/compute.go sizedBuffer.ensureCapacity generalized with explicit
// power-of-two rounding (gio's own sizedBuffer grows to exactly the
// requested size; ours rounds up so a slowly-growing node count
// doesn't reallocate every frame).
type instanceBuffer struct {
	buf      backend.Buffer
	capacity int // in instances
	stride   int // bytes per instance
}

func newInstanceBuffer(stride int) *instanceBuffer {
	return &instanceBuffer{stride: stride}
}

// ensure grows buf (creating it on first use) so it can hold at least
// count instances, releasing the old buffer first - the same
// "release before replace" discipline gio's sizedBuffer.ensureCapacity
// uses for its GPU-vs-CPU buffer fork.
func (b *instanceBuffer) ensure(dev backend.Backend, count int) {
	if count <= b.capacity && b.buf != nil {
		return
	}
	newCap := nextPow2(count)
	if newCap < 1 {
		newCap = 1
	}
	if b.buf != nil {
		b.buf.Release()
	}
	b.buf = dev.NewBuffer(backend.BufferTypeVertices, newCap*b.stride)
	b.capacity = newCap
}

// upload writes data (a flat, tightly packed little-endian instance
// array) into the buffer, growing it first if necessary.
func (b *instanceBuffer) upload(dev backend.Backend, data []byte, instanceCount int) {
	b.ensure(dev, instanceCount)
	b.buf.Upload(data)
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
