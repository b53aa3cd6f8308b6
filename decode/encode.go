// SPDX-License-Identifier: Unlicense OR MIT

package decode

import (
	"encoding/binary"
	"math"

	"grapheon.dev/graph"
)

// EncodeOptions controls which optional sections Encode emits.
type EncodeOptions struct {
	Version      uint16
	WriteLabels  bool
	WriteCommunity bool
}

// Encode serializes g back into a BLOM payload using the given
// options. It exists so the decoder's round-trip property is
// exercisable in tests without an external tool, and so host tooling
// can author fixture payloads.
func Encode(g *graph.Graph, opts EncodeOptions) []byte {
	bo := binary.LittleEndian
	nodeCount := g.NodeCount()
	edgeCount := g.EdgeCount()

	var flags uint16
	if opts.WriteLabels {
		flags |= flagHasLabels
	}
	if opts.WriteCommunity {
		flags |= flagHasCommunity
	}

	var labelBytes [][]byte
	totalLen := 0
	if opts.WriteLabels {
		labelBytes = make([][]byte, nodeCount)
		for i := 0; i < nodeCount; i++ {
			b := []byte(g.Nodes[i].Label)
			labelBytes[i] = b
			totalLen += len(b)
		}
	}

	size := headerSize
	if opts.WriteLabels {
		size += 4 + nodeCount*4 + totalLen
	}
	if opts.WriteCommunity {
		size += nodeCount * 2
	}
	size += nodeCount * 4 // ids
	size += nodeCount * 4 // pageranks
	size += nodeCount * 2 // degrees
	size += edgeCount * 4 // sources
	size += edgeCount * 4 // targets

	out := make([]byte, size)
	w := out

	bo.PutUint32(w[0:4], Magic)
	bo.PutUint16(w[4:6], opts.Version)
	bo.PutUint32(w[6:10], uint32(nodeCount))
	bo.PutUint32(w[10:14], uint32(edgeCount))
	bo.PutUint16(w[14:16], flags)
	w = w[headerSize:]

	if opts.WriteLabels {
		bo.PutUint32(w[0:4], uint32(totalLen))
		w = w[4:]
		offset := uint32(0)
		for i := 0; i < nodeCount; i++ {
			bo.PutUint32(w[i*4:i*4+4], offset)
			offset += uint32(len(labelBytes[i]))
		}
		w = w[nodeCount*4:]
		for i := 0; i < nodeCount; i++ {
			n := copy(w, labelBytes[i])
			w = w[n:]
		}
	}

	if opts.WriteCommunity {
		for i := 0; i < nodeCount; i++ {
			bo.PutUint16(w[i*2:i*2+2], g.Nodes[i].Community)
		}
		w = w[nodeCount*2:]
	}

	for i := 0; i < nodeCount; i++ {
		bo.PutUint32(w[i*4:i*4+4], g.Nodes[i].ID)
	}
	w = w[nodeCount*4:]

	for i := 0; i < nodeCount; i++ {
		bo.PutUint32(w[i*4:i*4+4], math.Float32bits(g.Nodes[i].Importance))
	}
	w = w[nodeCount*4:]

	for i := 0; i < nodeCount; i++ {
		bo.PutUint16(w[i*2:i*2+2], g.Nodes[i].Degree)
	}
	w = w[nodeCount*2:]

	extIDOf := func(internal int32) uint32 {
		return g.Nodes[internal].ID
	}
	for j := 0; j < edgeCount; j++ {
		e := g.Edge(j)
		bo.PutUint32(w[j*4:j*4+4], extIDOf(e.Source))
	}
	w = w[edgeCount*4:]
	for j := 0; j < edgeCount; j++ {
		e := g.Edge(j)
		bo.PutUint32(w[j*4:j*4+4], extIDOf(e.Target))
	}

	return out
}
