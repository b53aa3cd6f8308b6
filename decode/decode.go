// SPDX-License-Identifier: Unlicense OR MIT

// Package decode turns a BLOM payload (a fixed little-endian
// struct-of-arrays wire format) into a grapheon.dev/graph.Graph in one
// forward pass. It follows gio's own little-endian, field-at-a-time decode
// idiom (internal/ops/reader.go's "bo := binary.LittleEndian;
// bo.Uint32(data[1:])") rather than reflection or a generic codec.
package decode

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
	"unsafe"

	"grapheon.dev/graph"
)

// Magic is the BLOM header's magic number.
const Magic uint32 = 0x424C4F4D

const (
	flagHasLabels   = 1 << 0
	flagHasCommunity = 1 << 1
)

// SupportedVersions lists the wire versions this decoder understands.
var SupportedVersions = map[uint16]bool{1: true}

const headerSize = 16

// Decode validates and parses a BLOM payload. The returned Graph owns
// its own copy of every label byte; data need not outlive the call.
func Decode(data []byte) (*graph.Graph, error) {
	if len(data) < headerSize {
		return nil, errTruncatedHeader(len(data), headerSize)
	}
	bo := binary.LittleEndian

	magic := bo.Uint32(data[0:4])
	if magic != Magic {
		return nil, errBadMagic(magic)
	}
	version := bo.Uint16(data[4:6])
	if !SupportedVersions[version] {
		return nil, errUnsupportedVersion(version)
	}
	nodeCount := int(bo.Uint32(data[6:10]))
	edgeCount := int(bo.Uint32(data[10:14]))
	flags := bo.Uint16(data[14:16])
	hasLabels := flags&flagHasLabels != 0
	hasCommunity := flags&flagHasCommunity != 0

	cur := data[headerSize:]

	var totalLen int
	var labelOffsets []uint32
	var labelData []byte
	if hasLabels {
		if len(cur) < 4 {
			return nil, errTruncatedBody(len(cur), 4)
		}
		totalLen = int(bo.Uint32(cur[0:4]))
		cur = cur[4:]

		offsetsBytes := nodeCount * 4
		if len(cur) < offsetsBytes {
			return nil, errTruncatedBody(len(cur), offsetsBytes)
		}
		labelOffsets = make([]uint32, nodeCount)
		for i := 0; i < nodeCount; i++ {
			labelOffsets[i] = bo.Uint32(cur[i*4 : i*4+4])
		}
		cur = cur[offsetsBytes:]

		if len(cur) < totalLen {
			return nil, errTruncatedBody(len(cur), totalLen)
		}
		// Single allocation for the label backing buffer; every Node.Label
		// slices into it instead of allocating per element.
		labelData = make([]byte, totalLen)
		copy(labelData, cur[:totalLen])
		cur = cur[totalLen:]
	}

	var communities []uint16
	if hasCommunity {
		communityBytes := nodeCount * 2
		if len(cur) < communityBytes {
			return nil, errTruncatedBody(len(cur), communityBytes)
		}
		communities = make([]uint16, nodeCount)
		for i := 0; i < nodeCount; i++ {
			communities[i] = bo.Uint16(cur[i*2 : i*2+2])
		}
		cur = cur[communityBytes:]
	}

	idsBytes := nodeCount * 4
	if len(cur) < idsBytes {
		return nil, errTruncatedBody(len(cur), idsBytes)
	}
	ids := make([]uint32, nodeCount)
	for i := 0; i < nodeCount; i++ {
		ids[i] = bo.Uint32(cur[i*4 : i*4+4])
	}
	cur = cur[idsBytes:]

	pageranksBytes := nodeCount * 4
	if len(cur) < pageranksBytes {
		return nil, errTruncatedBody(len(cur), pageranksBytes)
	}
	pageranks := make([]float32, nodeCount)
	for i := 0; i < nodeCount; i++ {
		v := decodeFloat32(bo.Uint32(cur[i*4 : i*4+4]))
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) || v < 0 {
			return nil, errInvalidImportance(i)
		}
		pageranks[i] = v
	}
	cur = cur[pageranksBytes:]

	degreesBytes := nodeCount * 2
	if len(cur) < degreesBytes {
		return nil, errTruncatedBody(len(cur), degreesBytes)
	}
	degrees := make([]uint16, nodeCount)
	for i := 0; i < nodeCount; i++ {
		degrees[i] = bo.Uint16(cur[i*2 : i*2+2])
	}
	cur = cur[degreesBytes:]

	sourcesBytes := edgeCount * 4
	if len(cur) < sourcesBytes {
		return nil, errTruncatedBody(len(cur), sourcesBytes)
	}
	sources := make([]uint32, edgeCount)
	for i := 0; i < edgeCount; i++ {
		sources[i] = bo.Uint32(cur[i*4 : i*4+4])
	}
	cur = cur[sourcesBytes:]

	targetsBytes := edgeCount * 4
	if len(cur) < targetsBytes {
		return nil, errTruncatedBody(len(cur), targetsBytes)
	}
	targets := make([]uint32, edgeCount)
	for i := 0; i < edgeCount; i++ {
		targets[i] = bo.Uint32(cur[i*4 : i*4+4])
	}
	cur = cur[targetsBytes:]

	if len(cur) != 0 {
		return nil, errTrailingBytes(len(cur))
	}

	// Index resolution: ids must be unique, and form the id -> index map.
	index := make(map[uint32]int32, nodeCount)
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, errDuplicateId(id)
		}
		index[id] = int32(i)
	}

	if hasLabels {
		if err := validateLabelOffsets(labelOffsets, totalLen); err != nil {
			return nil, err
		}
	}

	nodes := make([]graph.Node, nodeCount)
	for i := range nodes {
		n := &nodes[i]
		n.ID = ids[i]
		n.Importance = pageranks[i]
		n.Degree = degrees[i]
		if communities != nil {
			n.Community = communities[i]
		}
		if hasLabels {
			start := labelOffsets[i]
			var end uint32
			if i+1 < nodeCount {
				end = labelOffsets[i+1]
			} else {
				end = uint32(totalLen)
			}
			label := labelData[start:end]
			if !utf8.Valid(label) {
				return nil, errInvalidLabel(i)
			}
			// Alias labelData's storage instead of copying per node; the
			// one allocation already made for labelData is the only one
			// this loop is allowed to cost.
			n.Label = unsafe.String(unsafe.SliceData(label), len(label))
		}
	}

	edges := make([]graph.Edge, edgeCount)
	for j := range edges {
		srcIdx, ok := index[sources[j]]
		if !ok {
			return nil, errDanglingEdge(j)
		}
		dstIdx, ok := index[targets[j]]
		if !ok {
			return nil, errDanglingEdge(j)
		}
		edges[j] = graph.Edge{Source: srcIdx, Target: dstIdx}
	}

	g := graph.New(nodes, edges, index, labelData)
	if hasCommunity {
		g.WithCommunity()
	}
	return g, nil
}

// validateLabelOffsets enforces rule 5 of §4.1: every offset must be
// within [0, totalLen] and non-decreasing across nodes.
func validateLabelOffsets(offsets []uint32, totalLen int) error {
	var prev uint32
	for i, off := range offsets {
		if off > uint32(totalLen) {
			return errInvalidLabel(i)
		}
		if off < prev {
			return errInvalidLabel(i)
		}
		prev = off
	}
	return nil
}

func decodeFloat32(bits uint32) float32 {
	return math.Float32frombits(bits)
}
