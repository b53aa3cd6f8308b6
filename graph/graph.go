// SPDX-License-Identifier: Unlicense OR MIT

// Package graph owns the decoded node/edge arrays, the external-id to
// internal-index map, and the compressed adjacency used for neighbor
// queries. It is populated exclusively by package decode and mutated
// only in its position/velocity/highlight fields thereafter, the way
// gio's op.Ops is built once per frame by its encoder and only ever
// read by consumers downstream (gpu/compute.go's collector).
package graph

import "grapheon.dev/internal/vec"

// Node is a single vertex: decoder-owned identity fields plus the
// position/velocity slots the layout engine mutates every tick and
// the highlight flag the host API mutates via HighlightNodes.
type Node struct {
	ID         uint32
	Label      string
	Importance float32
	Degree     uint16
	Community  uint16 // 0 when HasCommunity was absent from the payload
	Pos        vec.Point
	Vel        vec.Point
	Highlighted bool
}

// Edge is an immutable pair of internal indices into Graph.Nodes.
type Edge struct {
	Source, Target int32
}

// Graph is the engine's sole owner of topology and label storage.
// Consumers receive borrowed views; the only fields other subsystems
// mutate are Pos and Vel (the layout engine) and Highlighted (the host
// API).
type Graph struct {
	Nodes []Node
	Edges []Edge

	// index maps an external id to its slot in Nodes.
	index map[uint32]int32

	// labelData is the backing buffer that every Node.Label string
	// slices into; kept alive so decode only allocates it once.
	labelData []byte

	// adjOffsets/adjNeighbors form a CSR-style adjacency built once at
	// load time: node i's neighbors are adjNeighbors[adjOffsets[i]:adjOffsets[i+1]].
	adjOffsets   []int32
	adjNeighbors []int32

	// HasCommunity reports whether the decoded payload carried a
	// HasCommunity section; see ColorBucket.
	HasCommunity bool
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Node returns the node at internal index i.
func (g *Graph) Node(i int) *Node { return &g.Nodes[i] }

// Edge returns the edge at index j.
func (g *Graph) Edge(j int) Edge { return g.Edges[j] }

// IndexOf returns the internal index for an external id, and whether
// it was found.
func (g *Graph) IndexOf(id uint32) (int32, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// Neighbors returns the (non-restartable) sequence of internal
// neighbor indices for node i, in CSR adjacency order.
func (g *Graph) Neighbors(i int) []int32 {
	start, end := g.adjOffsets[i], g.adjOffsets[i+1]
	return g.adjNeighbors[start:end]
}

// Bounds returns the tight axis-aligned bounding box of every node's
// current position. Empty graphs report a degenerate box at the
// origin.
func (g *Graph) Bounds() vec.Rectangle {
	if len(g.Nodes) == 0 {
		return vec.Rectangle{}
	}
	b := vec.Rectangle{Min: g.Nodes[0].Pos, Max: g.Nodes[0].Pos}
	for i := 1; i < len(g.Nodes); i++ {
		p := g.Nodes[i].Pos
		if p.X < b.Min.X {
			b.Min.X = p.X
		}
		if p.Y < b.Min.Y {
			b.Min.Y = p.Y
		}
		if p.X > b.Max.X {
			b.Max.X = p.X
		}
		if p.Y > b.Max.Y {
			b.Max.Y = p.Y
		}
	}
	return b
}

// New builds a Graph's derived adjacency from already-populated
// Nodes/Edges/index. Called once by decode after the node/edge arrays
// are filled in.
func New(nodes []Node, edges []Edge, index map[uint32]int32, labelData []byte) *Graph {
	g := &Graph{
		Nodes:     nodes,
		Edges:     edges,
		index:     index,
		labelData: labelData,
	}
	g.buildAdjacency()
	return g
}

// WithCommunity marks g as carrying decoded community ids, switching
// ColorBucket away from the degree-bucket fallback.
func (g *Graph) WithCommunity() *Graph {
	g.HasCommunity = true
	return g
}

func (g *Graph) buildAdjacency() {
	n := len(g.Nodes)
	degree := make([]int32, n)
	for _, e := range g.Edges {
		degree[e.Source]++
		if e.Target != e.Source {
			degree[e.Target]++
		}
	}
	offsets := make([]int32, n+1)
	for i := 0; i < n; i++ {
		offsets[i+1] = offsets[i] + degree[i]
	}
	neighbors := make([]int32, offsets[n])
	cursor := append([]int32(nil), offsets[:n]...)
	for _, e := range g.Edges {
		neighbors[cursor[e.Source]] = e.Target
		cursor[e.Source]++
		if e.Target != e.Source {
			neighbors[cursor[e.Target]] = e.Source
			cursor[e.Target]++
		}
	}
	g.adjOffsets = offsets
	g.adjNeighbors = neighbors
}

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool { return len(g.Nodes) == 0 }
