// SPDX-License-Identifier: Unlicense OR MIT

package graph

// ColorBucket returns a small integer bucket for a node's color,
// used by the renderer's node pass when no highlight is active.
// When the payload carried a HasCommunity section, the community id
// is used directly; otherwise nodes are bucketed by degree.
func (g *Graph) ColorBucket(i int) uint16 {
	n := &g.Nodes[i]
	if g.HasCommunity {
		return n.Community
	}
	return degreeBucket(n.Degree)
}

// degreeBucket maps a degree to one of a handful of buckets using
// log2 binning, so high-degree hubs don't each need their own color.
func degreeBucket(degree uint16) uint16 {
	var bucket uint16
	for d := degree; d > 0; d >>= 1 {
		bucket++
	}
	return bucket
}
