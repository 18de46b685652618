package recognize

import (
	"math"

	"github.com/coder/hnsw"
)

// hnswMaxNeighbors is the M parameter of the HNSW graph.
const hnswMaxNeighbors = 16

// refIndex is an in-memory HNSW index over the flattened reference
// descriptors. It is only worth building for large rosters; the linear scan
// in flatRefs.bestMatch stays the reference semantics.
type refIndex struct {
	graph *hnsw.Graph[int]
}

// buildRefIndex builds the index. Keys are flat descriptor indexes.
func buildRefIndex(descs [][]float32) *refIndex {
	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	for i, desc := range descs {
		if len(desc) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(i, desc))
	}
	return &refIndex{graph: g}
}

// nearest returns the flat index and Euclidean distance of the closest
// reference descriptor, or (-1, +Inf) when the index is empty.
func (ix *refIndex) nearest(query []float32) (int, float64) {
	neighbors := ix.graph.Search(query, 1)
	if len(neighbors) == 0 {
		return -1, math.Inf(1)
	}
	// Recompute the exact distance from the node's own vector so the
	// tolerance comparison is not subject to the graph's internal metric.
	return neighbors[0].Key, EuclideanDistance(query, neighbors[0].Value)
}
