package nufft

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// NeighborEstimator derives density-compensation weights from the distance
// to each node's k-th nearest neighbor: the weight is proportional to that
// distance raised to the node dimensionality, an estimate of the k-space
// cell volume the node is responsible for. Weights are normalized to a
// mean of one.
//
// It is cheaper than GriddingEstimator for small node sets and needs no
// target grid, but gives a coarser estimate. The shape argument of
// DensityCompensation is accepted for interface compatibility and only
// validated, not used.
type NeighborEstimator struct {
	// Neighbors is the neighbor rank used for the distance estimate.
	// Values below 1 select the default of 4.
	Neighbors int
}

// DensityCompensation computes one weight per node (column of nodes).
func (e *NeighborEstimator) DensityCompensation(nodes *mat.Dense, shape []int) ([]float64, error) {
	dims, n := nodes.Dims()
	if dims != len(shape) {
		return nil, fmt.Errorf("nufft: %d-dimensional nodes against %d-dimensional grid", dims, len(shape))
	}
	if n == 0 {
		return nil, fmt.Errorf("nufft: empty node set")
	}
	k := e.Neighbors
	if k < 1 {
		k = 4
	}
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		// Single node: by convention it carries the whole density.
		return []float64{1}, nil
	}

	points := make(kdtree.Points, n)
	for j := 0; j < n; j++ {
		p := make(kdtree.Point, dims)
		for d := 0; d < dims; d++ {
			p[d] = nodes.At(d, j)
		}
		points[j] = p
	}
	tree := kdtree.New(points, false)

	weights := make([]float64, n)
	for j := 0; j < n; j++ {
		// The query point itself is in the tree at distance zero, so
		// keep k+1 results and take the farthest.
		keeper := kdtree.NewNKeeper(k + 1)
		tree.NearestSet(keeper, points[j])
		kth := 0.0
		for _, item := range keeper.Heap {
			if item.Comparable == nil {
				continue
			}
			if item.Dist > kth {
				kth = item.Dist
			}
		}
		// item.Dist is the squared Euclidean distance.
		weights[j] = math.Pow(math.Sqrt(kth), float64(dims))
	}

	mean := floats.Sum(weights) / float64(n)
	if mean > 0 {
		floats.Scale(1/mean, weights)
	}
	return weights, nil
}
