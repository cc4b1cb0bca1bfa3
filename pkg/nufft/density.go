// Package nufft provides sampling-density compensation for arbitrary
// k-space node sets. Density compensation assigns each node a non-negative
// weight correcting for non-uniform sampling density prior to gridding
// reconstruction.
//
// Two estimators are available: GriddingEstimator convolves the node set
// with a Kaiser-Bessel kernel on an oversampled grid and inverts the
// resulting local density, and NeighborEstimator derives weights from
// nearest-neighbor distances using a k-d tree.
package nufft

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"mrikspace/internal/parallel"
)

// GriddingEstimator computes density-compensation weights by spreading
// every node onto an oversampled Cartesian grid with a Kaiser-Bessel
// kernel and evaluating the convolved density back at the node positions.
// The weight of a node is the reciprocal of that density, so isolated
// nodes receive large weights and densely clustered nodes small ones.
//
// The estimator is deterministic: identical node sets and parameters
// produce bit-identical weights.
type GriddingEstimator struct {
	// OversamplingFactor is the ratio between the working grid and the
	// target grid, typically 1.25.
	OversamplingFactor float64

	// KernelHalfWidth is the half-width of the Kaiser-Bessel kernel in
	// grid cells, typically 3.
	KernelHalfWidth int

	// Workers bounds the parallelism of the density evaluation pass.
	// Values below 1 select the number of CPUs.
	Workers int
}

// NewGriddingEstimator returns an estimator with the standard parameters
// (oversampling 1.25, kernel half-width 3).
func NewGriddingEstimator() *GriddingEstimator {
	return &GriddingEstimator{
		OversamplingFactor: 1.25,
		KernelHalfWidth:    3,
	}
}

// DensityCompensation computes one weight per node (column of nodes) for a
// target grid of the given shape. The node dimensionality must match
// len(shape), and all node coordinates must be normalized frequencies in
// [-0.5, 0.5).
func (g *GriddingEstimator) DensityCompensation(nodes *mat.Dense, shape []int) ([]float64, error) {
	dims, n := nodes.Dims()
	if dims != len(shape) {
		return nil, fmt.Errorf("nufft: %d-dimensional nodes against %d-dimensional grid", dims, len(shape))
	}
	if n == 0 {
		return nil, fmt.Errorf("nufft: empty node set")
	}
	for _, s := range shape {
		if s <= 0 {
			return nil, fmt.Errorf("nufft: non-positive grid shape %v", shape)
		}
	}
	osf := g.OversamplingFactor
	if osf < 1 {
		return nil, fmt.Errorf("nufft: oversampling factor %g below 1", osf)
	}
	halfWidth := g.KernelHalfWidth
	if halfWidth < 1 {
		return nil, fmt.Errorf("nufft: kernel half-width %d below 1", halfWidth)
	}

	// Working grid dimensions and linear strides.
	osShape := make([]int, dims)
	strides := make([]int, dims)
	total := 1
	for d := dims - 1; d >= 0; d-- {
		osShape[d] = int(math.Ceil(float64(shape[d]) * osf))
		strides[d] = total
		total *= osShape[d]
	}

	kernel := newKaiserBessel(halfWidth, osf)

	// Pass 1: spread unit weights onto the grid. Sequential, since all
	// nodes write into shared accumulators.
	grid := make([]float64, total)
	pos := make([]float64, dims)
	center := make([]int, dims)
	offsets := make([]int, dims)
	for j := 0; j < n; j++ {
		nodeFootprint(nodes, j, osShape, pos, center)
		for resetOdometer(offsets, halfWidth); ; {
			w := 1.0
			idx := 0
			for d := 0; d < dims; d++ {
				cell := center[d] + offsets[d]
				w *= kernel.eval(pos[d] - float64(cell))
				idx += wrap(cell, osShape[d]) * strides[d]
			}
			grid[idx] += w
			if !stepOdometer(offsets, halfWidth) {
				break
			}
		}
	}

	// Pass 2: evaluate the convolved density at every node. Read-only on
	// the grid, so each node is an independent unit of work.
	weights := make([]float64, n)
	parallel.ForEach(g.Workers, n, func(j int) {
		pos := make([]float64, dims)
		center := make([]int, dims)
		offsets := make([]int, dims)
		nodeFootprint(nodes, j, osShape, pos, center)
		density := 0.0
		for resetOdometer(offsets, halfWidth); ; {
			w := 1.0
			idx := 0
			for d := 0; d < dims; d++ {
				cell := center[d] + offsets[d]
				w *= kernel.eval(pos[d] - float64(cell))
				idx += wrap(cell, osShape[d]) * strides[d]
			}
			density += grid[idx] * w
			if !stepOdometer(offsets, halfWidth) {
				break
			}
		}
		weights[j] = 1 / density
	})

	return weights, nil
}

// nodeFootprint maps node j into working-grid coordinates, filling pos
// with the fractional grid position and center with the nearest cell.
func nodeFootprint(nodes *mat.Dense, j int, osShape []int, pos []float64, center []int) {
	for d := range pos {
		pos[d] = (nodes.At(d, j) + 0.5) * float64(osShape[d])
		center[d] = int(math.Round(pos[d]))
	}
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func resetOdometer(offsets []int, halfWidth int) {
	for d := range offsets {
		offsets[d] = -halfWidth
	}
}

// stepOdometer advances the multi-dimensional offset vector through the
// kernel footprint, returning false once the footprint is exhausted.
func stepOdometer(offsets []int, halfWidth int) bool {
	for d := len(offsets) - 1; d >= 0; d-- {
		offsets[d]++
		if offsets[d] <= halfWidth {
			return true
		}
		offsets[d] = -halfWidth
	}
	return false
}

// kaiserBessel is the standard gridding interpolation kernel.
type kaiserBessel struct {
	halfWidth float64
	beta      float64
	norm      float64
}

// newKaiserBessel selects the kernel shape parameter with the Beatty
// formula for the given width and oversampling factor.
func newKaiserBessel(halfWidth int, osf float64) kaiserBessel {
	w := float64(2 * halfWidth)
	beta := math.Pi * math.Sqrt(w*w/(osf*osf)*(osf-0.5)*(osf-0.5)-0.8)
	return kaiserBessel{
		halfWidth: float64(halfWidth),
		beta:      beta,
		norm:      besselI0(beta),
	}
}

// eval returns the kernel value at distance u grid cells from the center.
func (k kaiserBessel) eval(u float64) float64 {
	t := u / k.halfWidth
	arg := 1 - t*t
	if arg <= 0 {
		return 0
	}
	return besselI0(k.beta*math.Sqrt(arg)) / k.norm
}

// besselI0 is the modified Bessel function of the first kind, order zero,
// computed by its power series.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	half := x / 2
	for k := 1; ; k++ {
		term *= half * half / (float64(k) * float64(k))
		sum += term
		if term < sum*1e-15 {
			return sum
		}
	}
}
