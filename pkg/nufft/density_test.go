package nufft

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"mrikspace/pkg/trajectory"
)

// uniformNodes returns a fully sampled Cartesian node set
func uniformNodes(n int) *mat.Dense {
	return trajectory.NewCartesian(n, n).Nodes()
}

// TestGriddingWeights verifies the basic contract: one positive weight per
// node, deterministic across calls
func TestGriddingWeights(t *testing.T) {
	est := NewGriddingEstimator()
	nodes := uniformNodes(16)
	shape := []int{16, 16}

	weights, err := est.DensityCompensation(nodes, shape)
	if err != nil {
		t.Fatalf("DensityCompensation failed: %v", err)
	}
	_, n := nodes.Dims()
	if len(weights) != n {
		t.Fatalf("Expected %d weights, got %d", n, len(weights))
	}
	for i, w := range weights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			t.Errorf("Weight %d not a positive finite value: %f", i, w)
		}
	}

	// Identical inputs must reproduce the weights bit for bit
	again, err := est.DensityCompensation(nodes, shape)
	if err != nil {
		t.Fatalf("Second DensityCompensation failed: %v", err)
	}
	for i := range weights {
		if weights[i] != again[i] {
			t.Errorf("Weight %d not deterministic: %v then %v", i, weights[i], again[i])
		}
	}
}

// TestGriddingUniformDensity verifies that a uniform node set receives
// near-uniform weights away from any single outlier
func TestGriddingUniformDensity(t *testing.T) {
	est := NewGriddingEstimator()
	nodes := uniformNodes(16)

	weights, err := est.DensityCompensation(nodes, []int{16, 16})
	if err != nil {
		t.Fatalf("DensityCompensation failed: %v", err)
	}

	// On a uniform grid with periodic wrapping every node sees the same
	// neighborhood, so the spread should be small relative to the mean
	min, max := weights[0], weights[0]
	for _, w := range weights {
		if w < min {
			min = w
		}
		if w > max {
			max = w
		}
	}
	if (max-min)/min > 0.25 {
		t.Errorf("Uniform sampling produced uneven weights: min=%f max=%f", min, max)
	}
}

// TestGriddingDenseClusterDownweighted verifies that clustered nodes get
// smaller weights than isolated ones
func TestGriddingDenseClusterDownweighted(t *testing.T) {
	// Three nearly coincident nodes and one far away
	nodes := mat.NewDense(2, 4, []float64{
		-0.25, -0.251, -0.249, 0.25,
		-0.25, -0.25, -0.25, 0.25,
	})

	est := NewGriddingEstimator()
	weights, err := est.DensityCompensation(nodes, []int{32, 32})
	if err != nil {
		t.Fatalf("DensityCompensation failed: %v", err)
	}
	if weights[0] >= weights[3] {
		t.Errorf("Clustered node weight %f not below isolated node weight %f", weights[0], weights[3])
	}
}

// TestGriddingParameterValidation verifies the fail-fast input checks
func TestGriddingParameterValidation(t *testing.T) {
	est := NewGriddingEstimator()

	if _, err := est.DensityCompensation(uniformNodes(4), []int{4}); err == nil {
		t.Error("Expected error for mismatched dimensionality")
	}
	if _, err := est.DensityCompensation(mat.NewDense(2, 1, []float64{0, 0}), []int{0, 4}); err == nil {
		t.Error("Expected error for non-positive grid shape")
	}

	bad := &GriddingEstimator{OversamplingFactor: 0.5, KernelHalfWidth: 3}
	if _, err := bad.DensityCompensation(uniformNodes(4), []int{4, 4}); err == nil {
		t.Error("Expected error for oversampling factor below 1")
	}
}

// TestNeighborWeights verifies the k-d tree estimator's contract
func TestNeighborWeights(t *testing.T) {
	est := &NeighborEstimator{Neighbors: 4}
	nodes := uniformNodes(8)

	weights, err := est.DensityCompensation(nodes, []int{8, 8})
	if err != nil {
		t.Fatalf("DensityCompensation failed: %v", err)
	}
	_, n := nodes.Dims()
	if len(weights) != n {
		t.Fatalf("Expected %d weights, got %d", n, len(weights))
	}

	sum := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			t.Errorf("Weight %d negative or NaN: %f", i, w)
		}
		sum += w
	}
	if math.Abs(sum/float64(n)-1) > 1e-12 {
		t.Errorf("Expected mean weight 1, got %f", sum/float64(n))
	}
}

// TestNeighborSparseUpweighted verifies that isolated nodes receive larger
// weights than clustered ones
func TestNeighborSparseUpweighted(t *testing.T) {
	nodes := mat.NewDense(2, 5, []float64{
		-0.2, -0.19, -0.21, -0.2, 0.3,
		-0.2, -0.2, -0.2, -0.19, 0.3,
	})

	est := &NeighborEstimator{Neighbors: 2}
	weights, err := est.DensityCompensation(nodes, []int{16, 16})
	if err != nil {
		t.Fatalf("DensityCompensation failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if weights[i] >= weights[4] {
			t.Errorf("Clustered node %d weight %f not below isolated weight %f", i, weights[i], weights[4])
		}
	}
}

// TestNeighborSingleNode covers the degenerate single-node case
func TestNeighborSingleNode(t *testing.T) {
	est := &NeighborEstimator{}
	weights, err := est.DensityCompensation(mat.NewDense(2, 1, []float64{0, 0}), []int{4, 4})
	if err != nil {
		t.Fatalf("DensityCompensation failed: %v", err)
	}
	if len(weights) != 1 || weights[0] != 1 {
		t.Errorf("Expected single unit weight, got %v", weights)
	}
}
