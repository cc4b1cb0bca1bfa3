package acquisition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"mrikspace/pkg/nufft"
)

// DensityEstimator produces per-node sampling-density compensation
// weights for a node set against a target grid shape. Implementations
// must be deterministic: identical node sets and parameters yield
// identical weights.
type DensityEstimator interface {
	DensityCompensation(nodes *mat.Dense, shape []int) ([]float64, error)
}

// SamplingDensity computes per-node density-compensation weights for every
// echo of the acquisition against a target grid of the given shape,
// returning one weight vector per echo.
//
// For Cartesian trajectories the node set is restricted to the echo's
// subsample indices; non-Cartesian trajectories already carry exactly the
// acquired nodes. The returned weights are the element-wise square root of
// the estimator's output: downstream reconstruction applies them twice,
// once in the adjoint and once in the forward operator, so this is the
// per-application factor.
//
// A nil estimator selects nufft.NewGriddingEstimator with its standard
// parameters (oversampling 1.25, kernel half-width 3).
func SamplingDensity(a *AcquisitionData, shape []int, est DensityEstimator) ([][]float64, error) {
	if est == nil {
		est = nufft.NewGriddingEstimator()
	}
	out := make([][]float64, a.NumEchoes)
	for e := 0; e < a.NumEchoes; e++ {
		var nodes *mat.Dense
		if a.Traj[e].IsCartesian() {
			sub, err := a.AcquiredNodes(e)
			if err != nil {
				return nil, err
			}
			nodes = sub
		} else {
			nodes = a.Traj[e].Nodes()
		}
		weights, err := est.DensityCompensation(nodes, shape)
		if err != nil {
			return nil, fmt.Errorf("sampling density for echo %d: %w", e, err)
		}
		for i, w := range weights {
			weights[i] = math.Sqrt(w)
		}
		out[e] = weights
	}
	return out, nil
}
