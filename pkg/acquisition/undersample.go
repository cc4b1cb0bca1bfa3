package acquisition

import (
	"gonum.org/v1/gonum/mat"

	"mrikspace/pkg/trajectory"
)

// ConvertUndersampledData normalizes the undersampling bookkeeping of an
// acquisition: it returns an independent copy in which every echo's
// trajectory contains only the nodes that were actually acquired, and the
// subsample indices are the trivial identity range over those nodes.
//
// One node selection per echo suffices because coils, slices, and
// repetitions share the acquisition geometry. The resulting trajectories
// are explicitly non-Cartesian: an arbitrary subset of a regular grid is
// no longer representable as one. The input container is never modified.
func ConvertUndersampledData(a *AcquisitionData) (*AcquisitionData, error) {
	out := a.Clone()
	for e := 0; e < out.NumEchoes; e++ {
		tr := out.Traj[e]
		sel := out.SubsampleIndices[e]
		nodes := tr.Nodes()
		dims, _ := nodes.Dims()
		times := tr.Times()
		if len(times) != tr.NumNodes() {
			return nil, &ShapeMismatchError{Field: "times", Want: tr.NumNodes(), Got: len(times)}
		}

		subNodes := mat.NewDense(dims, len(sel), nil)
		subTimes := make([]float64, len(sel))
		for i, idx := range sel {
			for d := 0; d < dims; d++ {
				subNodes.Set(d, i, nodes.At(d, idx))
			}
			subTimes[i] = times[idx]
		}

		out.Traj[e] = trajectory.NewArbitrary(tr.Name(), subNodes, subTimes,
			tr.NumSamplesPerProfile(), tr.NumProfiles(), tr.NumSlices(),
			trajectory.WithEchoTime(tr.EchoTime()),
			trajectory.WithAcqTimePerProfile(tr.AcqTimePerProfile()))
		out.SubsampleIndices[e] = identityIndices(len(sel))
	}
	return out, nil
}
