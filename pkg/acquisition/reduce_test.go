package acquisition

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"mrikspace/pkg/trajectory"
)

func TestConvert3DTo2D(t *testing.T) {
	// 2 profiles, 4 samples per profile, 2 slice encodes: 16 nodes
	tr := trajectory.NewCartesian3D(2, 4, 2)
	trajs := []trajectory.Trajectory{tr}
	acq, err := New(trajs, ZeroFilled(trajs, 2, 1, 1))
	require.NoError(t, err)

	// Constant k-space along the sample axis concentrates all energy in
	// the first derived slice after the inverse DFT
	entry := acq.Entries[0][0][0]
	for i := 0; i < 16; i++ {
		entry.Set(i, 0, 1)
	}

	stack, err := Convert3DTo2D(acq)
	require.NoError(t, err)

	// The slice axis now counts derived 2D slices: one per sample position
	assert.Equal(t, 4, stack.NumSlices)
	assert.Equal(t, 1, stack.NumEchoes)
	assert.Equal(t, 2, stack.NumCoils)

	// The derived trajectory swaps the original slice and profile counts
	assert.Equal(t, 2, stack.Traj[0].NumProfiles())
	assert.Equal(t, 2, stack.Traj[0].NumSamplesPerProfile())
	assert.True(t, stack.Traj[0].IsCartesian())

	// Each derived entry covers the remaining phase-encoding plane
	rows, cols := stack.Entries[0][0][0].Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 2, cols)

	// Inverse unitary DFT of a constant: sqrt(n) at position 0, zero
	// elsewhere
	want := math.Sqrt(4)
	for q := 0; q < 4; q++ {
		assert.InDelta(t, want, real(stack.Entries[0][0][0].At(q, 0)), 1e-12)
		for s := 1; s < 4; s++ {
			assert.InDelta(t, 0, cmplx.Abs(stack.Entries[0][s][0].At(q, 0)), 1e-12)
		}
	}

	// Fully sampled input covers every slice bucket exactly once
	assert.Equal(t, []int{0, 1, 2, 3}, stack.SubsampleIndices[0])

	// The input container is never modified
	assert.Equal(t, 1, acq.NumSlices)
	assert.Equal(t, complex(1, 0), acq.Entries[0][0][0].At(0, 0))
}

func TestConvert3DTo2DSubsampleBuckets(t *testing.T) {
	tr := trajectory.NewCartesian3D(2, 4, 2)
	entry := mat.NewCDense(8, 1, nil)
	acq, err := New([]trajectory.Trajectory{tr},
		[][][]*mat.CDense{{{entry}}},
		WithSubsampleIndices([][]int{{0, 1, 2, 3, 4, 9, 10, 15}}))
	require.NoError(t, err)

	stack, err := Convert3DTo2D(acq)
	require.NoError(t, err)

	// Nodes 0..3 share bucket 0, node 4 maps to bucket 1, 9 and 10 to
	// bucket 2, 15 to bucket 3: de-duplicated and sorted
	assert.Equal(t, []int{0, 1, 2, 3}, stack.SubsampleIndices[0])
}

func TestConvert3DTo2DRejectsNonCartesian(t *testing.T) {
	trajs := []trajectory.Trajectory{
		trajectory.NewCartesian(4, 4),
		trajectory.NewRadial(4, 4),
	}
	acq, err := New(trajs, ZeroFilled(trajs, 1, 1, 1))
	require.NoError(t, err)

	_, err = Convert3DTo2D(acq)
	var geoErr *UnsupportedGeometryError
	require.ErrorAs(t, err, &geoErr)
	assert.Equal(t, 1, geoErr.Echo)
	assert.Equal(t, "radial", geoErr.Name)
}

func TestConvert3DTo2DRejectsSliceResolved(t *testing.T) {
	tr := trajectory.NewCartesian(4, 4)
	trajs := []trajectory.Trajectory{tr}
	acq, err := New(trajs, ZeroFilled(trajs, 1, 2, 1))
	require.NoError(t, err)

	_, err = Convert3DTo2D(acq)
	var shapeErr *ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "slices", shapeErr.Field)
}
