// Package acquisition implements the in-memory data model for
// multi-dimensional MRI k-space acquisitions: a container holding raw
// frequency-domain samples together with the sampling trajectories that
// locate each sample in k-space, plus the structural transformations
// (undersampling normalization, resolution change, 3D-to-2D reduction,
// sampling-density estimation) that reconstruction pipelines consume.
//
// The container tracks four jointly indexed dimensions: echo/contrast,
// coil, slice, and repetition. Each echo may carry its own trajectory, its
// own subsampling pattern, and its own node count. All indices in this
// package are 0-based.
//
// Transforms come in two clearly separated forms: pure package functions
// (ConvertUndersampledData, ChangeEncodingSize2D, Convert3DTo2D) deep-copy
// the container before touching anything and leave their input unchanged,
// while the in-place method variants (ChangeEncodingSize2DInPlace) mutate
// the receiver without locking. Callers that share a container across
// goroutines must either serialize access or hand each goroutine its own
// Clone.
package acquisition

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"mrikspace/pkg/trajectory"
)

// AcquisitionData is the central container of one k-space acquisition.
//
// Entries[e][s][r] holds the samples of echo e, slice s, repetition r as a
// (numNodes x NumCoils) complex matrix. Row i of an entry corresponds to
// the acquired node SubsampleIndices[e][i] of trajectory Traj[e]; the
// geometry is shared across coils, slices, and repetitions of an echo.
type AcquisitionData struct {
	// SequenceInfo holds free-form acquisition metadata, opaque to this
	// package.
	SequenceInfo map[string]any

	// Traj holds one trajectory per echo; len(Traj) == NumEchoes.
	Traj []trajectory.Trajectory

	// Entries holds the k-space samples indexed [echo][slice][repetition].
	Entries [][][]*mat.CDense

	// SubsampleIndices lists, per echo and in acquisition order, the
	// 0-based full-trajectory node indices that were actually sampled.
	// Duplicates are forbidden.
	SubsampleIndices [][]int

	NumEchoes int
	NumCoils  int
	NumSlices int
	NumReps   int

	// EncodingSize is the target image matrix size. All zeros means
	// unset, i.e. unknown until a trajectory supplies it.
	EncodingSize [3]int

	// FieldOfView is the physical extent in meters, with the same unset
	// convention as EncodingSize.
	FieldOfView [3]float64
}

// Option configures optional container fields before validation.
type Option func(*AcquisitionData)

// WithSubsampleIndices supplies the per-echo acquired-node indices. When
// omitted, every trajectory node counts as sampled, in trajectory order.
// The slices are taken over by the container.
func WithSubsampleIndices(indices [][]int) Option {
	return func(a *AcquisitionData) { a.SubsampleIndices = indices }
}

// WithEncodingSize sets the target image matrix size.
func WithEncodingSize(x, y, z int) Option {
	return func(a *AcquisitionData) { a.EncodingSize = [3]int{x, y, z} }
}

// WithFieldOfView sets the physical extent in meters.
func WithFieldOfView(x, y, z float64) Option {
	return func(a *AcquisitionData) { a.FieldOfView = [3]float64{x, y, z} }
}

// WithSequenceInfo attaches free-form acquisition metadata.
func WithSequenceInfo(info map[string]any) Option {
	return func(a *AcquisitionData) { a.SequenceInfo = info }
}

// New constructs an AcquisitionData from one trajectory per echo and a
// pre-shaped entry array indexed [echo][slice][repetition]. The supplied
// slices are taken over by the container; callers must not reuse them.
//
// Construction fails fast: every shape invariant is checked here so that
// misindexing cannot surface later, deep inside a reconstruction pipeline.
//
// Parameters:
//   - trajs: one trajectory per echo
//   - entries: k-space samples, each a (numNodes x numCoils) matrix
//   - opts: optional subsample indices, encoding size, field of view,
//     and sequence metadata
//
// Returns:
//   - The validated container, or a *ShapeMismatchError (wrapped) when
//     declared counts and actual array shapes disagree.
func New(trajs []trajectory.Trajectory, entries [][][]*mat.CDense, opts ...Option) (*AcquisitionData, error) {
	a := &AcquisitionData{
		Traj:    trajs,
		Entries: entries,
	}
	for _, opt := range opts {
		opt(a)
	}

	if len(trajs) == 0 {
		return nil, &ShapeMismatchError{Field: "echoes", Want: 1, Got: 0}
	}
	a.NumEchoes = len(trajs)
	if len(entries) != a.NumEchoes {
		return nil, &ShapeMismatchError{Field: "echoes", Want: a.NumEchoes, Got: len(entries)}
	}
	if len(entries[0]) == 0 || len(entries[0][0]) == 0 {
		return nil, &ShapeMismatchError{Field: "entries", Want: 1, Got: 0}
	}
	a.NumSlices = len(entries[0])
	a.NumReps = len(entries[0][0])
	_, a.NumCoils = entries[0][0][0].Dims()

	if a.SubsampleIndices == nil {
		a.SubsampleIndices = make([][]int, a.NumEchoes)
		for e, tr := range trajs {
			a.SubsampleIndices[e] = identityIndices(tr.NumNodes())
		}
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks every shape invariant of the container: the trajectory,
// entry, and subsample-index counts must agree exactly with the declared
// NumEchoes/NumCoils/NumSlices/NumReps, and each entry's node count must
// match its echo's acquired-node count.
func (a *AcquisitionData) Validate() error {
	if len(a.Traj) != a.NumEchoes {
		return &ShapeMismatchError{Field: "trajectories", Want: a.NumEchoes, Got: len(a.Traj)}
	}
	if len(a.Entries) != a.NumEchoes {
		return &ShapeMismatchError{Field: "echoes", Want: a.NumEchoes, Got: len(a.Entries)}
	}
	if len(a.SubsampleIndices) != a.NumEchoes {
		return &ShapeMismatchError{Field: "subsample indices", Want: a.NumEchoes, Got: len(a.SubsampleIndices)}
	}

	for e := 0; e < a.NumEchoes; e++ {
		total := a.Traj[e].NumNodes()
		sel := a.SubsampleIndices[e]
		seen := make(map[int]bool, len(sel))
		for _, idx := range sel {
			if idx < 0 || idx >= total {
				return &IndexOutOfRangeError{Kind: "subsample node", Index: idx, Count: total}
			}
			if seen[idx] {
				return fmt.Errorf("acquisition: duplicate subsample index %d for echo %d", idx, e)
			}
			seen[idx] = true
		}

		if len(a.Entries[e]) != a.NumSlices {
			return &ShapeMismatchError{Field: "slices", Want: a.NumSlices, Got: len(a.Entries[e])}
		}
		for s := 0; s < a.NumSlices; s++ {
			if len(a.Entries[e][s]) != a.NumReps {
				return &ShapeMismatchError{Field: "repetitions", Want: a.NumReps, Got: len(a.Entries[e][s])}
			}
			for r := 0; r < a.NumReps; r++ {
				rows, cols := a.Entries[e][s][r].Dims()
				if rows != len(sel) {
					return &ShapeMismatchError{Field: "nodes", Want: len(sel), Got: rows}
				}
				if cols != a.NumCoils {
					return &ShapeMismatchError{Field: "coils", Want: a.NumCoils, Got: cols}
				}
			}
		}
	}
	return nil
}

// Clone returns a fully independent deep copy: trajectories, entries,
// subsample indices, and metadata share no state with the receiver, so
// later mutation of either container never affects the other.
func (a *AcquisitionData) Clone() *AcquisitionData {
	out := &AcquisitionData{
		Traj:             make([]trajectory.Trajectory, a.NumEchoes),
		Entries:          make([][][]*mat.CDense, a.NumEchoes),
		SubsampleIndices: make([][]int, a.NumEchoes),
		NumEchoes:        a.NumEchoes,
		NumCoils:         a.NumCoils,
		NumSlices:        a.NumSlices,
		NumReps:          a.NumReps,
		EncodingSize:     a.EncodingSize,
		FieldOfView:      a.FieldOfView,
	}
	if a.SequenceInfo != nil {
		out.SequenceInfo = make(map[string]any, len(a.SequenceInfo))
		for k, v := range a.SequenceInfo {
			out.SequenceInfo[k] = v
		}
	}
	for e := 0; e < a.NumEchoes; e++ {
		out.Traj[e] = a.Traj[e].Clone()
		out.SubsampleIndices[e] = append([]int(nil), a.SubsampleIndices[e]...)
		out.Entries[e] = make([][]*mat.CDense, len(a.Entries[e]))
		for s := range a.Entries[e] {
			out.Entries[e][s] = make([]*mat.CDense, len(a.Entries[e][s]))
			for r := range a.Entries[e][s] {
				out.Entries[e][s][r] = copyCDense(a.Entries[e][s][r])
			}
		}
	}
	return out
}

// AcquiredNodes returns the node coordinates actually sampled for the
// given echo: the full trajectory restricted to that echo's subsample
// indices, one column per acquired node. The result is freshly allocated.
func (a *AcquisitionData) AcquiredNodes(echo int) (*mat.Dense, error) {
	if err := checkIndex("echo", echo, a.NumEchoes); err != nil {
		return nil, err
	}
	nodes := a.Traj[echo].Nodes()
	dims, _ := nodes.Dims()
	sel := a.SubsampleIndices[echo]
	out := mat.NewDense(dims, len(sel), nil)
	for i, idx := range sel {
		for d := 0; d < dims; d++ {
			out.Set(d, i, nodes.At(d, idx))
		}
	}
	return out, nil
}

// ZeroFilled builds an entry array of the shape required by New for the
// given trajectories and counts, with every sample zero. Each entry is
// sized to its trajectory's full node count.
func ZeroFilled(trajs []trajectory.Trajectory, numCoils, numSlices, numReps int) [][][]*mat.CDense {
	entries := make([][][]*mat.CDense, len(trajs))
	for e, tr := range trajs {
		n := tr.NumNodes()
		entries[e] = make([][]*mat.CDense, numSlices)
		for s := 0; s < numSlices; s++ {
			entries[e][s] = make([]*mat.CDense, numReps)
			for r := 0; r < numReps; r++ {
				entries[e][s][r] = mat.NewCDense(n, numCoils, nil)
			}
		}
	}
	return entries
}

func identityIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func copyCDense(a *mat.CDense) *mat.CDense {
	rows, cols := a.Dims()
	out := mat.NewCDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	return out
}

func checkIndex(kind string, i, count int) error {
	if i < 0 || i >= count {
		return &IndexOutOfRangeError{Kind: kind, Index: i, Count: count}
	}
	return nil
}
