package acquisition

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"mrikspace/internal/parallel"
)

// ChangeEncodingSize2D returns an independent copy of a cropped in k-space
// to the given target image matrix size. The input is never modified; see
// ChangeEncodingSize2DInPlace for the semantics of the crop itself.
func ChangeEncodingSize2D(a *AcquisitionData, newSize [2]int) (*AcquisitionData, error) {
	out := a.Clone()
	if err := out.ChangeEncodingSize2DInPlace(newSize); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeEncodingSize2DInPlace crops the acquisition's k-space to match a
// different target image matrix size, mutating the receiver. Cropping in
// k-space is equivalent to resampling in image space.
//
// Per echo, every trajectory node coordinate is rescaled by the ratio of
// the current to the requested encoding size (first two axes only; the
// transform is 2D). Only nodes whose rescaled x and y coordinates both lie
// in [-0.5, 0.5), the normalized-frequency support of the new grid, are
// retained; nodes outside are discarded, not clamped. The trajectory's
// node list and per-node timing, the subsample indices, and the k-space
// rows of every (slice, repetition) entry are reduced to the retained
// subset in their original relative order, and all retained samples are
// rescaled by the reciprocal of the product of the two scale factors to
// compensate for the change in k-space sample density.
//
// The bound is enforced even when the requested size equals the current
// one, so nodes on the +0.5 boundary are dropped either way. An echo whose
// acquired nodes are all cropped away yields a *DegenerateSelectionError,
// reported before the receiver is modified.
func (a *AcquisitionData) ChangeEncodingSize2DInPlace(newSize [2]int) error {
	if newSize[0] <= 0 || newSize[1] <= 0 {
		return fmt.Errorf("acquisition: non-positive encoding size %v", newSize)
	}
	if a.EncodingSize[0] <= 0 || a.EncodingSize[1] <= 0 {
		return fmt.Errorf("acquisition: encoding size unset, cannot rescale")
	}
	fx := float64(a.EncodingSize[0]) / float64(newSize[0])
	fy := float64(a.EncodingSize[1]) / float64(newSize[1])

	// First pass: compute every echo's retained node set without touching
	// the receiver, so a degenerate selection leaves it intact.
	type selection struct {
		retained []int // full-trajectory node indices passing both bounds
		keptRows []int // entry row positions whose node was retained
		newSub   []int // subsample indices within the retained node list
	}
	selections := make([]selection, a.NumEchoes)
	for e := 0; e < a.NumEchoes; e++ {
		tr := a.Traj[e]
		if tr.Dims() < 2 {
			return &ShapeMismatchError{Field: "node dimensions", Want: 2, Got: tr.Dims()}
		}
		nodes := tr.Nodes()
		n := tr.NumNodes()
		if len(tr.Times()) != n {
			return &ShapeMismatchError{Field: "times", Want: n, Got: len(tr.Times())}
		}

		var sel selection
		newPos := make(map[int]int, n)
		for j := 0; j < n; j++ {
			x := nodes.At(0, j) * fx
			y := nodes.At(1, j) * fy
			if x >= -0.5 && x < 0.5 && y >= -0.5 && y < 0.5 {
				newPos[j] = len(sel.retained)
				sel.retained = append(sel.retained, j)
			}
		}
		if len(sel.retained) == 0 {
			return &DegenerateSelectionError{Echo: e}
		}
		for row, idx := range a.SubsampleIndices[e] {
			if pos, ok := newPos[idx]; ok {
				sel.keptRows = append(sel.keptRows, row)
				sel.newSub = append(sel.newSub, pos)
			}
		}
		if len(sel.keptRows) == 0 {
			return &DegenerateSelectionError{Echo: e}
		}
		selections[e] = sel
	}

	// Second pass: apply the crop.
	amplitude := complex(1/(fx*fy), 0)
	for e := 0; e < a.NumEchoes; e++ {
		tr := a.Traj[e]
		nodes := tr.Nodes()
		dims, _ := nodes.Dims()
		times := tr.Times()
		sel := selections[e]

		newNodes := mat.NewDense(dims, len(sel.retained), nil)
		newTimes := make([]float64, len(sel.retained))
		for i, j := range sel.retained {
			newNodes.Set(0, i, nodes.At(0, j)*fx)
			newNodes.Set(1, i, nodes.At(1, j)*fy)
			for d := 2; d < dims; d++ {
				newNodes.Set(d, i, nodes.At(d, j))
			}
			newTimes[i] = times[j]
		}
		tr.SetNodes(newNodes)
		tr.SetTimes(newTimes)
		a.SubsampleIndices[e] = sel.newSub

		// Each (slice, repetition) entry is an independent unit of work.
		entries := a.Entries[e]
		parallel.ForEach(0, a.NumSlices*a.NumReps, func(i int) {
			s, r := i/a.NumReps, i%a.NumReps
			old := entries[s][r]
			_, cols := old.Dims()
			cropped := mat.NewCDense(len(sel.keptRows), cols, nil)
			for row, oldRow := range sel.keptRows {
				for c := 0; c < cols; c++ {
					cropped.Set(row, c, old.At(oldRow, c)*amplitude)
				}
			}
			entries[s][r] = cropped
		})
	}

	a.EncodingSize[0] = newSize[0]
	a.EncodingSize[1] = newSize[1]
	return nil
}
