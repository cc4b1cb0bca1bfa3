package acquisition

import (
	"gonum.org/v1/gonum/mat"
)

// KData returns the sample vector of one coil for the given echo, slice,
// and repetition. The vector length equals the echo's acquired node count.
func (a *AcquisitionData) KData(echo, coil, slice, rep int) ([]complex128, error) {
	if err := a.checkEntryIndex(echo, slice, rep); err != nil {
		return nil, err
	}
	if err := checkIndex("coil", coil, a.NumCoils); err != nil {
		return nil, err
	}
	entry := a.Entries[echo][slice][rep]
	rows, _ := entry.Dims()
	out := make([]complex128, rows)
	for i := 0; i < rows; i++ {
		out[i] = entry.At(i, coil)
	}
	return out, nil
}

// MultiEchoData concatenates, in echo order, the single-coil sample
// vectors of all echoes for one coil, slice, and repetition.
func (a *AcquisitionData) MultiEchoData(coil, slice, rep int) ([]complex128, error) {
	if err := checkIndex("coil", coil, a.NumCoils); err != nil {
		return nil, err
	}
	if err := checkIndex("slice", slice, a.NumSlices); err != nil {
		return nil, err
	}
	if err := checkIndex("repetition", rep, a.NumReps); err != nil {
		return nil, err
	}
	var out []complex128
	for e := 0; e < a.NumEchoes; e++ {
		v, err := a.KData(e, coil, slice, rep)
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return out, nil
}

// MultiCoilData returns the full entry of one echo, slice, and repetition
// flattened column-major: all nodes of coil 0, then all nodes of coil 1,
// and so on.
func (a *AcquisitionData) MultiCoilData(echo, slice, rep int) ([]complex128, error) {
	if err := a.checkEntryIndex(echo, slice, rep); err != nil {
		return nil, err
	}
	entry := a.Entries[echo][slice][rep]
	rows, cols := entry.Dims()
	out := make([]complex128, rows*cols)
	for c := 0; c < cols; c++ {
		for i := 0; i < rows; i++ {
			out[c*rows+i] = entry.At(i, c)
		}
	}
	return out, nil
}

// MultiCoilMultiEchoData concatenates single-coil, single-echo vectors
// across the whole acquisition in coil-major, echo-minor order: for each
// coil, the vectors of all echoes in echo order.
func (a *AcquisitionData) MultiCoilMultiEchoData(slice, rep int) ([]complex128, error) {
	if err := checkIndex("slice", slice, a.NumSlices); err != nil {
		return nil, err
	}
	if err := checkIndex("repetition", rep, a.NumReps); err != nil {
		return nil, err
	}
	var out []complex128
	for c := 0; c < a.NumCoils; c++ {
		for e := 0; e < a.NumEchoes; e++ {
			v, err := a.KData(e, c, slice, rep)
			if err != nil {
				return nil, err
			}
			out = append(out, v...)
		}
	}
	return out, nil
}

// ProfileData returns the (samplesPerProfile x numCoils) block of one
// readout of the given echo's trajectory.
//
// For 2D trajectories the profile count is derived from the entry's node
// count divided by the samples per profile, and slice indexes the
// container's slice dimension. For slice-encoded 3D trajectories (where
// the container's slice dimension is 1) slice instead selects the
// trajectory's slice-encoding position.
func (a *AcquisitionData) ProfileData(echo, slice, rep, profile int) (*mat.CDense, error) {
	if err := checkIndex("echo", echo, a.NumEchoes); err != nil {
		return nil, err
	}
	if err := checkIndex("repetition", rep, a.NumReps); err != nil {
		return nil, err
	}
	tr := a.Traj[echo]
	sps := tr.NumSamplesPerProfile()

	if tr.NumSlices() > 1 {
		if err := checkIndex("trajectory slice", slice, tr.NumSlices()); err != nil {
			return nil, err
		}
		entry := a.Entries[echo][0][rep]
		rows, cols := entry.Dims()
		numProfiles := tr.NumProfiles()
		if rows != sps*numProfiles*tr.NumSlices() {
			return nil, &ShapeMismatchError{Field: "profile reshape", Want: sps * numProfiles * tr.NumSlices(), Got: rows}
		}
		if err := checkIndex("profile", profile, numProfiles); err != nil {
			return nil, err
		}
		return profileBlock(entry, (slice*numProfiles+profile)*sps, sps, cols), nil
	}

	if err := checkIndex("slice", slice, a.NumSlices); err != nil {
		return nil, err
	}
	entry := a.Entries[echo][slice][rep]
	rows, cols := entry.Dims()
	if rows%sps != 0 {
		return nil, &ShapeMismatchError{Field: "profile reshape", Want: (rows / sps) * sps, Got: rows}
	}
	numProfiles := rows / sps
	if err := checkIndex("profile", profile, numProfiles); err != nil {
		return nil, err
	}
	return profileBlock(entry, profile*sps, sps, cols), nil
}

// profileBlock copies sps consecutive rows starting at row start.
func profileBlock(entry *mat.CDense, start, sps, cols int) *mat.CDense {
	out := mat.NewCDense(sps, cols, nil)
	for i := 0; i < sps; i++ {
		for c := 0; c < cols; c++ {
			out.Set(i, c, entry.At(start+i, c))
		}
	}
	return out
}

func (a *AcquisitionData) checkEntryIndex(echo, slice, rep int) error {
	if err := checkIndex("echo", echo, a.NumEchoes); err != nil {
		return err
	}
	if err := checkIndex("slice", slice, a.NumSlices); err != nil {
		return err
	}
	return checkIndex("repetition", rep, a.NumReps)
}
