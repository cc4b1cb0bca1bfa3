package acquisition

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"mrikspace/internal/parallel"
	"mrikspace/pkg/dft"
	"mrikspace/pkg/trajectory"
)

// Convert3DTo2D converts a slice-encoded 3D Cartesian acquisition into an
// equivalent stack of 2D acquisitions, one per slice position, by applying
// the inverse of the normalized discrete Fourier transform along the
// sample axis of every readout. This turns frequency-encoded slice
// position into real-space slice index.
//
// Every echo's trajectory must be Cartesian; any other geometry is a usage
// error reported before any data is touched. The samples-per-profile and
// slice counts are taken from the first echo's trajectory and assumed
// identical across echoes.
//
// In the result the container's NumSlices field holds the first
// trajectory's samples-per-profile count, the number of derived 2D slices.
// Each derived trajectory swaps the original's slice and profile counts.
// Subsample indices are remapped to slice buckets (original node index
// divided by samples per profile, de-duplicated and sorted), an
// intentional loss of per-node granularity the caller must accept.
//
// The input container is never modified.
func Convert3DTo2D(a *AcquisitionData) (*AcquisitionData, error) {
	for e, tr := range a.Traj {
		if !tr.IsCartesian() {
			return nil, &UnsupportedGeometryError{Op: "Convert3DTo2D", Echo: e, Name: tr.Name()}
		}
	}
	if a.NumSlices != 1 {
		return nil, &ShapeMismatchError{Field: "slices", Want: 1, Got: a.NumSlices}
	}

	sps := a.Traj[0].NumSamplesPerProfile()

	// Derived 2D trajectories along the phase-encoding directions.
	trajs := make([]trajectory.Trajectory, a.NumEchoes)
	for e, tr := range a.Traj {
		trajs[e] = trajectory.NewCartesian(tr.NumSlices(), tr.NumProfiles(),
			trajectory.WithEchoTime(tr.EchoTime()),
			trajectory.WithAcqTimePerProfile(tr.AcqTimePerProfile()))
	}

	// Allocate the derived entry array [echo][derived slice][repetition]
	// up front so the transform workers each own disjoint targets.
	entries := make([][][]*mat.CDense, a.NumEchoes)
	for e := 0; e < a.NumEchoes; e++ {
		rows, _ := a.Entries[e][0][0].Dims()
		if rows%sps != 0 {
			return nil, &ShapeMismatchError{Field: "profile reshape", Want: (rows / sps) * sps, Got: rows}
		}
		profCount := rows / sps
		entries[e] = make([][]*mat.CDense, sps)
		for s := 0; s < sps; s++ {
			entries[e][s] = make([]*mat.CDense, a.NumReps)
			for r := 0; r < a.NumReps; r++ {
				entries[e][s][r] = mat.NewCDense(profCount, a.NumCoils, nil)
			}
		}
	}

	// Every (echo, repetition) pair is independent; each worker carries
	// its own DFT operator since operators are not concurrency safe.
	parallel.ForEach(0, a.NumEchoes*a.NumReps, func(i int) {
		e, r := i/a.NumReps, i%a.NumReps
		op := dft.New(sps)
		src := make([]complex128, sps)
		dst := make([]complex128, sps)
		entry := a.Entries[e][0][r]
		rows, _ := entry.Dims()
		profCount := rows / sps
		for q := 0; q < profCount; q++ {
			for c := 0; c < a.NumCoils; c++ {
				for s := 0; s < sps; s++ {
					src[s] = entry.At(q*sps+s, c)
				}
				dst = op.Inverse(dst, src)
				for s := 0; s < sps; s++ {
					entries[e][s][r].Set(q, c, dst[s])
				}
			}
		}
	})

	// Subsampling degrades to slice-bucket granularity.
	sub := make([][]int, a.NumEchoes)
	for e := 0; e < a.NumEchoes; e++ {
		seen := make(map[int]bool)
		for _, idx := range a.SubsampleIndices[e] {
			seen[idx/sps] = true
		}
		buckets := make([]int, 0, len(seen))
		for b := range seen {
			buckets = append(buckets, b)
		}
		sort.Ints(buckets)
		sub[e] = buckets
	}

	out := &AcquisitionData{
		Traj:             trajs,
		Entries:          entries,
		SubsampleIndices: sub,
		NumEchoes:        a.NumEchoes,
		NumCoils:         a.NumCoils,
		NumSlices:        sps,
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
	return out, nil
}
