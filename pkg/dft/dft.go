// Package dft provides a unitary 1-D discrete Fourier transform operator
// over fixed-length complex vectors. The operator is normalized so that the
// forward transform scales by 1/sqrt(n) and the inverse by the same factor,
// making Inverse the exact adjoint of Forward.
package dft

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Operator performs normalized forward and inverse DFTs of a fixed length.
// It is not safe for concurrent use; create one Operator per worker.
type Operator struct {
	n     int
	fft   *fourier.CmplxFFT
	scale complex128
}

// New creates an Operator for complex vectors of length n.
func New(n int) *Operator {
	if n <= 0 {
		panic(fmt.Sprintf("dft: non-positive length %d", n))
	}
	return &Operator{
		n:     n,
		fft:   fourier.NewCmplxFFT(n),
		scale: complex(1/math.Sqrt(float64(n)), 0),
	}
}

// Len returns the vector length the operator was built for.
func (op *Operator) Len() int { return op.n }

// Forward computes the normalized DFT of src into dst and returns dst.
// dst may alias src; if dst is nil a new slice is allocated.
func (op *Operator) Forward(dst, src []complex128) []complex128 {
	op.check(src)
	dst = op.fft.Coefficients(dst, src)
	for i := range dst {
		dst[i] *= op.scale
	}
	return dst
}

// Inverse computes the normalized inverse DFT of src into dst and returns
// dst. Inverse(Forward(x)) == x up to floating-point roundoff.
func (op *Operator) Inverse(dst, src []complex128) []complex128 {
	op.check(src)
	dst = op.fft.Sequence(dst, src)
	for i := range dst {
		dst[i] *= op.scale
	}
	return dst
}

func (op *Operator) check(src []complex128) {
	if len(src) != op.n {
		panic(fmt.Sprintf("dft: vector length %d does not match operator length %d", len(src), op.n))
	}
}
