package trajectory

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestNewCartesian verifies the grid layout and normalized bounds of a
// fully sampled 2D Cartesian trajectory
func TestNewCartesian(t *testing.T) {
	tr := NewCartesian(4, 8, WithEchoTime(5e-3), WithAcqTimePerProfile(1e-3))

	if !tr.IsCartesian() {
		t.Error("Expected Cartesian classification")
	}
	if tr.NumNodes() != 32 {
		t.Errorf("Expected 32 nodes, got %d", tr.NumNodes())
	}
	if tr.Dims() != 2 {
		t.Errorf("Expected 2 dimensions, got %d", tr.Dims())
	}
	if tr.NumProfiles() != 4 || tr.NumSamplesPerProfile() != 8 || tr.NumSlices() != 1 {
		t.Errorf("Unexpected layout: profiles=%d samples=%d slices=%d",
			tr.NumProfiles(), tr.NumSamplesPerProfile(), tr.NumSlices())
	}

	// All coordinates must lie in the normalized frequency support
	nodes := tr.Nodes()
	for j := 0; j < tr.NumNodes(); j++ {
		for d := 0; d < 2; d++ {
			v := nodes.At(d, j)
			if v < -0.5 || v >= 0.5 {
				t.Errorf("Node %d coordinate %d = %f outside [-0.5, 0.5)", j, d, v)
			}
		}
	}

	// The sample index varies fastest: the first profile shares one ky
	ky := nodes.At(1, 0)
	for i := 1; i < 8; i++ {
		if nodes.At(1, i) != ky {
			t.Errorf("Expected constant ky along first profile, got %f at sample %d", nodes.At(1, i), i)
		}
	}

	// Per-node times start at the echo time and grow along the readout
	times := tr.Times()
	if len(times) != 32 {
		t.Fatalf("Expected 32 times, got %d", len(times))
	}
	if math.Abs(times[0]-5e-3) > 1e-12 {
		t.Errorf("Expected first time %f, got %f", 5e-3, times[0])
	}
	if times[1] <= times[0] {
		t.Errorf("Expected times to grow along the readout, got %f then %f", times[0], times[1])
	}
}

// TestNewCartesian3D verifies node ordering and slice encoding
func TestNewCartesian3D(t *testing.T) {
	tr := NewCartesian3D(4, 2, 3)

	if tr.NumNodes() != 24 {
		t.Fatalf("Expected 24 nodes, got %d", tr.NumNodes())
	}
	if tr.Dims() != 3 {
		t.Fatalf("Expected 3 dimensions, got %d", tr.Dims())
	}
	if tr.NumSlices() != 3 {
		t.Errorf("Expected 3 slices, got %d", tr.NumSlices())
	}

	// kz is constant within one slice-encode block of profiles*samples nodes
	nodes := tr.Nodes()
	blok := 4 * 2
	for sl := 0; sl < 3; sl++ {
		kz := nodes.At(2, sl*blok)
		for j := sl * blok; j < (sl+1)*blok; j++ {
			if nodes.At(2, j) != kz {
				t.Errorf("Expected constant kz in slice block %d, got %f at node %d", sl, nodes.At(2, j), j)
			}
		}
	}
}

// TestNonCartesianGeometries verifies the radial and spiral variants
func TestNonCartesianGeometries(t *testing.T) {
	radial := NewRadial(8, 16)
	if radial.IsCartesian() {
		t.Error("Radial trajectory must not be Cartesian")
	}
	if radial.Name() != "radial" {
		t.Errorf("Expected name radial, got %q", radial.Name())
	}
	if radial.NumNodes() != 128 {
		t.Errorf("Expected 128 nodes, got %d", radial.NumNodes())
	}

	// Every radial node lies within the half-unit disk
	nodes := radial.Nodes()
	for j := 0; j < radial.NumNodes(); j++ {
		r := math.Hypot(nodes.At(0, j), nodes.At(1, j))
		if r > 0.5+1e-12 {
			t.Errorf("Radial node %d at radius %f outside the support", j, r)
		}
	}

	spiral := NewSpiral(2, 32, WithTurns(6))
	if spiral.IsCartesian() {
		t.Error("Spiral trajectory must not be Cartesian")
	}
	if spiral.NumNodes() != 64 {
		t.Errorf("Expected 64 nodes, got %d", spiral.NumNodes())
	}
	// The spiral starts at the k-space center
	if math.Hypot(spiral.Nodes().At(0, 0), spiral.Nodes().At(1, 0)) > 1e-12 {
		t.Error("Expected spiral to start at the center")
	}
}

// TestClone ensures clones share no mutable state with their source
func TestClone(t *testing.T) {
	tr := NewCartesian(4, 4)
	clone := tr.Clone()

	original := tr.Nodes().At(0, 0)
	clone.Nodes().Set(0, 0, 123)
	if tr.Nodes().At(0, 0) != original {
		t.Error("Mutating the clone's nodes changed the source")
	}

	clone.Times()[0] = 99
	if tr.Times()[0] == 99 {
		t.Error("Mutating the clone's times changed the source")
	}

	if clone.IsCartesian() != tr.IsCartesian() {
		t.Error("Clone changed the geometry classification")
	}
}

// TestNewArbitrary verifies the wrapping of an explicit node set
func TestNewArbitrary(t *testing.T) {
	nodes := mat.NewDense(2, 3, []float64{
		0.1, 0.2, 0.3,
		-0.1, -0.2, -0.3,
	})
	times := []float64{0, 1e-5, 2e-5}
	tr := NewArbitrary("cartesian", nodes, times, 3, 1, 1)

	if tr.IsCartesian() {
		t.Error("Arbitrary node sets are never Cartesian")
	}
	if tr.NumNodes() != 3 {
		t.Errorf("Expected 3 nodes, got %d", tr.NumNodes())
	}
	if tr.Nodes().At(0, 2) != 0.3 {
		t.Errorf("Node coordinates not preserved, got %f", tr.Nodes().At(0, 2))
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on mismatched times length")
		}
	}()
	NewArbitrary("radial", nodes, []float64{0}, 3, 1, 1)
}
