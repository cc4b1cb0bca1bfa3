// Package trajectory models the k-space sampling geometries used by MRI
// pulse sequences. A trajectory is the ordered set of k-space coordinates
// (and their acquisition timing) visited while acquiring one echo.
//
// The package provides a closed set of geometry variants (Cartesian 2D/3D,
// radial, spiral, and arbitrary point sets) behind a single capability
// interface so that container code can treat them uniformly while still
// distinguishing Cartesian from non-Cartesian sampling where that matters.
package trajectory

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Trajectory describes the sampling geometry of a single echo.
//
// Node coordinates are normalized frequencies: every coordinate of every
// node lies in the interval [-0.5, 0.5). Nodes are stored as a
// (dims x numNodes) matrix, one column per node, with the sample index
// varying fastest within a profile.
type Trajectory interface {
	// Name identifies the geometry variant ("cartesian", "radial", ...).
	Name() string

	// Nodes returns the node coordinate matrix (dims x numNodes).
	// The returned matrix is owned by the trajectory; callers must not
	// modify it directly and should use SetNodes instead.
	Nodes() *mat.Dense

	// SetNodes replaces the node coordinate matrix.
	SetNodes(nodes *mat.Dense)

	// Times returns the per-node acquisition time in seconds, relative
	// to the excitation. len(Times()) == NumNodes() for freshly
	// constructed trajectories.
	Times() []float64

	// SetTimes replaces the per-node acquisition times.
	SetTimes(times []float64)

	// NumNodes returns the number of k-space nodes.
	NumNodes() int

	// NumSamplesPerProfile returns the number of samples acquired along
	// one readout.
	NumSamplesPerProfile() int

	// NumProfiles returns the number of readouts per slice.
	NumProfiles() int

	// NumSlices returns the slice-encoding count (1 for 2D geometries).
	NumSlices() int

	// EchoTime returns the echo time in seconds.
	EchoTime() float64

	// AcqTimePerProfile returns the duration of one readout in seconds.
	AcqTimePerProfile() float64

	// IsCartesian reports whether the nodes lie on a regular grid.
	IsCartesian() bool

	// Dims returns the spatial dimensionality of the node coordinates.
	Dims() int

	// Clone returns an independent deep copy of the trajectory.
	Clone() Trajectory
}

// base carries the state shared by all geometry variants.
type base struct {
	name              string
	nodes             *mat.Dense // dims x numNodes, one column per node
	times             []float64  // per-node acquisition time
	samplesPerProfile int
	numProfiles       int
	numSlices         int
	echoTime          float64
	acqTimePerProfile float64
}

func (b *base) Name() string              { return b.name }
func (b *base) Nodes() *mat.Dense         { return b.nodes }
func (b *base) SetNodes(nodes *mat.Dense) { b.nodes = nodes }
func (b *base) Times() []float64          { return b.times }
func (b *base) SetTimes(times []float64)  { b.times = times }

func (b *base) NumNodes() int {
	_, n := b.nodes.Dims()
	return n
}

func (b *base) NumSamplesPerProfile() int  { return b.samplesPerProfile }
func (b *base) NumProfiles() int           { return b.numProfiles }
func (b *base) NumSlices() int             { return b.numSlices }
func (b *base) EchoTime() float64          { return b.echoTime }
func (b *base) AcqTimePerProfile() float64 { return b.acqTimePerProfile }

func (b *base) Dims() int {
	d, _ := b.nodes.Dims()
	return d
}

// cloneBase deep-copies the shared state.
func (b *base) cloneBase() base {
	c := *b
	c.nodes = mat.DenseCopyOf(b.nodes)
	c.times = append([]float64(nil), b.times...)
	return c
}

// Cartesian is a trajectory whose nodes lie on a regular rectangular grid.
type Cartesian struct {
	base
}

// IsCartesian always returns true.
func (c *Cartesian) IsCartesian() bool { return true }

// Clone returns an independent deep copy.
func (c *Cartesian) Clone() Trajectory {
	return &Cartesian{base: c.cloneBase()}
}

// NonCartesian is a trajectory whose nodes do not form a regular grid,
// either by construction (radial, spiral) or because an originally regular
// grid was reduced to an arbitrary subset of its nodes.
type NonCartesian struct {
	base
}

// IsCartesian always returns false.
func (n *NonCartesian) IsCartesian() bool { return false }

// Clone returns an independent deep copy.
func (n *NonCartesian) Clone() Trajectory {
	return &NonCartesian{base: n.cloneBase()}
}

// settings holds the optional trajectory parameters.
type settings struct {
	echoTime          float64
	acqTimePerProfile float64
	turns             float64
}

// Option configures optional trajectory parameters at construction time.
type Option func(*settings)

// WithEchoTime sets the echo time in seconds.
func WithEchoTime(te float64) Option {
	return func(s *settings) { s.echoTime = te }
}

// WithAcqTimePerProfile sets the duration of one readout in seconds.
func WithAcqTimePerProfile(aq float64) Option {
	return func(s *settings) { s.acqTimePerProfile = aq }
}

// WithTurns sets the number of revolutions of a spiral readout.
// It has no effect on other geometries.
func WithTurns(turns float64) Option {
	return func(s *settings) { s.turns = turns }
}

func applyOptions(opts []Option) settings {
	s := settings{turns: 4}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func checkCounts(numProfiles, samplesPerProfile, numSlices int) {
	if numProfiles <= 0 || samplesPerProfile <= 0 || numSlices <= 0 {
		panic(fmt.Sprintf("trajectory: counts must be positive, got profiles=%d samples=%d slices=%d",
			numProfiles, samplesPerProfile, numSlices))
	}
}

// profileTimes computes the per-node acquisition times for a trajectory
// whose samples are spaced evenly along each readout.
func profileTimes(numNodes, samplesPerProfile int, s settings) []float64 {
	times := make([]float64, numNodes)
	for i := range times {
		sample := i % samplesPerProfile
		times[i] = s.echoTime + s.acqTimePerProfile*float64(sample)/float64(samplesPerProfile)
	}
	return times
}

// NewCartesian creates a 2D Cartesian trajectory covering the full
// rectangular grid of numProfiles phase-encoding lines with
// samplesPerProfile frequency-encoding samples each.
//
// Parameters:
//   - numProfiles: number of phase-encoding lines
//   - samplesPerProfile: number of samples along each readout
//   - opts: optional echo time and readout duration
//
// Returns:
//   - A fully sampled Cartesian trajectory with nodes in [-0.5, 0.5)
func NewCartesian(numProfiles, samplesPerProfile int, opts ...Option) *Cartesian {
	checkCounts(numProfiles, samplesPerProfile, 1)
	s := applyOptions(opts)

	numNodes := numProfiles * samplesPerProfile
	nodes := mat.NewDense(2, numNodes, nil)
	for p := 0; p < numProfiles; p++ {
		ky := -0.5 + float64(p)/float64(numProfiles)
		for i := 0; i < samplesPerProfile; i++ {
			kx := -0.5 + float64(i)/float64(samplesPerProfile)
			idx := p*samplesPerProfile + i
			nodes.Set(0, idx, kx)
			nodes.Set(1, idx, ky)
		}
	}

	return &Cartesian{base: base{
		name:              "cartesian",
		nodes:             nodes,
		times:             profileTimes(numNodes, samplesPerProfile, s),
		samplesPerProfile: samplesPerProfile,
		numProfiles:       numProfiles,
		numSlices:         1,
		echoTime:          s.echoTime,
		acqTimePerProfile: s.acqTimePerProfile,
	}}
}

// NewCartesian3D creates a slice-encoded 3D Cartesian trajectory. The node
// ordering is sample-fastest, then profile, then slice encode, matching the
// row ordering of acquisition entries.
func NewCartesian3D(numProfiles, samplesPerProfile, numSlices int, opts ...Option) *Cartesian {
	checkCounts(numProfiles, samplesPerProfile, numSlices)
	s := applyOptions(opts)

	numNodes := numProfiles * samplesPerProfile * numSlices
	nodes := mat.NewDense(3, numNodes, nil)
	for sl := 0; sl < numSlices; sl++ {
		kz := -0.5 + float64(sl)/float64(numSlices)
		for p := 0; p < numProfiles; p++ {
			ky := -0.5 + float64(p)/float64(numProfiles)
			for i := 0; i < samplesPerProfile; i++ {
				kx := -0.5 + float64(i)/float64(samplesPerProfile)
				idx := (sl*numProfiles+p)*samplesPerProfile + i
				nodes.Set(0, idx, kx)
				nodes.Set(1, idx, ky)
				nodes.Set(2, idx, kz)
			}
		}
	}

	return &Cartesian{base: base{
		name:              "cartesian3d",
		nodes:             nodes,
		times:             profileTimes(numNodes, samplesPerProfile, s),
		samplesPerProfile: samplesPerProfile,
		numProfiles:       numProfiles,
		numSlices:         numSlices,
		echoTime:          s.echoTime,
		acqTimePerProfile: s.acqTimePerProfile,
	}}
}

// NewRadial creates a 2D radial trajectory: numProfiles spokes through the
// k-space center, equally spaced over half a revolution, each sampled at
// samplesPerProfile points along the diameter.
func NewRadial(numProfiles, samplesPerProfile int, opts ...Option) *NonCartesian {
	checkCounts(numProfiles, samplesPerProfile, 1)
	s := applyOptions(opts)

	numNodes := numProfiles * samplesPerProfile
	nodes := mat.NewDense(2, numNodes, nil)
	for p := 0; p < numProfiles; p++ {
		phi := math.Pi * float64(p) / float64(numProfiles)
		for i := 0; i < samplesPerProfile; i++ {
			r := -0.5 + float64(i)/float64(samplesPerProfile)
			idx := p*samplesPerProfile + i
			nodes.Set(0, idx, r*math.Cos(phi))
			nodes.Set(1, idx, r*math.Sin(phi))
		}
	}

	return &NonCartesian{base: base{
		name:              "radial",
		nodes:             nodes,
		times:             profileTimes(numNodes, samplesPerProfile, s),
		samplesPerProfile: samplesPerProfile,
		numProfiles:       numProfiles,
		numSlices:         1,
		echoTime:          s.echoTime,
		acqTimePerProfile: s.acqTimePerProfile,
	}}
}

// NewSpiral creates a 2D Archimedean spiral trajectory with numProfiles
// interleaves. The number of revolutions per interleave is controlled by
// WithTurns (default 4).
func NewSpiral(numProfiles, samplesPerProfile int, opts ...Option) *NonCartesian {
	checkCounts(numProfiles, samplesPerProfile, 1)
	s := applyOptions(opts)

	numNodes := numProfiles * samplesPerProfile
	nodes := mat.NewDense(2, numNodes, nil)
	for p := 0; p < numProfiles; p++ {
		rot := 2 * math.Pi * float64(p) / float64(numProfiles)
		for i := 0; i < samplesPerProfile; i++ {
			frac := float64(i) / float64(samplesPerProfile)
			r := 0.5 * frac
			theta := rot + 2*math.Pi*s.turns*frac
			idx := p*samplesPerProfile + i
			nodes.Set(0, idx, r*math.Cos(theta))
			nodes.Set(1, idx, r*math.Sin(theta))
		}
	}

	return &NonCartesian{base: base{
		name:              "spiral",
		nodes:             nodes,
		times:             profileTimes(numNodes, samplesPerProfile, s),
		samplesPerProfile: samplesPerProfile,
		numProfiles:       numProfiles,
		numSlices:         1,
		echoTime:          s.echoTime,
		acqTimePerProfile: s.acqTimePerProfile,
	}}
}

// NewArbitrary wraps an explicit node set as a non-Cartesian trajectory.
// It is used when a trajectory is derived from another one, for example by
// retaining only the nodes that were actually acquired. The nodes matrix
// and times slice are taken over by the trajectory; callers must not reuse
// them.
//
// Parameters:
//   - name: variant label carried over from the source geometry
//   - nodes: node coordinates (dims x numNodes)
//   - times: per-node acquisition times, len(times) == numNodes
//   - samplesPerProfile, numProfiles, numSlices: nominal readout layout
//   - opts: optional echo time and readout duration
func NewArbitrary(name string, nodes *mat.Dense, times []float64, samplesPerProfile, numProfiles, numSlices int, opts ...Option) *NonCartesian {
	checkCounts(numProfiles, samplesPerProfile, numSlices)
	s := applyOptions(opts)
	_, n := nodes.Dims()
	if len(times) != n {
		panic(fmt.Sprintf("trajectory: %d times for %d nodes", len(times), n))
	}

	return &NonCartesian{base: base{
		name:              name,
		nodes:             nodes,
		times:             times,
		samplesPerProfile: samplesPerProfile,
		numProfiles:       numProfiles,
		numSlices:         numSlices,
		echoTime:          s.echoTime,
		acqTimePerProfile: s.acqTimePerProfile,
	}}
}
