package acquisition

import "fmt"

// ShapeMismatchError reports disagreement between declared dimension
// counts and the actual shape of the supplied arrays. It is raised at
// construction or at the start of a transform, never after data has been
// touched.
type ShapeMismatchError struct {
	// Field names the dimension that disagrees ("echoes", "coils", ...).
	Field string
	Want  int
	Got   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("acquisition: shape mismatch in %s: want %d, got %d", e.Field, e.Want, e.Got)
}

// IndexOutOfRangeError reports an accessor index outside its valid range.
// Indices are 0-based; Count is the exclusive upper bound.
type IndexOutOfRangeError struct {
	Kind  string
	Index int
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("acquisition: %s index %d out of range [0, %d)", e.Kind, e.Index, e.Count)
}

// UnsupportedGeometryError reports a transform invoked on a trajectory
// geometry it cannot handle, before any data is modified.
type UnsupportedGeometryError struct {
	Op   string
	Echo int
	Name string
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("acquisition: %s requires a Cartesian trajectory, echo %d has geometry %q", e.Op, e.Echo, e.Name)
}

// DegenerateSelectionError reports that a resolution change would crop all
// acquired nodes of some echo, leaving nothing for reconstruction.
type DegenerateSelectionError struct {
	Echo int
}

func (e *DegenerateSelectionError) Error() string {
	return fmt.Sprintf("acquisition: encoding size change leaves echo %d without acquired nodes", e.Echo)
}
