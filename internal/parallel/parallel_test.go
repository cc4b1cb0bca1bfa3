package parallel

import (
	"sync/atomic"
	"testing"
)

// TestForEachCoversAllIndices verifies every index runs exactly once for a
// range of worker counts
func TestForEachCoversAllIndices(t *testing.T) {
	for _, workers := range []int{0, 1, 2, 7, 100} {
		n := 53
		counts := make([]int32, n)
		ForEach(workers, n, func(i int) {
			atomic.AddInt32(&counts[i], 1)
		})
		for i, c := range counts {
			if c != 1 {
				t.Errorf("workers=%d: index %d ran %d times", workers, i, c)
			}
		}
	}
}

// TestForEachEmpty verifies the degenerate ranges
func TestForEachEmpty(t *testing.T) {
	ran := false
	ForEach(4, 0, func(int) { ran = true })
	ForEach(4, -1, func(int) { ran = true })
	if ran {
		t.Error("ForEach ran a function for an empty range")
	}
}
