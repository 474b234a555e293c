// errors.go defines public error types for the flexle package.

package flexle

import (
	"errors"
	"math"
)

// Public error types for sampler construction and mutation.
var (
	// ErrIndexOutOfRange indicates an index outside [1, Len()] was passed
	// to Get, Set, or DeleteAt.
	ErrIndexOutOfRange = errors.New("flexle: index out of range")

	// ErrEmptyDistribution indicates Draw was called on a sampler with no
	// populated levels (either no elements, or every weight is zero).
	ErrEmptyDistribution = errors.New("flexle: empty distribution")

	// ErrNegativeWeight indicates a weight less than zero was passed to a
	// constructor, Set, or Append.
	ErrNegativeWeight = errors.New("flexle: negative weight")

	// ErrNonFiniteWeight indicates a NaN or infinite weight was passed to a
	// constructor, Set, or Append.
	ErrNonFiniteWeight = errors.New("flexle: non-finite weight")
)

// validWeight returns an error if w is not a legal weight: finite and
// non-negative. Rejecting before any state mutation keeps set/append/
// construction all-or-nothing (spec §7).
func validWeight(w float64) error {
	switch {
	case math.IsNaN(w) || math.IsInf(w, 0):
		return ErrNonFiniteWeight
	case w < 0:
		return ErrNegativeWeight
	default:
		return nil
	}
}
