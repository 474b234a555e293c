// Package levelset implements the ordered sequence of levels a sampler
// owns, along with its incremental maintenance: level lookup by weight,
// extension of the sequence to cover a new exponent, and trimming of
// emptied leading/trailing levels.
//
// Levels are kept in descending order of bounds: Levels[0] is the
// highest-magnitude level.
package levelset

import (
	"errors"

	"github.com/flexle/flexle/internal/bitfloat"
	"github.com/flexle/flexle/internal/level"
	"github.com/flexle/flexle/util"
)

// Programmer-error conditions: ExtendLevels called with malformed or
// already-covered bounds. These never arise from validated public input;
// a caller observing them has a bug in its own bookkeeping.
var (
	ErrInvalidBounds  = errors.New("levelset: invalid level bounds, hi must equal 2*lo")
	ErrAlreadyPresent = errors.New("levelset: bounds already present in level range")
)

// NoLevel is the sentinel LevelIndex returns for "no level": a zero weight,
// or an empty level sequence.
const NoLevel = -1

// Set is the descending-order sequence of levels a sampler owns.
type Set[T util.Number] struct {
	Levels []*level.Level[T]

	// MaxLog2Upper is the exponent k such that Levels[0].Hi == 2^k.
	// Valid only when len(Levels) > 0.
	MaxLog2Upper int
}

// LevelIndex returns the 0-based offset into Levels that a positive weight
// w belongs in, or NoLevel if w <= 0 or the set is empty.
func (s *Set[T]) LevelIndex(w float64) int {
	if w <= 0 || len(s.Levels) == 0 {
		return NoLevel
	}
	return s.MaxLog2Upper - bitfloat.FloorLog2(w) - 1
}

// GetByWeight returns the level containing w and its index, or (nil, NoLevel)
// if w has no level.
func (s *Set[T]) GetByWeight(w float64) (*level.Level[T], int) {
	idx := s.LevelIndex(w)
	if idx < 0 || idx >= len(s.Levels) {
		return nil, NoLevel
	}
	return s.Levels[idx], idx
}

// GetByBounds returns the level with the given bounds, or (nil, NoLevel) if
// no such level currently exists in the set.
func (s *Set[T]) GetByBounds(lo, hi float64) (*level.Level[T], int) {
	return s.GetByWeight(lo)
}

// ExtendLevels grows Levels so that the interval (lo, hi) is present,
// prepending or appending the empty levels needed to bridge the current
// range to it. Preconditions: hi == 2*lo, and (lo, hi) is not already
// covered by the existing exponent range.
func (s *Set[T]) ExtendLevels(lo, hi float64) error {
	if hi != 2*lo {
		return ErrInvalidBounds
	}

	if len(s.Levels) == 0 {
		s.Levels = []*level.Level[T]{level.New[T](lo, hi)}
		s.MaxLog2Upper = bitfloat.FloorLog2(hi)
		return nil
	}

	front := s.Levels[0]
	back := s.Levels[len(s.Levels)-1]

	switch {
	case lo > front.Lo:
		k := bitfloat.FloorLog2(lo) - bitfloat.FloorLog2(front.Lo)
		prefix := make([]*level.Level[T], 0, k)
		for i := k; i >= 1; i-- {
			l, h := bitfloat.BoundsForExp(bitfloat.FloorLog2(front.Lo) + i)
			prefix = append(prefix, level.New[T](l, h))
		}
		s.Levels = append(prefix, s.Levels...)
		s.MaxLog2Upper = bitfloat.FloorLog2(s.Levels[0].Hi)
		return nil

	case lo < back.Lo:
		k := bitfloat.FloorLog2(back.Lo) - bitfloat.FloorLog2(lo)
		for i := 1; i <= k; i++ {
			l, h := bitfloat.BoundsForExp(bitfloat.FloorLog2(back.Lo) - i)
			s.Levels = append(s.Levels, level.New[T](l, h))
		}
		return nil

	default:
		return ErrAlreadyPresent
	}
}

// TrimTrailingLevels removes empty leading and trailing levels, keeping
// any empty levels that sit strictly between two populated ones.
func (s *Set[T]) TrimTrailingLevels() {
	first := -1
	last := -1
	for i, l := range s.Levels {
		if l.IsPopulated() {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		s.Levels = nil
		s.MaxLog2Upper = 0
		return
	}
	s.Levels = s.Levels[first : last+1]
	s.MaxLog2Upper = bitfloat.FloorLog2(s.Levels[0].Hi)
}

// EnsureBounds extends the set, if needed, so that a level with the given
// bounds exists, then returns it. It is a no-op if the level is already
// present.
func (s *Set[T]) EnsureBounds(lo, hi float64) (*level.Level[T], int) {
	if l, idx := s.GetByBounds(lo, hi); l != nil {
		return l, idx
	}
	if err := s.ExtendLevels(lo, hi); err != nil {
		// GetByBounds already established this interval is absent, so
		// either outcome here means a broken invariant, not a caller
		// mistake: surface it loudly rather than limping on.
		panic(err)
	}
	return s.GetByBounds(lo, hi)
}
