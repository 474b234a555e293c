// verify.go implements the invariant verifier spec §6 describes as an
// external test collaborator: given a sampler, assert that every nonzero
// index appears in exactly one level at its recorded position, that level
// bounds/sums/maxes are internally consistent, and that the sampler's
// total sum agrees with the levels' sums within tolerance.
//
// It is exported (not hidden behind internal/) because tests in other
// packages — and a caller's own property tests — are exactly who spec §6
// says should run it.

package flexle

import (
	"fmt"
	"math"

	"github.com/flexle/flexle/util"
)

// tolerance bounds the floating point drift the running sums are allowed
// to accumulate, per spec §8 invariant 5.
const tolerance = 1e-9

// Verify checks every invariant spec §3 and §8 place on a Sampler and
// returns a description of the first one it finds violated, or nil if the
// sampler is internally consistent.
func (s *Sampler) Verify() error {
	if len(s.positions) != len(s.weights) {
		return fmt.Errorf("flexle: positions length %d != weights length %d", len(s.positions), len(s.weights))
	}

	seen := make(map[int]bool, len(s.weights))

	for levelIdx, l := range s.levels.Levels {
		if l.Hi != 2*l.Lo {
			return fmt.Errorf("flexle: level %d bounds (%v, %v) violate hi=2*lo", levelIdx, l.Lo, l.Hi)
		}
		if levelIdx > 0 {
			prev := s.levels.Levels[levelIdx-1]
			if prev.Lo != 2*l.Lo {
				return fmt.Errorf("flexle: levels %d, %d not exponent-contiguous: lo=%v, lo=%v", levelIdx-1, levelIdx, prev.Lo, l.Lo)
			}
		}

		var wantSum, wantMax float64
		wantNumMax := 0
		for _, id := range l.Members {
			if id < 1 || id > len(s.weights) {
				return fmt.Errorf("flexle: level %d member %d out of range", levelIdx, id)
			}
			if seen[id] {
				return fmt.Errorf("flexle: element %d appears in more than one level", id)
			}
			seen[id] = true

			w := s.weights[id-1]
			if w < l.Lo || w >= l.Hi {
				return fmt.Errorf("flexle: element %d weight %v outside level bounds [%v, %v)", id, w, l.Lo, l.Hi)
			}

			offset := s.positions[id-1] - 1
			if offset < 0 || offset >= len(l.Members) || l.Members[offset] != id {
				return fmt.Errorf("flexle: element %d position %d does not resolve to itself in level %d", id, s.positions[id-1], levelIdx)
			}

			wantSum += w
			switch {
			case w > wantMax:
				wantMax = w
				wantNumMax = 1
			case w == wantMax:
				wantNumMax++
			}
		}

		if util.Abs(l.Sum-wantSum) >= tolerance*util.Max(1, util.Abs(wantSum)) {
			return fmt.Errorf("flexle: level %d sum %v, want %v", levelIdx, l.Sum, wantSum)
		}
		if l.Max != wantMax {
			return fmt.Errorf("flexle: level %d max %v, want %v", levelIdx, l.Max, wantMax)
		}
		if l.NumMax != wantNumMax {
			return fmt.Errorf("flexle: level %d num_max %d, want %d", levelIdx, l.NumMax, wantNumMax)
		}
	}

	for id, w := range s.weights {
		elemID := id + 1
		if w == 0 {
			if seen[elemID] {
				return fmt.Errorf("flexle: zero-weight element %d found in a level", elemID)
			}
			if s.positions[id] != 0 {
				return fmt.Errorf("flexle: zero-weight element %d has non-sentinel position %d", elemID, s.positions[id])
			}
		} else if !seen[elemID] {
			return fmt.Errorf("flexle: nonzero-weight element %d is in no level", elemID)
		}
	}

	wantTotal := 0.0
	for _, w := range s.weights {
		wantTotal += w
	}
	if util.Abs(s.sum-wantTotal) >= tolerance*util.Max(1, util.Abs(wantTotal)) {
		return fmt.Errorf("flexle: sampler sum %v, want %v", s.sum, wantTotal)
	}

	if len(s.levels.Levels) > 0 {
		wantUpper := int(math.Round(math.Log2(s.levels.Levels[0].Hi)))
		if s.levels.MaxLog2Upper != wantUpper {
			return fmt.Errorf("flexle: MaxLog2Upper %d, want %d", s.levels.MaxLog2Upper, wantUpper)
		}
		if !s.levels.Levels[0].IsPopulated() && !s.levels.Levels[len(s.levels.Levels)-1].IsPopulated() && len(s.levels.Levels) > 1 {
			return fmt.Errorf("flexle: leading and trailing levels both empty, should have been trimmed")
		}
	}

	return nil
}
