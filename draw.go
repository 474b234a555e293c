// draw.go implements the two-stage sampling algorithm of spec §4.5:
// CDF-over-levels selection followed by acceptance-rejection within the
// chosen level, reusing the CDF draw's fractional residue as the first
// acceptance-rejection uniform.

package flexle

// Draw returns a single sample with replacement, chosen with probability
// weights[i] / sum over every nonzero element. Fails with
// ErrEmptyDistribution if no level is populated (no elements, or every
// weight is zero).
func (s *Sampler) Draw() (int, error) {
	if s.sum <= 0 || len(s.levels.Levels) == 0 {
		return 0, ErrEmptyDistribution
	}

	u := s.rnd.Float64()
	t := u * s.sum

	c := 0.0
	var chosenIdx int
	var chosenSum float64
	found := false
	for idx, l := range s.levels.Levels {
		next := c + l.Sum
		if next > t {
			chosenIdx = idx
			chosenSum = l.Sum
			found = true
			break
		}
		c = next
	}
	if !found {
		// Floating point residue may leave t fractionally beyond the
		// running sum; fall back to the last populated level rather than
		// failing a draw that should succeed.
		for idx := len(s.levels.Levels) - 1; idx >= 0; idx-- {
			if s.levels.Levels[idx].IsPopulated() {
				chosenIdx = idx
				chosenSum = s.levels.Levels[idx].Sum
				c -= chosenSum
				found = true
				break
			}
		}
		if !found {
			return 0, ErrEmptyDistribution
		}
	}

	lvl := s.levels.Levels[chosenIdx]
	if len(lvl.Members) == 0 {
		return 0, ErrEmptyDistribution
	}

	// Free uniform: the CDF residue (t - c) / chosenSum is uniform on
	// [0, 1) conditional on having selected this level.
	r := (t - c) / chosenSum

	for {
		j := lvl.Members[s.rnd.IntN(len(lvl.Members))]
		if s.weights[j-1] > r*lvl.Max {
			return j, nil
		}
		r = s.rnd.Float64()
	}
}
