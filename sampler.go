// sampler.go implements the public Sampler API: construction, weight
// read/write, append, delete-by-index (spec §4.4). Draw lives in draw.go.

package flexle

import (
	"math"
	"math/rand/v2"

	"github.com/flexle/flexle/internal/bitfloat"
	"github.com/flexle/flexle/internal/level"
	"github.com/flexle/flexle/internal/levelset"
)

// Sampler supports weighted random sampling with replacement from a
// dynamic vector of nonnegative float64 weights.
//
// A Sampler is not safe for concurrent use; see the package doc comment.
type Sampler struct {
	weights   []float64
	positions []int
	levels    levelset.Set[float64]
	sum       float64

	rnd            RandSource
	driftThreshold float64
}

// New constructs a Sampler from a vector of nonnegative weights. Zero
// weights are held but never drawn. An empty or all-zero vector produces a
// Sampler with no levels; Draw on it fails with ErrEmptyDistribution, but
// every other operation succeeds.
func New(weights []float64, opts ...Option) (*Sampler, error) {
	for _, w := range weights {
		if err := validWeight(w); err != nil {
			return nil, err
		}
	}

	s := &Sampler{
		weights:        append([]float64(nil), weights...),
		positions:      make([]int, len(weights)),
		rnd:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		driftThreshold: defaultDriftThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rebuildLevels()
	return s, nil
}

// rebuildLevels performs the one-pass construction of spec §4.4: scan for
// the min/max of the positive weights, allocate every level the dynamic
// range needs in descending bounds, then place each nonzero weight.
func (s *Sampler) rebuildLevels() {
	wMin, wMax, anyPositive := 0.0, 0.0, false
	for _, w := range s.weights {
		if w == 0 {
			continue
		}
		if !anyPositive {
			wMin, wMax, anyPositive = w, w, true
			continue
		}
		if w < wMin {
			wMin = w
		}
		if w > wMax {
			wMax = w
		}
	}

	s.sum = 0
	if !anyPositive {
		s.levels = levelset.Set[float64]{}
		return
	}

	upperLog := int(math.Ceil(math.Log2(wMax)))
	if bitfloat.LowerPow2(wMax) == wMax {
		upperLog++
	}
	lowLog := bitfloat.FloorLog2(wMin)
	numLevels := upperLog - lowLog

	levels := make([]*level.Level[float64], numLevels)
	for i := 0; i < numLevels; i++ {
		lo, hi := bitfloat.BoundsForExp(upperLog - 1 - i)
		levels[i] = level.New[float64](lo, hi)
	}
	s.levels = levelset.Set[float64]{Levels: levels, MaxLog2Upper: upperLog}

	for i, w := range s.weights {
		if w == 0 {
			continue
		}
		id := i + 1
		idx := s.levels.LevelIndex(w)
		s.levels.Levels[idx].Add(id, s.weights, s.positions)
		s.sum += w
	}
}

// Len returns the number of elements the sampler owns.
func (s *Sampler) Len() int {
	return len(s.weights)
}

// Weights returns a copy of every element's current weight, in element-
// index order (1-origin element i is Weights()[i-1]).
func (s *Sampler) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// Get returns the current weight of element i, 1-origin.
func (s *Sampler) Get(i int) (float64, error) {
	if i < 1 || i > len(s.weights) {
		return 0, ErrIndexOutOfRange
	}
	return s.weights[i-1], nil
}

// Set assigns a new weight to element i, 1-origin, and returns the signed
// change in weight (new - old). Rejects negative or non-finite weights
// before mutating any state.
func (s *Sampler) Set(i int, w float64) (float64, error) {
	if i < 1 || i > len(s.weights) {
		return 0, ErrIndexOutOfRange
	}
	if err := validWeight(w); err != nil {
		return 0, err
	}

	old := s.weights[i-1]
	delta := w - old
	if delta == 0 {
		return 0, nil
	}

	switch {
	case old == 0 && w == 0:
		// no-op, handled by delta == 0 above

	case old != 0 && w != 0:
		oldLevel, oldIdx := s.levels.GetByWeight(old)
		newLvlIdx := s.levels.LevelIndex(w)
		sameLevel := newLvlIdx == oldIdx && s.inBounds(oldLevel, w)
		if sameLevel {
			// Uniform remove-then-add rather than an in-place max bump:
			// spec §9 flags the in-place fast path as losing track of
			// num_max when the replaced weight equalled the old max and
			// the new weight is strictly lower.
			oldLevel.Remove(i, s.weights, s.positions)
			s.weights[i-1] = w
			oldLevel.Add(i, s.weights, s.positions)
			s.maybeResum(oldLevel, w)
		} else {
			oldLevel.Remove(i, s.weights, s.positions)
			// oldLevel may now be empty and, if EnsureBounds extends the
			// sequence, the new levels get prepended ahead of it: trim
			// using pointer identity against oldLevel, never a captured
			// index, since extension invalidates indices taken before it.
			lo, hi := bitfloat.Bounds(w)
			dst, _ := s.levels.EnsureBounds(lo, hi)
			s.weights[i-1] = w
			dst.Add(i, s.weights, s.positions)
			s.maybeResum(dst, w)
			s.trimIfEdgeLevel(oldLevel)
			s.trimIfEdgeLevel(dst)
		}
		s.sum += delta

	case old == 0 && w != 0:
		lo, hi := bitfloat.Bounds(w)
		dst, _ := s.levels.EnsureBounds(lo, hi)
		s.weights[i-1] = w
		dst.Add(i, s.weights, s.positions)
		s.maybeResum(dst, w)
		s.sum += delta

	case old != 0 && w == 0:
		oldLevel, _ := s.levels.GetByWeight(old)
		oldLevel.Remove(i, s.weights, s.positions)
		s.weights[i-1] = w
		s.trimIfEdgeLevel(oldLevel)
		s.sum += delta
	}

	return delta, nil
}

// inBounds reports whether w lies within an already-resolved level's
// bounds; used to special-case the same-level write.
func (s *Sampler) inBounds(l *level.Level[float64], w float64) bool {
	return l != nil && w >= l.Lo && w < l.Hi
}

// trimIfEdgeLevel runs TrimTrailingLevels when l is the front or back of
// the sequence and has become empty (spec §4.4: "After any removal, if the
// affected level is the front or back and is now empty, run
// trim_trailing_levels"). Identity is checked by pointer rather than a
// captured index, since a prior EnsureBounds call in the same mutation may
// have prepended levels and shifted every existing index.
func (s *Sampler) trimIfEdgeLevel(l *level.Level[float64]) {
	n := len(s.levels.Levels)
	if n == 0 || l == nil || l.IsPopulated() {
		return
	}
	if l == s.levels.Levels[0] || l == s.levels.Levels[n-1] {
		s.levels.TrimTrailingLevels()
	}
}

// maybeResum applies the drift-reset policy of spec §7: if a single write
// of weight w pushed this level's own weight-to-sum ratio past the drift
// threshold, recompute the level's sum by traversal to bound accumulated
// floating point error.
func (s *Sampler) maybeResum(l *level.Level[float64], w float64) {
	if l.Sum == 0 || w/l.Sum <= s.driftThreshold {
		return
	}
	total := 0.0
	for _, id := range l.Members {
		total += s.weights[id-1]
	}
	l.Sum = total
}

// Refresh recomputes the sampler's total sum from the levels' own sums on
// demand, bounding drift accumulated across many Set calls (spec §7).
func (s *Sampler) Refresh() {
	total := 0.0
	for _, l := range s.levels.Levels {
		total += l.Sum
	}
	s.sum = total
}

// Append adds a new element with weight w and returns its 1-origin index
// (the new Len()).
func (s *Sampler) Append(w float64) (int, error) {
	if err := validWeight(w); err != nil {
		return 0, err
	}

	s.weights = append(s.weights, w)
	s.positions = append(s.positions, 0)
	id := len(s.weights)

	if w != 0 {
		lo, hi := bitfloat.Bounds(w)
		dst, _ := s.levels.EnsureBounds(lo, hi)
		dst.Add(id, s.weights, s.positions)
		s.maybeResum(dst, w)
		s.sum += w
	}
	return id, nil
}

// DeleteAt removes element i, 1-origin, shifting every index > i down by
// one, and returns the new Len(). O(n): every level's member list must be
// walked to renumber indices greater than i.
func (s *Sampler) DeleteAt(i int) (int, error) {
	if i < 1 || i > len(s.weights) {
		return 0, ErrIndexOutOfRange
	}

	w := s.weights[i-1]
	if w != 0 {
		l, _ := s.levels.GetByWeight(w)
		l.Remove(i, s.weights, s.positions)
		s.sum -= w
		s.trimIfEdgeLevel(l)
	}

	s.weights = append(s.weights[:i-1], s.weights[i:]...)
	s.positions = append(s.positions[:i-1], s.positions[i:]...)

	// positions was already shifted down in lockstep with weights above,
	// so each surviving element's offset-within-its-level is still correct
	// under its new id; only the level membership lists' stored ids need
	// renumbering.
	for _, l := range s.levels.Levels {
		for m, id := range l.Members {
			if id > i {
				l.Members[m] = id - 1
			}
		}
	}

	return len(s.weights), nil
}
