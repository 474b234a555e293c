// int_sampler.go implements the integer-weight specialization spec §9
// describes: an IntSampler whose weights and running sum are integers, and
// whose CDF-over-levels draw uses a discrete uniform over [1, sum] instead
// of a continuous one. The within-level acceptance-rejection step still
// needs a fresh float64 uniform — the free-uniform trick spec §9 notes does
// not carry over cleanly to the integer case.

package flexle

import (
	"math"
	"math/rand/v2"

	"github.com/flexle/flexle/internal/bitfloat"
	"github.com/flexle/flexle/internal/level"
	"github.com/flexle/flexle/internal/levelset"
)

// IntSampler is the integer-weight specialization of Sampler: weights and
// the running sum are int64, and Draw selects a level via a discrete
// uniform over [1, sum] rather than a continuous one.
type IntSampler struct {
	weights   []int64
	positions []int
	levels    levelset.Set[int64]
	sum       int64

	rnd RandSource
}

// IntOption configures an IntSampler at construction time.
type IntOption func(*IntSampler)

// WithIntRandSource overrides the default random source.
func WithIntRandSource(r RandSource) IntOption {
	return func(s *IntSampler) { s.rnd = r }
}

// NewInt constructs an IntSampler from a vector of nonnegative integer
// weights, following the same level-bucketing scheme as Sampler.
func NewInt(weights []int64, opts ...IntOption) (*IntSampler, error) {
	for _, w := range weights {
		if w < 0 {
			return nil, ErrNegativeWeight
		}
	}

	s := &IntSampler{
		weights:   append([]int64(nil), weights...),
		positions: make([]int, len(weights)),
		rnd:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rebuildLevels()
	return s, nil
}

func (s *IntSampler) rebuildLevels() {
	var wMin, wMax int64
	anyPositive := false
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
		s.levels = levelset.Set[int64]{}
		return
	}

	fMax := float64(wMax)
	upperLog := int(math.Ceil(math.Log2(fMax)))
	if bitfloat.LowerPow2(fMax) == fMax {
		upperLog++
	}
	lowLog := bitfloat.FloorLog2(float64(wMin))
	numLevels := upperLog - lowLog

	levels := make([]*level.Level[int64], numLevels)
	for i := 0; i < numLevels; i++ {
		lo, hi := bitfloat.BoundsForExp(upperLog - 1 - i)
		levels[i] = level.New[int64](lo, hi)
	}
	s.levels = levelset.Set[int64]{Levels: levels, MaxLog2Upper: upperLog}

	for i, w := range s.weights {
		if w == 0 {
			continue
		}
		id := i + 1
		idx := s.levels.LevelIndex(float64(w))
		s.levels.Levels[idx].Add(id, s.weights, s.positions)
		s.sum += w
	}
}

// Len returns the number of elements the sampler owns.
func (s *IntSampler) Len() int { return len(s.weights) }

// Get returns the current weight of element i, 1-origin.
func (s *IntSampler) Get(i int) (int64, error) {
	if i < 1 || i > len(s.weights) {
		return 0, ErrIndexOutOfRange
	}
	return s.weights[i-1], nil
}

// Draw returns a single sample with replacement using a discrete uniform
// over [1, sum] to select a level, then float64 acceptance-rejection
// within it.
func (s *IntSampler) Draw() (int, error) {
	if s.sum <= 0 || len(s.levels.Levels) == 0 {
		return 0, ErrEmptyDistribution
	}

	t := int64(s.rnd.IntN(int(s.sum))) + 1 // discrete uniform over [1, sum]

	var c int64
	chosenIdx := -1
	for idx, l := range s.levels.Levels {
		next := c + l.Sum
		if next >= t {
			chosenIdx = idx
			break
		}
		c = next
	}
	if chosenIdx == -1 {
		return 0, ErrEmptyDistribution
	}

	lvl := s.levels.Levels[chosenIdx]
	if len(lvl.Members) == 0 {
		return 0, ErrEmptyDistribution
	}

	for {
		j := lvl.Members[s.rnd.IntN(len(lvl.Members))]
		r := s.rnd.Float64()
		if float64(s.weights[j-1]) > r*float64(lvl.Max) {
			return j, nil
		}
	}
}
