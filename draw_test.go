package flexle

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// fixedRand is a deterministic RandSource for tests: Float64 cycles through
// a fixed sequence and IntN always returns 0, picking the first member of
// whatever level/slice it indexes into.
type fixedRand struct {
	seq []float64
	i   int
}

func (f *fixedRand) Float64() float64 {
	v := f.seq[f.i%len(f.seq)]
	f.i++
	return v
}

func (f *fixedRand) IntN(n int) int { return 0 }

func TestDrawEmptyDistribution(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	if _, err := s.Draw(); err != ErrEmptyDistribution {
		t.Errorf("Draw() on empty sampler = %v, want ErrEmptyDistribution", err)
	}

	s2, err := New([]float64{0, 0, 0})
	require.NoError(t, err)
	if _, err := s2.Draw(); err != ErrEmptyDistribution {
		t.Errorf("Draw() on all-zero sampler = %v, want ErrEmptyDistribution", err)
	}
}

func TestDrawSingleNonzeroAlwaysReturnsIt(t *testing.T) {
	s, err := New([]float64{0, 0, 5.0, 0})
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		j, err := s.Draw()
		require.NoError(t, err)
		if j != 3 {
			t.Fatalf("Draw() = %d, want 3 (only nonzero element)", j)
		}
	}
}

func TestDrawDeterministicWithFixedSource(t *testing.T) {
	s, err := New([]float64{1.0, 1.0}, WithRandSource(&fixedRand{seq: []float64{0.0}}))
	require.NoError(t, err)
	j, err := s.Draw()
	require.NoError(t, err)
	if j != 1 && j != 2 {
		t.Fatalf("Draw() = %d, want 1 or 2", j)
	}
}

func TestDrawNeverReturnsZeroWeightElement(t *testing.T) {
	s, err := New([]float64{3.0, 0.0, 2.0, 0.0, 1.0})
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		j, err := s.Draw()
		require.NoError(t, err)
		if w, _ := s.Get(j); w == 0 {
			t.Fatalf("Draw() returned zero-weight element %d", j)
		}
	}
}

// Chi-square goodness of fit: 1000 i.i.d. Uniform[0,1) weights shifted up by
// 0.01, 10000 draws,
// observed frequencies should match expected proportions (spec §8 item 9).
func TestDrawChiSquareGoodnessOfFit(t *testing.T) {
	const n = 1000
	const trials = 10000

	rnd := &lcgRand{state: 88172645463325252}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = rnd.Float64() + 0.01 // avoid exact zero weights
	}

	s, err := New(weights, WithRandSource(rnd))
	require.NoError(t, err)

	observed := make([]float64, n)
	for i := 0; i < trials; i++ {
		j, err := s.Draw()
		require.NoError(t, err)
		observed[j-1]++
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	expected := make([]float64, n)
	for i, w := range weights {
		expected[i] = trials * w / total
	}

	chi2 := stat.ChiSquare(observed, expected)
	df := float64(n - 1)
	dist := distuv.ChiSquared{K: df}
	p := 1 - dist.CDF(chi2)
	if p <= 0.01 {
		t.Errorf("chi-square goodness of fit failed: chi2=%v df=%v p=%v", chi2, df, p)
	}
}

// lcgRand is a minimal deterministic RandSource (xorshift64*) used only to
// make the chi-square test reproducible.
type lcgRand struct{ state uint64 }

func (r *lcgRand) next() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 2685821657736338717
}

func (r *lcgRand) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

func (r *lcgRand) IntN(n int) int {
	return int(r.next() % uint64(n))
}
