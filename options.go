// options.go defines the functional options Sampler's constructor accepts:
// a couple of knobs an embedder legitimately wants to override without
// the constructor taking a wide, mostly-default parameter list.

package flexle

// RandSource supplies the randomness Draw needs: a uniform float64 in
// [0, 1) and a uniform integer in [0, n). *rand.Rand from math/rand/v2
// satisfies this directly; callers that need reproducible draws should
// construct their own and pass it via WithRandSource.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

// defaultDriftThreshold is the per-level weight/sum ratio above which a
// single write triggers a resum-by-traversal of that level.
const defaultDriftThreshold = 0.999

// Option configures a Sampler at construction time.
type Option func(*Sampler)

// WithRandSource overrides the default random source. Use this for
// reproducible draws in tests.
func WithRandSource(r RandSource) Option {
	return func(s *Sampler) { s.rnd = r }
}

// WithDriftThreshold overrides the per-level weight/sum ratio above which a
// write triggers a resum-by-traversal of that level, bounding numerical
// drift. The default is 0.999.
func WithDriftThreshold(t float64) Option {
	return func(s *Sampler) { s.driftThreshold = t }
}
