// Package flexle implements weighted random sampling with replacement from
// a dynamic discrete distribution of nonnegative weights.
//
// Given a vector of nonnegative weights, the i-th entry the unnormalized
// probability of drawing element i, a Sampler supports drawing in time
// proportional to the number of levels (logarithmic in the dynamic range of
// the positive weights and amortized constant in the number of elements),
// O(1) weight updates, amortized O(1) append, and O(n) delete-by-index.
//
// # Levels
//
// Elements are partitioned into levels by the binary exponent of their
// current weight: level k holds every index whose weight lies in
// [2^k, 2^(k+1)). Levels are kept in descending order of magnitude.
// A draw walks levels front-to-back selecting one with probability
// proportional to its summed weight, then accepts or rejects a uniformly
// chosen member of that level with probability weight/level.max. Because
// every member of a level is within a factor of two of the level's maximum,
// acceptance never falls below one half, so the inner loop runs in expected
// O(1) iterations.
//
// # Concurrency
//
// A Sampler is not safe for concurrent use. Callers that mutate (Set,
// Append, DeleteAt) or draw from a Sampler across goroutines must provide
// their own external synchronization.
package flexle
