// Package level implements the bucket that partitions element indices by
// the binary exponent of their weight (spec §3 "Level", §4.2).
//
// A Level is generic over the weight type so that both the canonical
// float64 Sampler and the integer IntSampler specialization (spec §9,
// "Integer-weight specialization") share this bookkeeping.
//
// Level.Sum is a per-level running total; it is distinct from the owning
// sampler's total sum, so unlike the "update_sampler_sum" flag the
// reference description uses to skip a redundant monolithic-sum write,
// Add and Remove here never touch the owning sampler's total; apart from
// the level itself they write only the caller's positions slice — the
// caller is responsible for folding the weight delta into its own total
// exactly once.
package level

import "github.com/flexle/flexle/util"

// Level holds every element index whose current weight lies in the
// half-open interval [Lo, Hi), Hi == 2*Lo, Lo a power of two.
type Level[T util.Number] struct {
	Lo, Hi float64

	// Members holds element indices (1-origin), order irrelevant: removal
	// uses swap-pop against positions, so nothing may depend on order.
	Members []int

	Sum    T
	Max    T
	NumMax int
}

// New returns an empty level with the given bounds.
func New[T util.Number](lo, hi float64) *Level[T] {
	return &Level[T]{Lo: lo, Hi: hi}
}

// IsPopulated reports whether the level has any members.
func (l *Level[T]) IsPopulated() bool {
	return len(l.Members) > 0
}

// Add appends id to the level, reading its weight from weights[id-1].
// positions must be long enough to hold an entry for id; positions[id-1]
// is set to the new 1-origin offset of id inside Members.
func (l *Level[T]) Add(id int, weights []T, positions []int) {
	w := weights[id-1]
	l.Members = append(l.Members, id)
	l.Sum += w
	switch {
	case w > l.Max:
		l.Max = w
		l.NumMax = 1
	case w == l.Max:
		l.NumMax++
	}
	positions[id-1] = len(l.Members)
}

// Remove locates id via positions[id-1], swap-pops it out of Members, and
// maintains Max/NumMax — rescanning Members from scratch only when the
// last tie for the maximum is lost.
func (l *Level[T]) Remove(id int, weights []T, positions []int) {
	w := weights[id-1]
	offset := positions[id-1] - 1 // 0-origin slot inside Members
	last := len(l.Members) - 1
	moved := l.Members[last]
	l.Members[offset] = moved
	l.Members = l.Members[:last]
	if moved != id {
		positions[moved-1] = offset + 1
	}
	positions[id-1] = 0

	l.Sum -= w
	switch {
	case len(l.Members) == 0:
		l.Max = 0
		l.NumMax = 0
	case w == l.Max:
		l.NumMax--
		if l.NumMax == 0 {
			l.recomputeMax(weights)
		}
	}
}

// recomputeMax rescans Members to re-derive (Max, NumMax) from scratch.
// Triggered only when the last tie for the previous maximum is lost, so
// its O(level-size) cost is amortized across the updates that created the
// tie in the first place.
func (l *Level[T]) recomputeMax(weights []T) {
	var max T
	count := 0
	for _, id := range l.Members {
		w := weights[id-1]
		switch {
		case w > max:
			max = w
			count = 1
		case w == max:
			count++
		}
	}
	l.Max = max
	l.NumMax = count
}
