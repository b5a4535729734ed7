package menu

import "math/rand/v2"

// Rand is the source of randomness used for sampling. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the shared math/rand/v2 source.
var DefaultRand Rand = globalRand{}

// Sample returns up to k distinct items from items in random order. The input is not modified.
func Sample[T any](rng Rand, items []T, k int) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}
	pool := make([]T, len(items))
	copy(pool, items)
	// partial Fisher-Yates
	for i := range k {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// Pick returns one uniformly chosen item. ok is false when items is empty.
func Pick[T any](rng Rand, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[rng.IntN(len(items))], true
}
