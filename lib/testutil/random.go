// Package testutil holds small pseudo-random helpers for
// churn-style tests that want reproducible randomness.
package testutil

import "math/rand"

// RandomSwitch builds a weighted picker: the returned function yields
// index i with probability weights[i] / sum(weights). Weights must be
// positive.
func RandomSwitch(weights ...int) func(rndm *rand.Rand) int {
	if len(weights) == 0 {
		panic("need at least one weight")
	}
	total := 0
	for _, w := range weights {
		if w <= 0 {
			panic("weights must be positive")
		}
		total += w
	}

	return func(rndm *rand.Rand) int {
		roll := rndm.Intn(total)
		for i, w := range weights {
			if roll < w {
				return i
			}
			roll -= w
		}
		// unreachable, Intn(total) is always under the last threshold
		return len(weights) - 1
	}
}

// RandomString yields a lowercase ascii string of the given length.
func RandomString(rndm *rand.Rand, length int) string {
	out := make([]byte, length)
	for i := range out {
		out[i] = byte('a' + rndm.Intn(26))
	}
	return string(out)
}
