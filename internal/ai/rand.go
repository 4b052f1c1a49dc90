package ai

import "math/rand"

// aiRng is the package-level random source used when a controller is not
// given an explicit seed. When nil, the helpers delegate to the global
// math/rand default. Use SeedRng to set a deterministic source for
// reproducible matches and tests.
var aiRng *rand.Rand

// SeedRng sets a deterministic package-level random source.
func SeedRng(seed int64) {
	aiRng = rand.New(rand.NewSource(seed))
}

// ResetRng reverts to the default (non-deterministic) global random source.
func ResetRng() {
	aiRng = nil
}

// newRng returns a controller-local random source. A zero seed draws the
// seed from the package-level source so independent controllers do not
// share one stream.
func newRng(seed int64) *rand.Rand {
	if seed == 0 {
		seed = aiInt63()
	}
	return rand.New(rand.NewSource(seed))
}

func aiInt63() int64 {
	if aiRng != nil {
		return aiRng.Int63()
	}
	return rand.Int63()
}

// weightedChoice picks an index with probability proportional to its weight
// using cumulative-weight sampling. Non-positive weights are skipped.
// Returns -1 when no weight is positive.
func weightedChoice(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if r < acc {
			return i
		}
	}
	// Float rounding can leave r just past the last bucket.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}

// jitter perturbs v by a uniform factor in [1-f, 1+f].
func jitter(rng *rand.Rand, v, f float64) float64 {
	if f <= 0 {
		return v
	}
	return v * (1 + (rng.Float64()*2-1)*f)
}
