package maze

import (
	"math"
	"math/rand"
	"time"
)

// NewRand returns a seeded source. Seed 0 derives one from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// weightedIndex draws an index with probability proportional to its weight.
// Zero weights are never drawn unless every weight is zero, in which case
// the draw is uniform over the candidates.
func weightedIndex(rng *rand.Rand, weights []float64, candidates []int) int {
	total := 0.0
	for _, c := range candidates {
		total += weights[c]
	}
	if total <= 0 {
		return candidates[rng.Intn(len(candidates))]
	}
	r := rng.Float64() * total
	for _, c := range candidates {
		r -= weights[c]
		if r < 0 {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// axisWeight maps flatness in (-inf, inf) onto (0, 1).
func axisWeight(flatness float64) float64 {
	return math.Atan(flatness)/math.Pi + 0.5
}

// logNormal samples a log-normal value with the given median. A deviation
// equal to the median puts 5% of samples above 3x the median and 5% below a
// third of it.
func logNormal(rng *rand.Rand, median, deviation float64) float64 {
	mu := math.Log(median)
	sigma := math.Log1p(deviation / median)
	return math.Exp(mu + sigma*rng.NormFloat64())
}
