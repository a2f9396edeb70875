package common

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalRandomMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 20000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		x := float64(NormalRandom(rng, 50, 20))
		sum += x
		sumSq += x * x
	}
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)
	assert.InDelta(t, 50, mean, 1.0)
	assert.InDelta(t, 20, std, 1.0)
}

func TestNormalRandomDeterministic(t *testing.T) {
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		assert.Equal(t, NormalRandom(a, 30, 10), NormalRandom(b, 30, 10))
	}
}
