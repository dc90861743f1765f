// Package randutil derives reproducible rand/v2 generators from int64 seeds.
package randutil

import rand "math/rand/v2"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a generator seeded deterministically from seed. Sessions are
// keyed by consecutive seeds, so the two PCG words are derived through a
// finalizing mix rather than taken raw; adjacent seeds still yield unrelated
// draw streams.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// mix is a splitmix64-style finalizer.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
