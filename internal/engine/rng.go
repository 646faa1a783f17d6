package engine

import (
	"math/rand/v2"
	"unicode/utf16"
)

const (
	lcgMultiplier = 16807
	lcgModulus    = 2147483647
)

// Random is a Park–Miller generator seeded from a string. Two generators
// built from the same seed produce the same stream.
type Random struct {
	seed int64
}

// NewRandom hashes seed into a non-zero 31-bit state.
func NewRandom(seed string) *Random {
	var h int32
	for _, c := range utf16.Encode([]rune(seed)) {
		h = (h << 5) - h + int32(c)
	}
	s := int64(h)
	if s < 0 {
		s = -s
	}
	s %= lcgModulus
	if s == 0 {
		s = 1
	}
	return &Random{seed: s}
}

// Next returns the next value in [0,1).
func (r *Random) Next() float64 {
	r.seed = r.seed * lcgMultiplier % lcgModulus
	return float64(r.seed-1) / float64(lcgModulus-1)
}

// IntN returns a value in [0,n).
func (r *Random) IntN(n int) int {
	return int(r.Next() * float64(n))
}

// Shuffle returns a Fisher–Yates permutation of items driven by r.
// The input slice is left untouched.
func Shuffle[T any](r *Random, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Source supplies the non-reproducible randomness used during play
// (dice, steals, card draws).
type Source interface {
	IntN(n int) int
}

type runtimeSource struct{}

func (runtimeSource) IntN(n int) int { return rand.IntN(n) }
