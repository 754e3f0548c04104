package engine

import (
	"crypto/rand"
	"encoding/binary"
)

// RNG is an inline xorshift64 generator. Its whole state is the integer
// itself, so a GameState carrying it stays a plain copyable value and a seed
// reproduces every shuffle of a game.
type RNG uint64

// NewRNG returns a generator for seed. xorshift cannot start at 0, so a zero
// seed is corrected to 1.
func NewRNG(seed uint64) RNG {
	if seed == 0 {
		seed = 1
	}
	return RNG(seed)
}

// RandomSeed draws a non-zero seed from the operating system.
func RandomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 1
	}
	if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
		return s
	}
	return 1
}

// Next advances the generator.
func (r *RNG) Next() uint64 {
	x := uint64(*r)
	if x == 0 {
		x = 1
	}
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*r = RNG(x)
	return x
}

// Intn returns a number in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		panic("engine: Intn called with non-positive bound")
	}
	return int(r.Next() % uint64(n))
}
