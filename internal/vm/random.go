package vm

import (
	"math/rand/v2"
)

// RandomSource supplies uniformly distributed bytes to the rand instruction.
type RandomSource interface {
	RandomByte() uint8
}

// RandomFunc adapts a function to RandomSource.
type RandomFunc func() uint8

func (f RandomFunc) RandomByte() uint8 { return f() }

type globalRandom struct{}

func (globalRandom) RandomByte() uint8 {
	return uint8(rand.IntN(256))
}

// NewSeededRandom returns a deterministic source, for reproducible runs.
func NewSeededRandom(seed uint64) RandomSource {
	r := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	return RandomFunc(func() uint8 {
		return uint8(r.IntN(256))
	})
}
