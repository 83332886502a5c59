package engine

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource yields uniform values in [0, 1). The crash decision and the
// wait-time draw both go through it, which keeps round outcomes stubbable
// in tests.
type RandomSource interface {
	Float64() float64
}

// cryptoRNG draws from crypto/rand, falling back to math/rand/v2 if the
// system source fails.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

// DefaultRNG returns the CSPRNG source used in production.
func DefaultRNG() RandomSource { return cryptoRNG{} }

type seededRNG struct {
	r *rand.Rand
}

// NewSeededRNG returns a reproducible source for simulations and tests.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
