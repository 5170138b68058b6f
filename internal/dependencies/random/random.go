package random

import (
	"crypto/rand"
	"math/big"
)

// Random provides random numbers that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Uint64n returns a random uint64 in [0, n)
	Uint64n(n uint64) uint64
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.draw(big.NewInt(int64(n))).Int64())
}

// Uint64n returns a cryptographically random uint64 in [0, n)
func (r *CryptoRandom) Uint64n(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return r.draw(new(big.Int).SetUint64(n)).Uint64()
}

func (r *CryptoRandom) draw(max *big.Int) *big.Int {
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand does not fail on supported platforms
		return new(big.Int)
	}
	return result
}
