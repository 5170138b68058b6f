// Package deal splits the catalog into two reproducible hands.
package deal

import (
	"math/bits"

	"github.com/mcoot/committy/internal/model"
)

// Draw partially shuffles ids with a generator seeded by seed and returns the
// first handSize ids as hand 1 and the next handSize as hand 2.
//
// ids is not modified. The result depends on the order of ids, so callers
// must pass the catalog's own order and must not re-sort it.
func Draw(handSize int, seed model.RawSeed, ids []model.CardID) ([]model.CardID, []model.CardID, error) {
	if handSize < 1 {
		return nil, nil, model.ErrInvalidHandSize
	}
	if !model.HandsFit(len(ids), handSize) {
		return nil, nil, &model.InsufficientCatalogError{Available: len(ids), Required: model.CardsForHands(handSize)}
	}
	need := 2 * handSize

	shuffled := make([]model.CardID, len(ids))
	copy(shuffled, ids)

	rng := newSplitMix64(uint64(seed))
	n := uint64(len(shuffled))
	for i := 0; i < need; i++ {
		j := i + int(rng.Uint64n(n-uint64(i)))
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled[:handSize:handSize], shuffled[handSize:need:need], nil
}

// splitMix64 is a small, fully specified generator so that a seed yields
// the same hands on every platform and Go release.
type splitMix64 struct {
	state uint64
}

func newSplitMix64(seed uint64) *splitMix64 {
	return &splitMix64{state: seed}
}

func (r *splitMix64) Uint64() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Uint64n returns a uniform value in [0, n) using Lemire's multiply-shift
// with rejection. n must be > 0.
func (r *splitMix64) Uint64n(n uint64) uint64 {
	hi, lo := bits.Mul64(r.Uint64(), n)
	if lo < n {
		threshold := -n % n
		for lo < threshold {
			hi, lo = bits.Mul64(r.Uint64(), n)
		}
	}
	return hi
}
