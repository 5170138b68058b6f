// Package seedtoken converts raw session seeds to shareable word tokens and back.
//
// A token is the seed, extended by two digital-root check digits, written
// in base len(alphabet) with one word per digit, most significant first,
// joined by Separator.
package seedtoken

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mcoot/committy/internal/model"
)

// Separator joins the words of a token
const Separator = "-"

var (
	bigTen     = big.NewInt(10)
	bigNine    = big.NewInt(9)
	bigHundred = big.NewInt(100)
	maxRawSeed = new(big.Int).SetUint64(^uint64(0))
)

// Codec encodes and decodes seed tokens. A Codec is immutable and safe for
// concurrent use.
type Codec struct {
	words          []string
	index          map[string]int
	base           *big.Int
	maxWords       int
	verifyChecksum bool
}

// Option configures a Codec
type Option func(*Codec)

// WithChecksumVerification makes Decode recompute the two check digits and
// reject tokens whose digits do not match. Without it, the check digits are
// discarded unread, which is how all previously issued tokens were decoded.
func WithChecksumVerification() Option {
	return func(c *Codec) {
		c.verifyChecksum = true
	}
}

// New creates a Codec over the built-in alphabet
func New(opts ...Option) *Codec {
	c, err := NewWithAlphabet(alphabet, opts...)
	if err != nil {
		panic(fmt.Sprintf("seedtoken: built-in alphabet is invalid: %v", err))
	}
	return c
}

// NewWithAlphabet creates a Codec over a custom alphabet. Words must be
// non-empty, must not contain the separator and must be unique ignoring case.
func NewWithAlphabet(words []string, opts ...Option) (*Codec, error) {
	if len(words) < 2 {
		return nil, fmt.Errorf("alphabet needs at least 2 words, got %d", len(words))
	}

	c := &Codec{
		words: make([]string, len(words)),
		index: make(map[string]int, len(words)),
		base:  big.NewInt(int64(len(words))),
	}
	copy(c.words, words)
	c.maxWords = digitCount(withCheckDigitsBound(), c.base)

	for i, w := range c.words {
		if w == "" || strings.Contains(w, Separator) {
			return nil, fmt.Errorf("alphabet word %d (%q) is empty or contains %q", i, w, Separator)
		}
		key := foldWord(w)
		if prev, ok := c.index[key]; ok {
			return nil, fmt.Errorf("alphabet words %d (%q) and %d (%q) collide ignoring case", prev, c.words[prev], i, w)
		}
		c.index[key] = i
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Base returns the number of words in the alphabet
func (c *Codec) Base() int {
	return len(c.words)
}

// Encode converts a raw seed into its token. Encode is total; seed 0 maps to
// a value with no significant digits and therefore to the empty token.
func (c *Codec) Encode(seed model.RawSeed) model.SeedToken {
	v := withCheckDigits(new(big.Int).SetUint64(uint64(seed)))
	if v.Sign() == 0 {
		return ""
	}

	var digits []string
	digit := new(big.Int)
	for v.Sign() > 0 {
		v.QuoRem(v, c.base, digit)
		digits = append(digits, c.words[digit.Int64()])
	}

	// Most significant word first
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return model.SeedToken(strings.Join(digits, Separator))
}

// Decode converts a token back into its raw seed. Words match ignoring case.
func (c *Codec) Decode(token model.SeedToken) (model.RawSeed, error) {
	s := strings.TrimSpace(string(token))
	if s == "" {
		return 0, fmt.Errorf("%w: empty token", model.ErrInvalidSeedToken)
	}

	if words := strings.Count(s, Separator) + 1; words > c.maxWords {
		return 0, fmt.Errorf("%w: token too long (%d words, at most %d)", model.ErrInvalidSeedToken, words, c.maxWords)
	}

	v := new(big.Int)
	for _, word := range strings.Split(s, Separator) {
		if word == "" {
			return 0, fmt.Errorf("%w: empty word in %q", model.ErrInvalidSeedToken, s)
		}
		digit, ok := c.index[foldWord(word)]
		if !ok {
			return 0, fmt.Errorf("%w: unknown word %q", model.ErrInvalidSeedToken, word)
		}
		v.Mul(v, c.base)
		v.Add(v, big.NewInt(int64(digit)))
	}

	raw := new(big.Int).Quo(v, bigHundred)
	if raw.Cmp(maxRawSeed) > 0 {
		return 0, fmt.Errorf("%w: seed out of range", model.ErrInvalidSeedToken)
	}

	if c.verifyChecksum && withCheckDigits(new(big.Int).Set(raw)).Cmp(v) != 0 {
		return 0, fmt.Errorf("%w: check digits do not match", model.ErrInvalidSeedToken)
	}

	return model.RawSeed(raw.Uint64()), nil
}

// withCheckDigits appends two decimal digits to v, each the digital root of
// the value accumulated so far. It modifies and returns v.
func withCheckDigits(v *big.Int) *big.Int {
	for range 2 {
		root := digitalRoot(v)
		v.Mul(v, bigTen)
		v.Add(v, root)
	}
	return v
}

// withCheckDigitsBound returns the largest value a decodable token can carry:
// the largest seed followed by two check digits of 9.
func withCheckDigitsBound() *big.Int {
	v := new(big.Int).Mul(maxRawSeed, bigHundred)
	return v.Add(v, big.NewInt(99))
}

// digitCount returns how many base digits v needs. It consumes v.
func digitCount(v, base *big.Int) int {
	n := 0
	for v.Sign() > 0 {
		v.Quo(v, base)
		n++
	}
	return n
}

// digitalRoot returns the repeated decimal digit sum of v, which for v > 0
// is 1 + (v-1) mod 9.
func digitalRoot(v *big.Int) *big.Int {
	if v.Sign() == 0 {
		return new(big.Int)
	}
	r := new(big.Int).Sub(v, big.NewInt(1))
	r.Mod(r, bigNine)
	return r.Add(r, big.NewInt(1))
}

func foldWord(w string) string {
	return cases.Fold().String(w)
}
