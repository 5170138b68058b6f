package seedtoken

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/committy/internal/model"
)

type CodecSuite struct {
	suite.Suite
	codec  *Codec
	strict *Codec
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

func (s *CodecSuite) SetupTest() {
	s.codec = New()
	s.strict = New(WithChecksumVerification())
}

func (s *CodecSuite) TestAlphabetSize() {
	s.Equal(239, s.codec.Base())
}

func (s *CodecSuite) TestEncodeKnownValues() {
	cases := map[model.RawSeed]model.SeedToken{
		1:              "Stain",
		7:              "Jazz-Obsession",
		42:             "Large-Jackson",
		123456789:      "Jazz-G-Fishing-Evade-Taxman",
		math.MaxUint32: "Procrastinate-Saint-Amogus-Endless-Deja",
		math.MaxUint64: "Conduct-Raise-G-Explosive-Simulate-Board-Pizza-Moist-Brave",
	}
	for seed, want := range cases {
		s.Equal(want, s.codec.Encode(seed), "seed %d", seed)
	}
}

func (s *CodecSuite) TestEncodeZeroIsEmpty() {
	s.Equal(model.SeedToken(""), s.codec.Encode(0))
}

func (s *CodecSuite) TestRoundTrip() {
	seeds := []model.RawSeed{1, 2, 9, 10, 42, 99, 100, 238, 239, 1000, 65535, 123456789, math.MaxUint32, math.MaxUint64 - 1, math.MaxUint64}
	for _, seed := range seeds {
		token := s.codec.Encode(seed)
		decoded, err := s.codec.Decode(token)
		s.Require().NoError(err, "seed %d token %q", seed, token)
		s.Equal(seed, decoded)

		decoded, err = s.strict.Decode(token)
		s.Require().NoError(err, "strict seed %d token %q", seed, token)
		s.Equal(seed, decoded)
	}
}

func (s *CodecSuite) TestDecodeIgnoresCase() {
	seed, err := s.codec.Decode("large-JACKSON")
	s.Require().NoError(err)
	s.Equal(model.RawSeed(42), seed)

	seed, err = s.codec.Decode("  Large-Jackson  ")
	s.Require().NoError(err)
	s.Equal(model.RawSeed(42), seed)
}

func (s *CodecSuite) TestDecodeUnknownWord() {
	_, err := s.codec.Decode("Large-Platypus")
	s.ErrorIs(err, model.ErrInvalidSeedToken)
	s.Contains(err.Error(), "Platypus")
}

func (s *CodecSuite) TestDecodeEmptyToken() {
	_, err := s.codec.Decode("")
	s.ErrorIs(err, model.ErrInvalidSeedToken)

	_, err = s.codec.Decode("   ")
	s.ErrorIs(err, model.ErrInvalidSeedToken)
}

func (s *CodecSuite) TestDecodeMalformedSeparators() {
	for _, token := range []model.SeedToken{"-Large-Jackson", "Large-Jackson-", "Large--Jackson", "-"} {
		_, err := s.codec.Decode(token)
		s.ErrorIs(err, model.ErrInvalidSeedToken, "token %q", token)
	}
}

func (s *CodecSuite) TestDecodeOverflow() {
	// One past the largest seed, with its check digits replaced by 99
	_, err := s.codec.Decode("Conduct-Raise-G-Explosive-Simulate-Board-Pizza-Epoch-Game")
	s.ErrorIs(err, model.ErrInvalidSeedToken)
}

func (s *CodecSuite) TestDecodeRejectsOverlongTokens() {
	_, err := s.codec.Decode(model.SeedToken(strings.Repeat("Open-", 150000) + "Open"))
	s.ErrorIs(err, model.ErrInvalidSeedToken)
	s.Contains(err.Error(), "too long")

	// Leading zero words past the widest seed are rejected too
	_, err = s.codec.Decode(model.SeedToken(strings.Repeat("Tiny-", 9) + "Stain"))
	s.ErrorIs(err, model.ErrInvalidSeedToken)
}

func (s *CodecSuite) TestMaxWordsCoversWidestSeed() {
	s.Equal(9, s.codec.maxWords)
	widest := s.codec.Encode(math.MaxUint64)
	s.Len(strings.Split(string(widest), Separator), s.codec.maxWords)

	binary, err := NewWithAlphabet([]string{"zero", "one"})
	s.Require().NoError(err)
	s.Equal(71, binary.maxWords)
	seed, err := binary.Decode(binary.Encode(math.MaxUint64))
	s.Require().NoError(err)
	s.Equal(model.RawSeed(math.MaxUint64), seed)
}

func (s *CodecSuite) TestDecodeDoesNotVerifyCheckDigitsByDefault() {
	// 4200 carries check digits 00; the genuine token for 42 ends in 63
	seed, err := s.codec.Decode("Large-Rock")
	s.Require().NoError(err)
	s.Equal(model.RawSeed(42), seed)
}

func (s *CodecSuite) TestStrictDecodeRejectsTamperedCheckDigits() {
	_, err := s.strict.Decode("Large-Rock")
	s.ErrorIs(err, model.ErrInvalidSeedToken)
	s.Contains(err.Error(), "check digits")
}

func (s *CodecSuite) TestTokensUseOnlyAlphabetWords() {
	token := string(s.codec.Encode(math.MaxUint64))
	for _, w := range strings.Split(token, Separator) {
		s.Contains(alphabet, w)
	}
}

func (s *CodecSuite) TestNewWithAlphabetRejectsCaseCollisions() {
	_, err := NewWithAlphabet([]string{"Tiny", "Open", "TINY"})
	s.Error(err)
}

func (s *CodecSuite) TestNewWithAlphabetRejectsSeparatorInWord() {
	_, err := NewWithAlphabet([]string{"Tiny", "Wide-Open"})
	s.Error(err)
}

func (s *CodecSuite) TestCustomAlphabet() {
	c, err := NewWithAlphabet([]string{"zero", "one"})
	s.Require().NoError(err)

	// 1 -> 112 -> 1110000 in binary
	s.Equal(model.SeedToken("one-one-one-zero-zero-zero-zero"), c.Encode(1))
	seed, err := c.Decode("ONE-one-one-zero-zero-zero-zero")
	s.Require().NoError(err)
	s.Equal(model.RawSeed(1), seed)
}
