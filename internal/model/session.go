package model

import "math"

// RawSeed drives deterministic hand generation
type RawSeed uint64

// SeedToken is the shareable, human-readable encoding of a RawSeed
type SeedToken string

// Hand is an ordered sequence of cards dealt to one side
type Hand []*Card

// IDs returns the card IDs in hand order
func (h Hand) IDs() []CardID {
	ids := make([]CardID, len(h))
	for i, c := range h {
		ids[i] = c.ID
	}
	return ids
}

// CardsForHands returns how many cards two hands of handSize need,
// saturating at math.MaxInt.
func CardsForHands(handSize int) int {
	if handSize > math.MaxInt/2 {
		return math.MaxInt
	}
	return 2 * handSize
}

// HandsFit reports whether available cards can fill two hands of handSize
func HandsFit(available, handSize int) bool {
	return handSize <= available/2
}

// Deal is the pair of hands produced for one session
type Deal struct {
	Token    SeedToken
	Seed     RawSeed
	HandSize int
	Hand1    Hand
	Hand2    Hand
}

// VerdictKind classifies the result of judging a pair
type VerdictKind string

const (
	VerdictNewPrecedent VerdictKind = "new_precedent"
	VerdictUpheld       VerdictKind = "upheld"
	VerdictOverruled    VerdictKind = "overruled"
)

// Verdict is the authoritative result of judging a pair. Winner and Loser
// always come from the stored outcome, never from the claimant.
type Verdict struct {
	Kind          VerdictKind
	ClaimedWinner CardID
	Outcome       *Outcome
}

// Matchup is a pair of cards and, if already judged, their precedent
type Matchup struct {
	Card1     *Card
	Card2     *Card
	Precedent *Outcome
}
