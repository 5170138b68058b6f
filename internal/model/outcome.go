package model

import "time"

// Outcome is the recorded precedent for an unordered pair of cards.
// At most one Outcome exists per pair and it is never overwritten.
type Outcome struct {
	WinnerID  CardID
	LoserID   CardID
	CreatedAt time.Time
}

// Pair returns the canonical key of the outcome's pair
func (o *Outcome) Pair() PairKey {
	return NewPairKey(o.WinnerID, o.LoserID)
}

// SubmissionPrecedents returns the two outcomes a newly submitted card starts
// with: it beats beats and loses to losesTo. card.ID must already be set.
func SubmissionPrecedents(card *Card, beats, losesTo CardID) []*Outcome {
	return []*Outcome{
		{WinnerID: card.ID, LoserID: beats, CreatedAt: card.CreatedAt},
		{WinnerID: losesTo, LoserID: card.ID, CreatedAt: card.CreatedAt},
	}
}

// PairKey is an unordered pair of card IDs with Low <= High
type PairKey struct {
	Low  CardID
	High CardID
}

// NewPairKey builds the canonical key for {a, b}
func NewPairKey(a, b CardID) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}
