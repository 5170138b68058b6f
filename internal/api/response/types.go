package response

import (
	"time"

	"github.com/mcoot/committy/internal/model"
)

// Card represents a card in API responses
type Card struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	Stats       [4]int    `json:"stats"`
	Total       int       `json:"total"`
	Colour      string    `json:"colour"`
	CreatedAt   time.Time `json:"created_at"`
}

// CardFromModel converts a model.Card to a response Card
func CardFromModel(c *model.Card) Card {
	return Card{
		ID:          int64(c.ID),
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Stats:       [4]int(c.Stats),
		Total:       c.Stats.Total(),
		Colour:      model.ColourClass(c.ID),
		CreatedAt:   c.CreatedAt,
	}
}

// CardsFromModel converts a slice of cards
func CardsFromModel(cards []*model.Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = CardFromModel(c)
	}
	return out
}

// CardList is the response for listing cards
type CardList struct {
	Cards []Card `json:"cards"`
}

// CardIDs is the response for listing card IDs
type CardIDs struct {
	IDs []int64 `json:"ids"`
}

// CardIDsFromModel converts card IDs
func CardIDsFromModel(ids []model.CardID) CardIDs {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return CardIDs{IDs: out}
}

// CardLink is a card name with a shareable URL
type CardLink struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CardLinks is the response for listing card links
type CardLinks struct {
	Links []CardLink `json:"links"`
}

// Count is the response for counting cards
type Count struct {
	Count int `json:"count"`
}

// Session is the response for starting a session
type Session struct {
	Token    string `json:"token"`
	HandSize int    `json:"hand_size"`
	URL      string `json:"url"`
}

// Deal is the response for drawing a session's hands
type Deal struct {
	Token    string `json:"token"`
	Seed     uint64 `json:"seed"`
	HandSize int    `json:"hand_size"`
	Hand1    []Card `json:"hand1"`
	Hand2    []Card `json:"hand2"`
}

// DealFromModel converts a model.Deal
func DealFromModel(d *model.Deal) Deal {
	return Deal{
		Token:    string(d.Token),
		Seed:     uint64(d.Seed),
		HandSize: d.HandSize,
		Hand1:    CardsFromModel(d.Hand1),
		Hand2:    CardsFromModel(d.Hand2),
	}
}

// Outcome represents a precedent
type Outcome struct {
	WinnerID  int64     `json:"winner_id"`
	LoserID   int64     `json:"loser_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OutcomeFromModel converts a model.Outcome; nil stays nil
func OutcomeFromModel(o *model.Outcome) *Outcome {
	if o == nil {
		return nil
	}
	return &Outcome{
		WinnerID:  int64(o.WinnerID),
		LoserID:   int64(o.LoserID),
		CreatedAt: o.CreatedAt,
	}
}

// Matchup is the response for viewing two cards side by side
type Matchup struct {
	Card1     Card     `json:"card1"`
	Card2     Card     `json:"card2"`
	Precedent *Outcome `json:"precedent"`
}

// MatchupFromModel converts a model.Matchup
func MatchupFromModel(m *model.Matchup) Matchup {
	return Matchup{
		Card1:     CardFromModel(m.Card1),
		Card2:     CardFromModel(m.Card2),
		Precedent: OutcomeFromModel(m.Precedent),
	}
}

// Verdict is the response for judging a pair. Winner and loser come from
// the stored precedent.
type Verdict struct {
	Kind          string  `json:"kind"`
	ClaimedWinner int64   `json:"claimed_winner"`
	Precedent     Outcome `json:"precedent"`
}

// VerdictFromModel converts a model.Verdict
func VerdictFromModel(v *model.Verdict) Verdict {
	return Verdict{
		Kind:          string(v.Kind),
		ClaimedWinner: int64(v.ClaimedWinner),
		Precedent:     *OutcomeFromModel(v.Outcome),
	}
}

// Report represents a card report
type Report struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"card_id"`
	CreatedAt time.Time `json:"created_at"`
	Card      *Card     `json:"card,omitempty"`
}

// ReportFromModel converts a model.Report; card may be nil
func ReportFromModel(r *model.Report, card *model.Card) Report {
	out := Report{
		ID:        int64(r.ID),
		CardID:    int64(r.CardID),
		CreatedAt: r.CreatedAt,
	}
	if card != nil {
		c := CardFromModel(card)
		out.Card = &c
	}
	return out
}

// ReportList is the response for listing reports
type ReportList struct {
	Reports []Report `json:"reports"`
}

// Cleared is the response for clearing reports
type Cleared struct {
	Cleared int `json:"cleared"`
}
