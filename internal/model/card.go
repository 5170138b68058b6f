package model

import "time"

// CardID uniquely identifies a card. IDs are assigned by the catalog in
// increasing order, so ascending ID is insertion order.
type CardID int64

// Stat bounds applied to every card
const (
	StatMin      = 1
	StatMax      = 10
	StatTotalMax = 21
	StatCount    = 4
)

// Text limits applied at admission
const (
	MaxNameLength        = 29
	MaxDescriptionLength = 125
	MaxImageURLLength    = 125
)

// Stats holds a card's four attribute values. Position matters.
type Stats [StatCount]int

// Total returns the sum of all four stats
func (s Stats) Total() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Valid reports whether every stat is within bounds and the total fits the budget
func (s Stats) Valid() bool {
	for _, v := range s {
		if v < StatMin || v > StatMax {
			return false
		}
	}
	return s.Total() <= StatTotalMax
}

// Card is an admitted catalog entry. Cards are immutable once created.
type Card struct {
	ID          CardID
	Name        string
	Description string
	ImageURL    string // empty when no verified image
	Stats       Stats
	CreatedAt   time.Time
}

// CardDraft is a card awaiting admission to the catalog.
// Stats are raw user input; nil entries fall back to StatMin.
type CardDraft struct {
	Name        string
	Description string
	ImageURL    string
	Stats       [StatCount]*int
}

// CardColours are the display classes cycled through by card ID
var CardColours = []string{
	"card_red",
	"card_green",
	"card_blue",
	"card_orange",
	"card_yellow",
	"card_purple",
	"card_gray",
}

// ColourClass returns the display class for a card
func ColourClass(id CardID) string {
	n := int64(len(CardColours))
	return CardColours[((int64(id)%n)+n)%n]
}
