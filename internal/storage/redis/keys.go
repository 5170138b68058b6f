package redis

import (
	"fmt"

	"github.com/mcoot/committy/internal/model"
)

// Key prefix for all committy data
const keyPrefix = "committy"

// cardKey returns the Redis key for a Card
func cardKey(id model.CardID) string {
	return fmt.Sprintf("%s:card:%d", keyPrefix, id)
}

// cardSeqKey returns the counter used to assign card IDs
func cardSeqKey() string {
	return fmt.Sprintf("%s:seq:card", keyPrefix)
}

// cardIndexKey returns the ZSET of card IDs scored by ID
func cardIndexKey() string {
	return fmt.Sprintf("%s:idx:cards", keyPrefix)
}

// outcomeKey returns the Redis key for the outcome of an unordered pair
func outcomeKey(pair model.PairKey) string {
	return fmt.Sprintf("%s:outcome:%d:%d", keyPrefix, pair.Low, pair.High)
}

// reportKey returns the Redis key for a Report
func reportKey(id model.ReportID) string {
	return fmt.Sprintf("%s:report:%d", keyPrefix, id)
}

// reportSeqKey returns the counter used to assign report IDs
func reportSeqKey() string {
	return fmt.Sprintf("%s:seq:report", keyPrefix)
}

// reportIndexKey returns the ZSET of report IDs scored by ID
func reportIndexKey() string {
	return fmt.Sprintf("%s:idx:reports", keyPrefix)
}

// reportsForCardIndexKey returns the SET of report IDs filed against a card
func reportsForCardIndexKey(cardID model.CardID) string {
	return fmt.Sprintf("%s:idx:reports_for_card:%d", keyPrefix, cardID)
}
