package model

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used across the application
var (
	// Seed token errors
	ErrInvalidSeedToken = errors.New("invalid seed token")

	// Deal errors
	ErrInvalidHandSize     = errors.New("hand size must be at least 1")
	ErrInsufficientCatalog = errors.New("not enough cards in the catalog")

	// Card errors
	ErrCardNotFound      = errors.New("card not found")
	ErrNonexistentCard   = errors.New("card does not exist")
	ErrCardNameRequired  = errors.New("card name is required")
	ErrInappropriateText = errors.New("text contains inappropriate language")
	ErrStatBudget        = errors.New("stats violate the stat budget")
	ErrSameBeatsAndLoses = errors.New("a card cannot beat and lose to the same card")

	// Precedent errors
	ErrSelfMatch       = errors.New("a card cannot be matched against itself")
	ErrWinnerNotInPair = errors.New("claimed winner is not one of the two cards")
	ErrOutcomeNotFound = errors.New("outcome not found")
	ErrLedger          = errors.New("precedent ledger unavailable")

	// Report errors
	ErrReportNotFound = errors.New("report not found")
)

// InsufficientCatalogError reports how many cards a deal needed
type InsufficientCatalogError struct {
	Available int
	Required  int
}

func (e *InsufficientCatalogError) Error() string {
	return fmt.Sprintf("not enough cards in the catalog: have %d, need %d", e.Available, e.Required)
}

func (e *InsufficientCatalogError) Unwrap() error {
	return ErrInsufficientCatalog
}

// NonexistentCardError names the card IDs that did not resolve
type NonexistentCardError struct {
	Missing []CardID
}

func (e *NonexistentCardError) Error() string {
	ids := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		ids[i] = fmt.Sprint(int64(id))
	}
	return fmt.Sprintf("cards do not exist: %s", strings.Join(ids, ", "))
}

func (e *NonexistentCardError) Unwrap() error {
	return ErrNonexistentCard
}

// LedgerError wraps a storage failure in the precedent ledger
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() []error {
	return []error{ErrLedger, e.Err}
}

// InappropriateTextError names the rejected field
type InappropriateTextError struct {
	Field string
}

func (e *InappropriateTextError) Error() string {
	return fmt.Sprintf("bad %s, please try again", e.Field)
}

func (e *InappropriateTextError) Unwrap() error {
	return ErrInappropriateText
}

// StatBudgetError carries the normalized stats that failed validation
type StatBudgetError struct {
	Stats Stats
}

func (e *StatBudgetError) Error() string {
	return fmt.Sprintf("stats %v violate the stat budget (each %d-%d, total at most %d)",
		[StatCount]int(e.Stats), StatMin, StatMax, StatTotalMax)
}

func (e *StatBudgetError) Unwrap() error {
	return ErrStatBudget
}
