package storage

import (
	"context"

	"github.com/mcoot/committy/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Card operations
	//
	// InsertCard assigns the next card ID, stores the card and sets card.ID.
	// IDs increase monotonically and ListCardIDs returns them ascending.
	InsertCard(ctx context.Context, card *model.Card) (model.CardID, error)
	GetCard(ctx context.Context, id model.CardID) (*model.Card, error)
	GetCards(ctx context.Context, ids []model.CardID) (map[model.CardID]*model.Card, error)
	ListCards(ctx context.Context) ([]*model.Card, error)
	ListCardIDs(ctx context.Context) ([]model.CardID, error)
	CountCards(ctx context.Context) (int, error)
	// InsertCardWithPrecedents inserts card like InsertCard and, in the same
	// atomic step, records that it beats beats and loses to losesTo. Both
	// outcomes take card.CreatedAt. When either reference is missing it
	// returns a NonexistentCardError and stores nothing. beats and losesTo
	// must differ.
	InsertCardWithPrecedents(ctx context.Context, card *model.Card, beats, losesTo model.CardID) (model.CardID, error)

	// Outcome operations
	//
	// CreateOutcomeIfAbsent atomically stores outcome unless its pair already
	// has one. It returns the stored outcome and whether it was created by
	// this call; an existing outcome is never modified.
	GetOutcome(ctx context.Context, pair model.PairKey) (*model.Outcome, error)
	CreateOutcomeIfAbsent(ctx context.Context, outcome *model.Outcome) (*model.Outcome, bool, error)

	// Report operations
	SaveReport(ctx context.Context, report *model.Report) (model.ReportID, error)
	GetReport(ctx context.Context, id model.ReportID) (*model.Report, error)
	ListReports(ctx context.Context) ([]*model.Report, error)
	DeleteReport(ctx context.Context, id model.ReportID) error
	DeleteReportsForCard(ctx context.Context, cardID model.CardID) (int, error)

	Close() error
}
