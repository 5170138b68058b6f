// Package ledger records which card won each pairing, at most once per pair.
package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/committy/internal/dependencies/clock"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
)

// CardChecker resolves which of a set of card IDs exist
type CardChecker interface {
	ExistsAll(ctx context.Context, ids ...model.CardID) ([]model.CardID, bool, error)
}

// RecordResult is the outcome stored for a pair and whether this call created it
type RecordResult struct {
	Outcome *model.Outcome
	Created bool
}

// Service is the precedent ledger
type Service struct {
	storage storage.Storage
	cards   CardChecker
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new ledger Service
func New(storage storage.Storage, cards CardChecker, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		cards:   cards,
		clock:   clock,
		logger:  logger,
	}
}

// Lookup returns the outcome for the unordered pair {a, b}, if any
func (s *Service) Lookup(ctx context.Context, a, b model.CardID) (*model.Outcome, bool, error) {
	outcome, err := s.storage.GetOutcome(ctx, model.NewPairKey(a, b))
	if errors.Is(err, model.ErrOutcomeNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &model.LedgerError{Op: "lookup", Err: err}
	}
	return outcome, true, nil
}

// RecordIfAbsent stores winner over loser unless the pair already has an
// outcome. An existing outcome is returned unchanged with Created false,
// whichever way round it was recorded.
func (s *Service) RecordIfAbsent(ctx context.Context, winner, loser model.CardID) (RecordResult, error) {
	if winner == loser {
		return RecordResult{}, model.ErrSelfMatch
	}

	existing, allExist, err := s.cards.ExistsAll(ctx, winner, loser)
	if err != nil {
		return RecordResult{}, &model.LedgerError{Op: "check cards", Err: err}
	}
	if !allExist {
		return RecordResult{}, &model.NonexistentCardError{Missing: missingFrom([]model.CardID{winner, loser}, existing)}
	}

	outcome := &model.Outcome{
		WinnerID:  winner,
		LoserID:   loser,
		CreatedAt: s.clock.Now(),
	}
	stored, created, err := s.storage.CreateOutcomeIfAbsent(ctx, outcome)
	if err != nil {
		if errors.Is(err, model.ErrNonexistentCard) {
			return RecordResult{}, err
		}
		s.logger.Error("failed to record outcome",
			slog.Int64("winner_id", int64(winner)),
			slog.Int64("loser_id", int64(loser)),
			slog.String("error", err.Error()),
		)
		return RecordResult{}, &model.LedgerError{Op: "record", Err: err}
	}

	if created {
		s.logger.Info("precedent recorded",
			slog.Int64("winner_id", int64(stored.WinnerID)),
			slog.Int64("loser_id", int64(stored.LoserID)),
		)
	}
	return RecordResult{Outcome: stored, Created: created}, nil
}

func missingFrom(wanted, existing []model.CardID) []model.CardID {
	found := make(map[model.CardID]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}
	var missing []model.CardID
	for _, id := range wanted {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
