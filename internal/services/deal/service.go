package deal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/committy/internal/model"
)

// Catalog is the slice of the card catalog a deal needs
type Catalog interface {
	ListIDs(ctx context.Context) ([]model.CardID, error)
	FetchByIDs(ctx context.Context, ids []model.CardID) (map[model.CardID]*model.Card, error)
}

// Service deals hands from the live catalog
type Service struct {
	catalog Catalog
	logger  *slog.Logger
}

// New creates a new deal Service
func New(catalog Catalog, logger *slog.Logger) *Service {
	return &Service{
		catalog: catalog,
		logger:  logger,
	}
}

// Deal reads the catalog's current IDs and draws two hands of full cards.
// The catalog is read without a snapshot, so a seed only reproduces the same
// hands while the catalog is unchanged.
func (s *Service) Deal(ctx context.Context, handSize int, seed model.RawSeed) (model.Hand, model.Hand, error) {
	ids, err := s.catalog.ListIDs(ctx)
	if err != nil {
		return nil, nil, err
	}

	ids1, ids2, err := Draw(handSize, seed, ids)
	if err != nil {
		return nil, nil, err
	}

	wanted := make([]model.CardID, 0, len(ids1)+len(ids2))
	wanted = append(wanted, ids1...)
	wanted = append(wanted, ids2...)

	cards, err := s.catalog.FetchByIDs(ctx, wanted)
	if err != nil {
		return nil, nil, err
	}

	hand1, err := inOrder(ids1, cards)
	if err != nil {
		return nil, nil, err
	}
	hand2, err := inOrder(ids2, cards)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("dealt hands",
		slog.Int("hand_size", handSize),
		slog.Uint64("seed", uint64(seed)),
		slog.Int("catalog_size", len(ids)),
	)

	return hand1, hand2, nil
}

// inOrder arranges fetched cards in the shuffle's order. A card that vanished
// between listing and fetching is reported as missing.
func inOrder(ids []model.CardID, cards map[model.CardID]*model.Card) (model.Hand, error) {
	hand := make(model.Hand, len(ids))
	var missing []model.CardID
	for i, id := range ids {
		card, ok := cards[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		hand[i] = card
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("resolve dealt cards: %w", &model.NonexistentCardError{Missing: missing})
	}
	return hand, nil
}
