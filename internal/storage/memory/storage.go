package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	cards      map[model.CardID]*model.Card
	cardOrder  []model.CardID
	nextCardID model.CardID

	outcomes map[model.PairKey]*model.Outcome

	reports      map[model.ReportID]*model.Report
	nextReportID model.ReportID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		cards:        make(map[model.CardID]*model.Card),
		nextCardID:   1,
		outcomes:     make(map[model.PairKey]*model.Outcome),
		reports:      make(map[model.ReportID]*model.Report),
		nextReportID: 1,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}

// Card operations

func (s *Storage) InsertCard(ctx context.Context, card *model.Card) (model.CardID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card.ID = s.nextCardID
	s.nextCardID++

	stored := *card
	s.cards[card.ID] = &stored
	s.cardOrder = append(s.cardOrder, card.ID)
	return card.ID, nil
}

func (s *Storage) InsertCardWithPrecedents(ctx context.Context, card *model.Card, beats, losesTo model.CardID) (model.CardID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []model.CardID
	for _, id := range []model.CardID{beats, losesTo} {
		if _, ok := s.cards[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return 0, &model.NonexistentCardError{Missing: missing}
	}

	card.ID = s.nextCardID
	s.nextCardID++

	stored := *card
	s.cards[card.ID] = &stored
	s.cardOrder = append(s.cardOrder, card.ID)

	for _, outcome := range model.SubmissionPrecedents(card, beats, losesTo) {
		s.outcomes[outcome.Pair()] = outcome
	}
	return card.ID, nil
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	c := *card
	return &c, nil
}

func (s *Storage) GetCards(ctx context.Context, ids []model.CardID) (map[model.CardID]*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[model.CardID]*model.Card, len(ids))
	for _, id := range ids {
		if card, ok := s.cards[id]; ok {
			c := *card
			result[id] = &c
		}
	}
	return result, nil
}

func (s *Storage) ListCards(ctx context.Context) ([]*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards := make([]*model.Card, 0, len(s.cardOrder))
	for _, id := range s.cardOrder {
		c := *s.cards[id]
		cards = append(cards, &c)
	}
	return cards, nil
}

func (s *Storage) ListCardIDs(ctx context.Context) ([]model.CardID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.CardID, len(s.cardOrder))
	copy(ids, s.cardOrder)
	return ids, nil
}

func (s *Storage) CountCards(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards), nil
}

// Outcome operations

func (s *Storage) GetOutcome(ctx context.Context, pair model.PairKey) (*model.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	outcome, ok := s.outcomes[pair]
	if !ok {
		return nil, model.ErrOutcomeNotFound
	}
	o := *outcome
	return &o, nil
}

func (s *Storage) CreateOutcomeIfAbsent(ctx context.Context, outcome *model.Outcome) (*model.Outcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := outcome.Pair()
	if existing, ok := s.outcomes[pair]; ok {
		o := *existing
		return &o, false, nil
	}

	for _, id := range []model.CardID{outcome.WinnerID, outcome.LoserID} {
		if _, ok := s.cards[id]; !ok {
			return nil, false, &model.NonexistentCardError{Missing: []model.CardID{id}}
		}
	}

	stored := *outcome
	s.outcomes[pair] = &stored
	o := stored
	return &o, true, nil
}

// Report operations

func (s *Storage) SaveReport(ctx context.Context, report *model.Report) (model.ReportID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[report.CardID]; !ok {
		return 0, model.ErrCardNotFound
	}

	report.ID = s.nextReportID
	s.nextReportID++
	stored := *report
	s.reports[report.ID] = &stored
	return report.ID, nil
}

func (s *Storage) GetReport(ctx context.Context, id model.ReportID) (*model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, model.ErrReportNotFound
	}
	r := *report
	return &r, nil
}

func (s *Storage) ListReports(ctx context.Context) ([]*model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make([]*model.Report, 0, len(s.reports))
	for _, report := range s.reports {
		r := *report
		reports = append(reports, &r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ID < reports[j].ID
	})
	return reports, nil
}

func (s *Storage) DeleteReport(ctx context.Context, id model.ReportID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return model.ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *Storage) DeleteReportsForCard(ctx context.Context, cardID model.CardID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, report := range s.reports {
		if report.CardID == cardID {
			delete(s.reports, id)
			deleted++
		}
	}
	return deleted, nil
}
