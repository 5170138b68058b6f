// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
)

// Suite runs the storage contract against a backend. Embed it and set
// NewStorage, which is called before every test.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

var created = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func (s *Suite) insertCard(name string) model.CardID {
	card := &model.Card{
		Name:        name,
		Description: name + " description",
		ImageURL:    "https://example.com/" + name + ".png",
		Stats:       model.Stats{5, 5, 5, 5},
		CreatedAt:   created,
	}
	id, err := s.Storage.InsertCard(s.Ctx, card)
	s.Require().NoError(err)
	s.Equal(id, card.ID)
	return id
}

// Card tests

func (s *Suite) TestInsertAndGetCard() {
	card := &model.Card{
		Name:        "Kevin",
		Description: "Holy shit it's Kevin!!!",
		ImageURL:    "https://i.imgur.com/rf0hpyh.png",
		Stats:       model.Stats{10, 3, 4, 2},
		CreatedAt:   created,
	}
	id, err := s.Storage.InsertCard(s.Ctx, card)
	s.Require().NoError(err)

	got, err := s.Storage.GetCard(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal(id, got.ID)
	s.Equal(card.Name, got.Name)
	s.Equal(card.Description, got.Description)
	s.Equal(card.ImageURL, got.ImageURL)
	s.Equal(card.Stats, got.Stats)
	s.True(card.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestGetCardNotFound() {
	_, err := s.Storage.GetCard(s.Ctx, 404)
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *Suite) TestCardIDsIncreaseInInsertionOrder() {
	a := s.insertCard("a")
	b := s.insertCard("b")
	c := s.insertCard("c")
	s.Less(a, b)
	s.Less(b, c)

	ids, err := s.Storage.ListCardIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.CardID{a, b, c}, ids)

	cards, err := s.Storage.ListCards(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(cards, 3)
	s.Equal("a", cards[0].Name)
	s.Equal("c", cards[2].Name)
}

func (s *Suite) TestListCardIDsEmpty() {
	ids, err := s.Storage.ListCardIDs(s.Ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *Suite) TestGetCardsSkipsMissing() {
	a := s.insertCard("a")
	b := s.insertCard("b")

	cards, err := s.Storage.GetCards(s.Ctx, []model.CardID{b, 999, a})
	s.Require().NoError(err)
	s.Len(cards, 2)
	s.Equal("a", cards[a].Name)
	s.Equal("b", cards[b].Name)
	s.NotContains(cards, model.CardID(999))
}

func (s *Suite) TestGetCardsEmpty() {
	cards, err := s.Storage.GetCards(s.Ctx, nil)
	s.Require().NoError(err)
	s.Empty(cards)
}

func (s *Suite) TestCountCards() {
	count, err := s.Storage.CountCards(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0, count)

	s.insertCard("a")
	s.insertCard("b")

	count, err = s.Storage.CountCards(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *Suite) TestInsertCardWithPrecedents() {
	a := s.insertCard("a")
	b := s.insertCard("b")

	card := &model.Card{Name: "spork", Stats: model.Stats{7, 5, 5, 4}, CreatedAt: created}
	id, err := s.Storage.InsertCardWithPrecedents(s.Ctx, card, a, b)
	s.Require().NoError(err)
	s.Equal(id, card.ID)
	s.Greater(id, b)

	got, err := s.Storage.GetCard(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal("spork", got.Name)

	beaten, err := s.Storage.GetOutcome(s.Ctx, model.NewPairKey(a, id))
	s.Require().NoError(err)
	s.Equal(id, beaten.WinnerID)
	s.Equal(a, beaten.LoserID)
	s.True(created.Equal(beaten.CreatedAt))

	lost, err := s.Storage.GetOutcome(s.Ctx, model.NewPairKey(id, b))
	s.Require().NoError(err)
	s.Equal(b, lost.WinnerID)
	s.Equal(id, lost.LoserID)

	ids, err := s.Storage.ListCardIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.CardID{a, b, id}, ids)
}

func (s *Suite) TestInsertCardWithPrecedentsMissingReferenceStoresNothing() {
	a := s.insertCard("a")

	card := &model.Card{Name: "orphan", Stats: model.Stats{5, 5, 5, 5}, CreatedAt: created}
	_, err := s.Storage.InsertCardWithPrecedents(s.Ctx, card, a, 404)
	var nonexistent *model.NonexistentCardError
	s.Require().ErrorAs(err, &nonexistent)
	s.Equal([]model.CardID{404}, nonexistent.Missing)

	ids, err := s.Storage.ListCardIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.CardID{a}, ids)
	count, err := s.Storage.CountCards(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// Outcome tests

func (s *Suite) TestCreateOutcome() {
	a := s.insertCard("a")
	b := s.insertCard("b")

	stored, createdNow, err := s.Storage.CreateOutcomeIfAbsent(s.Ctx, &model.Outcome{WinnerID: b, LoserID: a, CreatedAt: created})
	s.Require().NoError(err)
	s.True(createdNow)
	s.Equal(b, stored.WinnerID)
	s.Equal(a, stored.LoserID)

	got, err := s.Storage.GetOutcome(s.Ctx, model.NewPairKey(a, b))
	s.Require().NoError(err)
	s.Equal(b, got.WinnerID)
	s.Equal(a, got.LoserID)
	s.True(created.Equal(got.CreatedAt))
}

func (s *Suite) TestGetOutcomeNotFound() {
	a := s.insertCard("a")
	b := s.insertCard("b")
	_, err := s.Storage.GetOutcome(s.Ctx, model.NewPairKey(a, b))
	s.ErrorIs(err, model.ErrOutcomeNotFound)
}

func (s *Suite) TestCreateOutcomeNeverOverwrites() {
	a := s.insertCard("a")
	b := s.insertCard("b")

	_, createdNow, err := s.Storage.CreateOutcomeIfAbsent(s.Ctx, &model.Outcome{WinnerID: a, LoserID: b, CreatedAt: created})
	s.Require().NoError(err)
	s.True(createdNow)

	stored, createdNow, err := s.Storage.CreateOutcomeIfAbsent(s.Ctx, &model.Outcome{WinnerID: b, LoserID: a, CreatedAt: created.Add(time.Hour)})
	s.Require().NoError(err)
	s.False(createdNow)
	s.Equal(a, stored.WinnerID)
	s.Equal(b, stored.LoserID)
	s.True(created.Equal(stored.CreatedAt))
}

func (s *Suite) TestCreateOutcomeMissingCard() {
	a := s.insertCard("a")
	_, _, err := s.Storage.CreateOutcomeIfAbsent(s.Ctx, &model.Outcome{WinnerID: a, LoserID: 999, CreatedAt: created})
	s.ErrorIs(err, model.ErrNonexistentCard)
}

func (s *Suite) TestConcurrentCreateOutcomeStoresOne() {
	a := s.insertCard("a")
	b := s.insertCard("b")

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners = make(map[model.CardID]int)
		creates int
		errs    []error
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := &model.Outcome{WinnerID: a, LoserID: b, CreatedAt: created}
			if i%2 == 1 {
				outcome = &model.Outcome{WinnerID: b, LoserID: a, CreatedAt: created}
			}
			stored, createdNow, err := s.Storage.CreateOutcomeIfAbsent(s.Ctx, outcome)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			winners[stored.WinnerID]++
			if createdNow {
				creates++
			}
		}()
	}
	wg.Wait()

	s.Empty(errs)
	s.Equal(1, creates)
	s.Len(winners, 1)
}

// Report tests

func (s *Suite) TestSaveAndGetReport() {
	a := s.insertCard("a")

	report := &model.Report{CardID: a, CreatedAt: created}
	id, err := s.Storage.SaveReport(s.Ctx, report)
	s.Require().NoError(err)
	s.Equal(id, report.ID)

	got, err := s.Storage.GetReport(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal(a, got.CardID)
	s.True(created.Equal(got.CreatedAt))
}

func (s *Suite) TestSaveReportMissingCard() {
	_, err := s.Storage.SaveReport(s.Ctx, &model.Report{CardID: 999, CreatedAt: created})
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *Suite) TestGetReportNotFound() {
	_, err := s.Storage.GetReport(s.Ctx, 404)
	s.ErrorIs(err, model.ErrReportNotFound)
}

func (s *Suite) TestListReportsOrdered() {
	a := s.insertCard("a")
	b := s.insertCard("b")

	first, err := s.Storage.SaveReport(s.Ctx, &model.Report{CardID: b, CreatedAt: created})
	s.Require().NoError(err)
	second, err := s.Storage.SaveReport(s.Ctx, &model.Report{CardID: a, CreatedAt: created})
	s.Require().NoError(err)

	reports, err := s.Storage.ListReports(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(reports, 2)
	s.Equal(first, reports[0].ID)
	s.Equal(second, reports[1].ID)
}

func (s *Suite) TestDeleteReport() {
	a := s.insertCard("a")
	id, err := s.Storage.SaveReport(s.Ctx, &model.Report{CardID: a, CreatedAt: created})
	s.Require().NoError(err)

	s.Require().NoError(s.Storage.DeleteReport(s.Ctx, id))

	_, err = s.Storage.GetReport(s.Ctx, id)
	s.ErrorIs(err, model.ErrReportNotFound)

	err = s.Storage.DeleteReport(s.Ctx, id)
	s.ErrorIs(err, model.ErrReportNotFound)
}

func (s *Suite) TestDeleteReportsForCard() {
	a := s.insertCard("a")
	b := s.insertCard("b")
	for _, id := range []model.CardID{a, b, a} {
		_, err := s.Storage.SaveReport(s.Ctx, &model.Report{CardID: id, CreatedAt: created})
		s.Require().NoError(err)
	}

	deleted, err := s.Storage.DeleteReportsForCard(s.Ctx, a)
	s.Require().NoError(err)
	s.Equal(2, deleted)

	reports, err := s.Storage.ListReports(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(reports, 1)
	s.Equal(b, reports[0].CardID)

	deleted, err = s.Storage.DeleteReportsForCard(s.Ctx, a)
	s.Require().NoError(err)
	s.Equal(0, deleted)
}
