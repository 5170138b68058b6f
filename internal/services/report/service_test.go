package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/committy/internal/dependencies/mocks"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage/memory"
	"github.com/mcoot/committy/internal/testutil"
)

type ReportSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *mocks.MockClock
	service *Service
	card    model.CardID
	other   model.CardID
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportSuite))
}

func (s *ReportSuite) SetupTest() {
	s.ctx = context.Background()
	store := memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	s.service = New(store, s.clock, testutil.NopLogger())

	var err error
	s.card, err = store.InsertCard(s.ctx, &model.Card{Name: "Kevin", Stats: model.Stats{1, 1, 1, 1}})
	s.Require().NoError(err)
	s.other, err = store.InsertCard(s.ctx, &model.Card{Name: "Nokia", Stats: model.Stats{1, 1, 1, 1}})
	s.Require().NoError(err)
}

func (s *ReportSuite) TestReportAndGet() {
	report, err := s.service.Report(s.ctx, s.card)
	s.Require().NoError(err)
	s.NotZero(report.ID)
	s.Equal(s.clock.Now(), report.CreatedAt)

	got, err := s.service.Get(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(s.card, got.CardID)
}

func (s *ReportSuite) TestReportMissingCard() {
	_, err := s.service.Report(s.ctx, 404)
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *ReportSuite) TestListOldestFirst() {
	first, err := s.service.Report(s.ctx, s.card)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	second, err := s.service.Report(s.ctx, s.other)
	s.Require().NoError(err)

	reports, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(reports, 2)
	s.Equal(first.ID, reports[0].ID)
	s.Equal(second.ID, reports[1].ID)
}

func (s *ReportSuite) TestDismiss() {
	report, err := s.service.Report(s.ctx, s.card)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Dismiss(s.ctx, report.ID))
	_, err = s.service.Get(s.ctx, report.ID)
	s.ErrorIs(err, model.ErrReportNotFound)

	s.ErrorIs(s.service.Dismiss(s.ctx, report.ID), model.ErrReportNotFound)
}

func (s *ReportSuite) TestDismissForCard() {
	for range 3 {
		_, err := s.service.Report(s.ctx, s.card)
		s.Require().NoError(err)
	}
	kept, err := s.service.Report(s.ctx, s.other)
	s.Require().NoError(err)

	n, err := s.service.DismissForCard(s.ctx, s.card)
	s.Require().NoError(err)
	s.Equal(3, n)

	reports, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(reports, 1)
	s.Equal(kept.ID, reports[0].ID)
}
