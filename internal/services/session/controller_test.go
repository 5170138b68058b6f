package session

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/committy/internal/dependencies/mocks"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/catalog"
	"github.com/mcoot/committy/internal/services/deal"
	"github.com/mcoot/committy/internal/services/ledger"
	"github.com/mcoot/committy/internal/services/seedtoken"
	"github.com/mcoot/committy/internal/storage/memory"
	"github.com/mcoot/committy/internal/testutil"
)

type passSanitizer struct{}

func (passSanitizer) Sanitize(text string) (string, error) { return text, nil }

type noImages struct{}

func (noImages) Resolve(context.Context, string) string { return "" }

// flakyStorage fails the first failures outcome lookups, and every
// submission while submitErr is set
type flakyStorage struct {
	*memory.Storage
	failures  int
	calls     int
	submitErr error
}

func (f *flakyStorage) InsertCardWithPrecedents(ctx context.Context, card *model.Card, beats, losesTo model.CardID) (model.CardID, error) {
	if f.submitErr != nil {
		return 0, f.submitErr
	}
	return f.Storage.InsertCardWithPrecedents(ctx, card, beats, losesTo)
}

func (f *flakyStorage) GetOutcome(ctx context.Context, pair model.PairKey) (*model.Outcome, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("database is locked")
	}
	return f.Storage.GetOutcome(ctx, pair)
}

type ControllerSuite struct {
	suite.Suite
	ctx        context.Context
	storage    *flakyStorage
	random     *mocks.MockRandom
	catalog    *catalog.Service
	controller *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = &flakyStorage{Storage: memory.New()}
	s.random = mocks.NewMockRandom()
	clock := mocks.NewMockClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()

	s.catalog = catalog.New(s.storage, passSanitizer{}, noImages{}, clock, s.random, logger)
	s.controller = New(
		seedtoken.New(),
		deal.New(s.catalog, logger),
		ledger.New(s.storage, s.catalog, clock, logger),
		s.catalog,
		s.random,
		RetryPolicy{MaxTries: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
		logger,
	)

	for i := range 5 {
		_, err := s.storage.InsertCard(s.ctx, &model.Card{Name: string(rune('A' + i)), Stats: model.Stats{5, 5, 5, 5}})
		s.Require().NoError(err)
	}
}

func (s *ControllerSuite) TestNewSessionSeedRange() {
	s.random.QueueUint64n(41)
	s.Equal(model.RawSeed(42), s.controller.NewSessionSeed())
	s.Equal(model.RawSeed(1), s.controller.NewSessionSeed())
}

func (s *ControllerSuite) TestNewSession() {
	s.random.QueueUint64n(41)
	token, err := s.controller.NewSession(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(model.SeedToken("Large-Jackson"), token)
}

func (s *ControllerSuite) TestNewSessionValidatesHandSize() {
	_, err := s.controller.NewSession(s.ctx, 0)
	s.ErrorIs(err, model.ErrInvalidHandSize)

	_, err = s.controller.NewSession(s.ctx, 3)
	var insufficient *model.InsufficientCatalogError
	s.Require().ErrorAs(err, &insufficient)
	s.Equal(5, insufficient.Available)
	s.Equal(6, insufficient.Required)
}

func (s *ControllerSuite) TestNewSessionOversizedHand() {
	_, err := s.controller.NewSession(s.ctx, 1<<62)
	var insufficient *model.InsufficientCatalogError
	s.Require().ErrorAs(err, &insufficient)
	s.Equal(5, insufficient.Available)
	s.Equal(math.MaxInt, insufficient.Required)

	_, err = s.controller.DrawSession(s.ctx, 1<<62, "Large-Jackson")
	s.ErrorIs(err, model.ErrInsufficientCatalog)
}

func (s *ControllerSuite) TestDrawSessionIsDeterministic() {
	for range 2 {
		dealt, err := s.controller.DrawSession(s.ctx, 2, "large-jackson")
		s.Require().NoError(err)
		s.Equal(model.RawSeed(42), dealt.Seed)
		s.Equal(model.SeedToken("Large-Jackson"), dealt.Token)
		s.Equal([]model.CardID{4, 2}, dealt.Hand1.IDs())
		s.Equal([]model.CardID{3, 1}, dealt.Hand2.IDs())
	}
}

func (s *ControllerSuite) TestDrawSessionInvalidToken() {
	_, err := s.controller.DrawSession(s.ctx, 2, "Large-Platypus")
	s.ErrorIs(err, model.ErrInvalidSeedToken)
}

func (s *ControllerSuite) TestDrawSessionInsufficientCatalog() {
	_, err := s.controller.DrawSession(s.ctx, 3, "Large-Jackson")
	s.ErrorIs(err, model.ErrInsufficientCatalog)
}

func (s *ControllerSuite) TestVerdictNewPrecedentThenOverruled() {
	verdict, err := s.controller.ResolveVerdict(s.ctx, 1, 2, 1)
	s.Require().NoError(err)
	s.Equal(model.VerdictNewPrecedent, verdict.Kind)
	s.Equal(model.CardID(1), verdict.Outcome.WinnerID)
	s.Equal(model.CardID(2), verdict.Outcome.LoserID)

	verdict, err = s.controller.ResolveVerdict(s.ctx, 1, 2, 2)
	s.Require().NoError(err)
	s.Equal(model.VerdictOverruled, verdict.Kind)
	s.Equal(model.CardID(2), verdict.ClaimedWinner)
	s.Equal(model.CardID(1), verdict.Outcome.WinnerID)

	stored, found, err := s.controller.Precedent(s.ctx, 2, 1)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(model.CardID(1), stored.WinnerID)
	s.Equal(model.CardID(2), stored.LoserID)
}

func (s *ControllerSuite) TestVerdictUpheldEitherOrder() {
	_, err := s.controller.ResolveVerdict(s.ctx, 3, 4, 4)
	s.Require().NoError(err)

	verdict, err := s.controller.ResolveVerdict(s.ctx, 4, 3, 4)
	s.Require().NoError(err)
	s.Equal(model.VerdictUpheld, verdict.Kind)
}

func (s *ControllerSuite) TestVerdictRejectsBadPairs() {
	_, err := s.controller.ResolveVerdict(s.ctx, 1, 1, 1)
	s.ErrorIs(err, model.ErrSelfMatch)

	_, err = s.controller.ResolveVerdict(s.ctx, 1, 2, 3)
	s.ErrorIs(err, model.ErrWinnerNotInPair)

	_, err = s.controller.ResolveVerdict(s.ctx, 1, 99, 1)
	var nonexistent *model.NonexistentCardError
	s.Require().ErrorAs(err, &nonexistent)
	s.Equal([]model.CardID{99}, nonexistent.Missing)
}

func (s *ControllerSuite) TestMatchup() {
	matchup, err := s.controller.Matchup(s.ctx, 1, 2)
	s.Require().NoError(err)
	s.Equal("A", matchup.Card1.Name)
	s.Equal("B", matchup.Card2.Name)
	s.Nil(matchup.Precedent)

	_, err = s.controller.ResolveVerdict(s.ctx, 1, 2, 2)
	s.Require().NoError(err)

	matchup, err = s.controller.Matchup(s.ctx, 1, 2)
	s.Require().NoError(err)
	s.Require().NotNil(matchup.Precedent)
	s.Equal(model.CardID(2), matchup.Precedent.WinnerID)
}

func (s *ControllerSuite) TestMatchupRejectsBadPairs() {
	_, err := s.controller.Matchup(s.ctx, 2, 2)
	s.ErrorIs(err, model.ErrSelfMatch)

	_, err = s.controller.Matchup(s.ctx, 77, 2)
	var nonexistent *model.NonexistentCardError
	s.Require().ErrorAs(err, &nonexistent)
	s.Equal([]model.CardID{77}, nonexistent.Missing)
}

func (s *ControllerSuite) TestSubmitCardSetsPrecedents() {
	seven := 7
	card, err := s.controller.SubmitCard(s.ctx, model.CardDraft{
		Name:  "Spork",
		Stats: [model.StatCount]*int{&seven, nil, nil, nil},
	}, 1, 2)
	s.Require().NoError(err)
	s.Equal(model.CardID(6), card.ID)

	beaten, found, err := s.controller.Precedent(s.ctx, 1, card.ID)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(card.ID, beaten.WinnerID)

	lost, found, err := s.controller.Precedent(s.ctx, card.ID, 2)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(model.CardID(2), lost.WinnerID)
}

func (s *ControllerSuite) TestSubmitCardValidatesReferences() {
	draft := model.CardDraft{Name: "Spork"}

	_, err := s.controller.SubmitCard(s.ctx, draft, 1, 1)
	s.ErrorIs(err, model.ErrSameBeatsAndLoses)

	_, err = s.controller.SubmitCard(s.ctx, draft, 1, 50)
	s.ErrorIs(err, model.ErrNonexistentCard)

	count, err := s.catalog.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(5, count)
}

func (s *ControllerSuite) TestFailedSubmissionLeavesNoCard() {
	s.storage.submitErr = errors.New("disk I/O error")

	_, err := s.controller.SubmitCard(s.ctx, model.CardDraft{Name: "Spork"}, 1, 2)
	s.Require().Error(err)

	count, err := s.catalog.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(5, count)

	s.storage.submitErr = nil
	card, err := s.controller.SubmitCard(s.ctx, model.CardDraft{Name: "Spork"}, 1, 2)
	s.Require().NoError(err)
	_, found, err := s.controller.Precedent(s.ctx, card.ID, 1)
	s.Require().NoError(err)
	s.True(found)
}

func (s *ControllerSuite) TestLedgerFailuresAreRetried() {
	s.storage.failures = 2
	_, found, err := s.controller.Precedent(s.ctx, 1, 2)
	s.Require().NoError(err)
	s.False(found)
	s.Equal(3, s.storage.calls)
}

func (s *ControllerSuite) TestLedgerFailureSurfacesAfterRetries() {
	s.storage.failures = 100
	_, err := s.controller.ResolveVerdict(s.ctx, 1, 2, 1)
	s.ErrorIs(err, model.ErrLedger)
	s.Equal(3, s.storage.calls)
}

func (s *ControllerSuite) TestNonLedgerErrorsAreNotRetried() {
	_, err := s.controller.ResolveVerdict(s.ctx, 1, 42, 1)
	s.ErrorIs(err, model.ErrNonexistentCard)
	s.Equal(1, s.storage.calls)
}
