package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
	"github.com/mcoot/committy/internal/storage/storagetest"
)

type StoreSuite struct {
	storagetest.Suite
	path string
}

func TestStoreSuite(t *testing.T) {
	s := new(StoreSuite)
	s.NewStorage = func() storage.Storage {
		s.path = filepath.Join(s.T().TempDir(), "committy.db")
		cfg := DefaultConfig()
		cfg.Path = s.path
		store, err := Open(cfg)
		require.NoError(s.T(), err)
		return store
	}
	suite.Run(t, s)
}

func (s *StoreSuite) TestRejectsStatsOutsideBudget() {
	_, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "greedy", Stats: model.Stats{10, 10, 2, -1}})
	s.ErrorIs(err, model.ErrStatBudget)

	count, err := s.Storage.CountCards(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *StoreSuite) TestCardWithPrecedentsRollsBackAsOne() {
	a, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "a", Stats: model.Stats{1, 1, 1, 1}})
	s.Require().NoError(err)
	b, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "b", Stats: model.Stats{1, 1, 1, 1}})
	s.Require().NoError(err)

	_, err = s.Storage.InsertCardWithPrecedents(s.Ctx, &model.Card{Name: "greedy", Stats: model.Stats{10, 10, 10, 10}}, a, b)
	s.ErrorIs(err, model.ErrStatBudget)

	count, err := s.Storage.CountCards(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	var outcomes int
	s.Require().NoError(s.Storage.(*Store).sqlDB.QueryRowContext(s.Ctx, "SELECT COUNT(*) FROM outcomes").Scan(&outcomes))
	s.Equal(0, outcomes)
}

func (s *StoreSuite) TestReopenKeepsDataAndSkipsAppliedMigrations() {
	id, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "kept", Stats: model.Stats{1, 2, 3, 4}})
	s.Require().NoError(err)
	s.Require().NoError(s.Storage.Close())

	cfg := DefaultConfig()
	cfg.Path = s.path
	reopened, err := Open(cfg)
	s.Require().NoError(err)
	s.Storage = reopened

	card, err := reopened.GetCard(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal("kept", card.Name)
}

func (s *StoreSuite) TestMissingCardsNamesEachID() {
	a, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "a", Stats: model.Stats{1, 1, 1, 1}})
	s.Require().NoError(err)

	_, _, err = s.Storage.CreateOutcomeIfAbsent(s.Ctx, &model.Outcome{WinnerID: 500, LoserID: a})
	var nonexistent *model.NonexistentCardError
	s.Require().ErrorAs(err, &nonexistent)
	s.Equal([]model.CardID{500}, nonexistent.Missing)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}

func TestUpSection(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	require.Equal(t, "\nCREATE TABLE a (id INTEGER);\n", upSection(content))
	require.Equal(t, "SELECT 1;", upSection("SELECT 1;"))
}

func TestMigrationsRecorded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "committy.db")
	store, err := Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	var name string
	err = store.sqlDB.QueryRowContext(context.Background(), "SELECT name FROM "+migrationTable).Scan(&name)
	require.NoError(t, err)
	require.Equal(t, "001_init.sql", name)
}
