package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
	"github.com/mcoot/committy/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		return NewWithClient(client, DefaultConfig())
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestOutcomeStoredUnderCanonicalPairKey() {
	a, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "a", Stats: model.Stats{1, 1, 1, 1}})
	s.Require().NoError(err)
	b, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "b", Stats: model.Stats{1, 1, 1, 1}})
	s.Require().NoError(err)

	_, _, err = s.Storage.CreateOutcomeIfAbsent(s.Ctx, &model.Outcome{WinnerID: b, LoserID: a})
	s.Require().NoError(err)

	s.True(s.mini.Exists("committy:outcome:1:2"))
	s.False(s.mini.Exists("committy:outcome:2:1"))
}

func (s *StorageSuite) TestCardIndexTracksInserts() {
	for range 3 {
		_, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "x", Stats: model.Stats{1, 1, 1, 1}})
		s.Require().NoError(err)
	}

	members, err := s.mini.ZMembers("committy:idx:cards")
	s.Require().NoError(err)
	s.Equal([]string{"1", "2", "3"}, members)
}

func (s *StorageSuite) TestReportsForCardIndexCleared() {
	id, err := s.Storage.InsertCard(s.Ctx, &model.Card{Name: "a", Stats: model.Stats{1, 1, 1, 1}})
	s.Require().NoError(err)
	_, err = s.Storage.SaveReport(s.Ctx, &model.Report{CardID: id})
	s.Require().NoError(err)
	s.True(s.mini.Exists("committy:idx:reports_for_card:1"))

	_, err = s.Storage.DeleteReportsForCard(s.Ctx, id)
	s.Require().NoError(err)
	s.False(s.mini.Exists("committy:idx:reports_for_card:1"))
}
