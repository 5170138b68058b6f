package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
	"github.com/mcoot/committy/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage { return New() }
	suite.Run(t, s)
}

func (s *StorageSuite) TestReturnedCardsAreCopies() {
	card := &model.Card{Name: "original", Stats: model.Stats{1, 1, 1, 1}}
	id, err := s.Storage.InsertCard(s.Ctx, card)
	s.Require().NoError(err)

	card.Name = "mutated"
	got, err := s.Storage.GetCard(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal("original", got.Name)

	got.Name = "mutated again"
	again, err := s.Storage.GetCard(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal("original", again.Name)
}
