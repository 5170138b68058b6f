package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"

	"github.com/mcoot/committy/internal/model"
)

//go:embed defaults.toml
var defaultCardsTOML string

// SeedFile is the TOML layout for a list of starter cards
type SeedFile struct {
	Cards []SeedCard `toml:"card"`
}

// SeedCard is one starter card
type SeedCard struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	ImageURL    string `toml:"image_url"`
	Stats       []int  `toml:"stats"`
}

// DefaultSeedCards returns the built-in starter cards
func DefaultSeedCards() ([]SeedCard, error) {
	var file SeedFile
	if _, err := toml.Decode(defaultCardsTOML, &file); err != nil {
		return nil, fmt.Errorf("parse built-in cards: %w", err)
	}
	return file.Cards, nil
}

// LoadSeedCards reads starter cards from a TOML file
func LoadSeedCards(path string) ([]SeedCard, error) {
	var file SeedFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return file.Cards, nil
}

// SeedIfEmpty inserts cards when the catalog has none. Seed cards are trusted:
// they skip moderation and image checks but must still fit the stat budget.
// It returns the number of cards inserted.
func (s *Service) SeedIfEmpty(ctx context.Context, cards []SeedCard) (int, error) {
	count, err := s.storage.CountCards(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	for i, seed := range cards {
		if len(seed.Stats) != model.StatCount {
			return i, fmt.Errorf("seed card %q: want %d stats, got %d", seed.Name, model.StatCount, len(seed.Stats))
		}
		var stats model.Stats
		copy(stats[:], seed.Stats)
		if !stats.Valid() {
			return i, fmt.Errorf("seed card %q: %w", seed.Name, &model.StatBudgetError{Stats: stats})
		}

		card := &model.Card{
			Name:        seed.Name,
			Description: seed.Description,
			ImageURL:    seed.ImageURL,
			Stats:       stats,
			CreatedAt:   s.clock.Now(),
		}
		if _, err := s.storage.InsertCard(ctx, card); err != nil {
			return i, err
		}
	}

	s.logger.Info("seeded empty catalog", slog.Int("cards", len(cards)))
	return len(cards), nil
}
