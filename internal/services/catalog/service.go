// Package catalog owns the set of admitted cards.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mcoot/committy/internal/dependencies/clock"
	"github.com/mcoot/committy/internal/dependencies/random"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/stats"
	"github.com/mcoot/committy/internal/storage"
)

// Sanitizer screens user text. It returns ErrInappropriateText for text that
// must not be published.
type Sanitizer interface {
	Sanitize(text string) (string, error)
}

// ImageResolver turns a submitted URL into a usable image reference, or ""
// when the URL does not point at an image.
type ImageResolver interface {
	Resolve(ctx context.Context, url string) string
}

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// Service provides catalog reads and card admission
type Service struct {
	storage   storage.Storage
	sanitizer Sanitizer
	images    ImageResolver
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// New creates a new catalog Service
func New(
	storage storage.Storage,
	sanitizer Sanitizer,
	images ImageResolver,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   storage,
		sanitizer: sanitizer,
		images:    images,
		clock:     clock,
		random:    random,
		logger:    logger,
	}
}

// ListIDs returns every card ID in catalog order
func (s *Service) ListIDs(ctx context.Context) ([]model.CardID, error) {
	return s.storage.ListCardIDs(ctx)
}

// All returns every card in catalog order
func (s *Service) All(ctx context.Context) ([]*model.Card, error) {
	return s.storage.ListCards(ctx)
}

// Get returns a single card
func (s *Service) Get(ctx context.Context, id model.CardID) (*model.Card, error) {
	return s.storage.GetCard(ctx, id)
}

// Count returns the number of cards in the catalog
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.storage.CountCards(ctx)
}

// FetchByIDs returns the cards that exist among ids, keyed by ID. The map
// carries no order; callers that need one must impose it.
func (s *Service) FetchByIDs(ctx context.Context, ids []model.CardID) (map[model.CardID]*model.Card, error) {
	return s.storage.GetCards(ctx, ids)
}

// ExistsAll returns which of ids exist, in the order given, and whether all do
func (s *Service) ExistsAll(ctx context.Context, ids ...model.CardID) ([]model.CardID, bool, error) {
	cards, err := s.storage.GetCards(ctx, ids)
	if err != nil {
		return nil, false, err
	}

	existing := make([]model.CardID, 0, len(ids))
	allExist := true
	seen := make(map[model.CardID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := cards[id]; ok {
			existing = append(existing, id)
		} else {
			allExist = false
		}
	}
	return existing, allExist, nil
}

// RequireAll returns a NonexistentCardError naming any of ids that do not exist
func (s *Service) RequireAll(ctx context.Context, ids ...model.CardID) error {
	existing, allExist, err := s.ExistsAll(ctx, ids...)
	if err != nil {
		return err
	}
	if allExist {
		return nil
	}

	found := make(map[model.CardID]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}
	var missing []model.CardID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
			found[id] = true
		}
	}
	return &model.NonexistentCardError{Missing: missing}
}

// RandomCards picks n distinct cards, none of them in except
func (s *Service) RandomCards(ctx context.Context, n int, except ...model.CardID) ([]*model.Card, error) {
	if n < 1 {
		return nil, model.ErrInvalidHandSize
	}

	ids, err := s.storage.ListCardIDs(ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[model.CardID]bool, len(except))
	for _, id := range except {
		excluded[id] = true
	}
	pool := make([]model.CardID, 0, len(ids))
	for _, id := range ids {
		if !excluded[id] {
			pool = append(pool, id)
		}
	}
	if len(pool) < n {
		return nil, &model.InsufficientCatalogError{Available: len(pool), Required: n}
	}

	for i := 0; i < n; i++ {
		j := i + s.random.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	picked := pool[:n]

	cards, err := s.storage.GetCards(ctx, picked)
	if err != nil {
		return nil, err
	}
	result := make([]*model.Card, 0, n)
	for _, id := range picked {
		if card, ok := cards[id]; ok {
			result = append(result, card)
		}
	}
	return result, nil
}

// Admit validates, cleans and stores a new card.
//
// Stats are normalized first and must then satisfy the card invariant. Name
// and description have line breaks collapsed, are trimmed and truncated, and
// must pass the sanitizer. An image URL that does not resolve to an image is
// dropped rather than rejected.
func (s *Service) Admit(ctx context.Context, draft model.CardDraft) (*model.Card, error) {
	card, err := s.prepare(ctx, draft)
	if err != nil {
		return nil, err
	}
	if _, err := s.storage.InsertCard(ctx, card); err != nil {
		s.logger.Error("failed to insert card",
			slog.String("name", card.Name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.logAdmitted(card)
	return card, nil
}

// AdmitWithPrecedents validates and cleans draft like Admit, then stores the
// card together with its first two precedents: it beats beats and loses to
// losesTo. Either all three records are stored or none are.
func (s *Service) AdmitWithPrecedents(ctx context.Context, draft model.CardDraft, beats, losesTo model.CardID) (*model.Card, error) {
	card, err := s.prepare(ctx, draft)
	if err != nil {
		return nil, err
	}
	if _, err := s.storage.InsertCardWithPrecedents(ctx, card, beats, losesTo); err != nil {
		s.logger.Error("failed to insert card with precedents",
			slog.String("name", card.Name),
			slog.Int64("beats", int64(beats)),
			slog.Int64("loses_to", int64(losesTo)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.logAdmitted(card)
	return card, nil
}

func (s *Service) prepare(ctx context.Context, draft model.CardDraft) (*model.Card, error) {
	cardStats := stats.NormalizeInput(draft.Stats)
	if !cardStats.Valid() {
		return nil, &model.StatBudgetError{Stats: cardStats}
	}

	name := cleanText(draft.Name, model.MaxNameLength)
	if name == "" {
		return nil, model.ErrCardNameRequired
	}
	description := cleanText(draft.Description, model.MaxDescriptionLength)

	name, err := s.sanitize("title", name)
	if err != nil {
		return nil, err
	}
	if description != "" {
		description, err = s.sanitize("description", description)
		if err != nil {
			return nil, err
		}
	}

	imageURL := truncate(strings.TrimSpace(draft.ImageURL), model.MaxImageURLLength)
	if imageURL != "" {
		imageURL = s.images.Resolve(ctx, imageURL)
	}

	return &model.Card{
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Stats:       cardStats,
		CreatedAt:   s.clock.Now(),
	}, nil
}

func (s *Service) logAdmitted(card *model.Card) {
	s.logger.Info("card admitted",
		slog.Int64("card_id", int64(card.ID)),
		slog.String("name", card.Name),
		slog.Bool("has_image", card.ImageURL != ""),
	)
}

func (s *Service) sanitize(field, text string) (string, error) {
	clean, err := s.sanitizer.Sanitize(text)
	if errors.Is(err, model.ErrInappropriateText) {
		return "", &model.InappropriateTextError{Field: field}
	}
	if err != nil {
		return "", fmt.Errorf("sanitize %s: %w", field, err)
	}
	return clean, nil
}

func cleanText(text string, limit int) string {
	text = lineBreaks.ReplaceAllString(text, " ")
	return strings.TrimSpace(truncate(strings.TrimSpace(text), limit))
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
