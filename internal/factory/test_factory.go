package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/committy/internal/dependencies/mocks"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/auth"
	"github.com/mcoot/committy/internal/services/moderation"
	"github.com/mcoot/committy/internal/services/seedtoken"
	"github.com/mcoot/committy/internal/services/session"
	"github.com/mcoot/committy/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Images are checked by extension only and ledger retries do not sleep.
func NewTestApp() *TestApp {
	return NewTestAppWithAuth(auth.Config{})
}

// NewTestAppWithAuth is NewTestApp with admin access configured
func NewTestAppWithAuth(authCfg auth.Config) *TestApp {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(dependencies{
		store:  memory.New(),
		clock:  mockClock,
		random: mockRandom,
		codec:  seedtoken.New(),
		filter: moderation.NewDefaultFilter(logger),
		images: moderation.ExtensionImageResolver{},
		auth:   authCfg,
		retry:  session.RetryPolicy{MaxTries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
		logger: logger,
	})

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// AddCards admits one plain card per name and returns their IDs
func (t *TestApp) AddCards(names ...string) ([]model.CardID, error) {
	ids := make([]model.CardID, 0, len(names))
	for _, name := range names {
		card, err := t.CatalogService.Admit(context.Background(), model.CardDraft{Name: name})
		if err != nil {
			return nil, err
		}
		ids = append(ids, card.ID)
	}
	return ids, nil
}
