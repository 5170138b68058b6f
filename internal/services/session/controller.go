// Package session composes the codec, dealer, ledger and catalog into the
// operations a player performs: drawing a session, viewing a matchup,
// judging it and submitting new cards.
package session

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/mcoot/committy/internal/dependencies/random"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/catalog"
	"github.com/mcoot/committy/internal/services/deal"
	"github.com/mcoot/committy/internal/services/ledger"
	"github.com/mcoot/committy/internal/services/seedtoken"
)

// RetryPolicy bounds how ledger failures are retried
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used by the server
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:        4,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	return b
}

// Controller is the session orchestrator
type Controller struct {
	codec   *seedtoken.Codec
	dealer  *deal.Service
	ledger  *ledger.Service
	catalog *catalog.Service
	random  random.Random
	retry   RetryPolicy
	logger  *slog.Logger
}

// New creates a new session Controller
func New(
	codec *seedtoken.Codec,
	dealer *deal.Service,
	ledger *ledger.Service,
	catalog *catalog.Service,
	random random.Random,
	retry RetryPolicy,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		codec:   codec,
		dealer:  dealer,
		ledger:  ledger,
		catalog: catalog,
		random:  random,
		retry:   retry,
		logger:  logger,
	}
}

// NewSessionSeed returns a fresh seed in [1, 2^32-1]. Zero is excluded
// because it encodes to the empty token.
func (c *Controller) NewSessionSeed() model.RawSeed {
	return model.RawSeed(1 + c.random.Uint64n(math.MaxUint32))
}

// NewSession picks a seed for a session with the given hand size and returns
// its token. It fails early when the catalog cannot fill both hands.
func (c *Controller) NewSession(ctx context.Context, handSize int) (model.SeedToken, error) {
	if handSize < 1 {
		return "", model.ErrInvalidHandSize
	}
	count, err := c.catalog.Count(ctx)
	if err != nil {
		return "", err
	}
	if !model.HandsFit(count, handSize) {
		return "", &model.InsufficientCatalogError{Available: count, Required: model.CardsForHands(handSize)}
	}

	seed := c.NewSessionSeed()
	token := c.codec.Encode(seed)
	c.logger.Info("session created",
		slog.String("token", string(token)),
		slog.Int("hand_size", handSize),
	)
	return token, nil
}

// DrawSession decodes token and deals both hands from the current catalog
func (c *Controller) DrawSession(ctx context.Context, handSize int, token model.SeedToken) (*model.Deal, error) {
	seed, err := c.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	hand1, hand2, err := c.dealer.Deal(ctx, handSize, seed)
	if err != nil {
		return nil, err
	}

	return &model.Deal{
		Token:    c.codec.Encode(seed),
		Seed:     seed,
		HandSize: handSize,
		Hand1:    hand1,
		Hand2:    hand2,
	}, nil
}

// Matchup returns both cards and their precedent, if one has been set
func (c *Controller) Matchup(ctx context.Context, c1, c2 model.CardID) (*model.Matchup, error) {
	if c1 == c2 {
		return nil, model.ErrSelfMatch
	}

	cards, err := c.catalog.FetchByIDs(ctx, []model.CardID{c1, c2})
	if err != nil {
		return nil, err
	}
	var missing []model.CardID
	for _, id := range []model.CardID{c1, c2} {
		if _, ok := cards[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &model.NonexistentCardError{Missing: missing}
	}

	precedent, _, err := c.Precedent(ctx, c1, c2)
	if err != nil {
		return nil, err
	}
	return &model.Matchup{Card1: cards[c1], Card2: cards[c2], Precedent: precedent}, nil
}

// Precedent looks up the stored outcome for {c1, c2}, retrying ledger failures
func (c *Controller) Precedent(ctx context.Context, c1, c2 model.CardID) (*model.Outcome, bool, error) {
	outcome, err := withRetry(ctx, c.retry, func() (*model.Outcome, error) {
		outcome, _, err := c.ledger.Lookup(ctx, c1, c2)
		return outcome, err
	})
	if err != nil {
		return nil, false, err
	}
	return outcome, outcome != nil, nil
}

// ResolveVerdict judges the pair {c1, c2} in favour of claimed. The first
// judgement of a pair becomes its precedent; later ones are upheld or
// overruled against it and never change it.
func (c *Controller) ResolveVerdict(ctx context.Context, c1, c2, claimed model.CardID) (*model.Verdict, error) {
	if c1 == c2 {
		return nil, model.ErrSelfMatch
	}
	var loser model.CardID
	switch claimed {
	case c1:
		loser = c2
	case c2:
		loser = c1
	default:
		return nil, model.ErrWinnerNotInPair
	}

	existing, found, err := c.Precedent(ctx, c1, c2)
	if err != nil {
		return nil, err
	}
	if found {
		return judge(existing, claimed), nil
	}

	result, err := withRetry(ctx, c.retry, func() (ledger.RecordResult, error) {
		return c.ledger.RecordIfAbsent(ctx, claimed, loser)
	})
	if err != nil {
		return nil, err
	}
	if !result.Created {
		// Another verdict for the pair landed between lookup and record
		return judge(result.Outcome, claimed), nil
	}
	return &model.Verdict{
		Kind:          model.VerdictNewPrecedent,
		ClaimedWinner: claimed,
		Outcome:       result.Outcome,
	}, nil
}

func judge(stored *model.Outcome, claimed model.CardID) *model.Verdict {
	kind := model.VerdictOverruled
	if stored.WinnerID == claimed {
		kind = model.VerdictUpheld
	}
	return &model.Verdict{Kind: kind, ClaimedWinner: claimed, Outcome: stored}
}

// SubmitCard admits a new card and sets its first two precedents: it beats
// the card beats and loses to the card losesTo. The card and both precedents
// are stored together or not at all.
func (c *Controller) SubmitCard(ctx context.Context, draft model.CardDraft, beats, losesTo model.CardID) (*model.Card, error) {
	if beats == losesTo {
		return nil, model.ErrSameBeatsAndLoses
	}
	if err := c.catalog.RequireAll(ctx, beats, losesTo); err != nil {
		return nil, err
	}
	return c.catalog.AdmitWithPrecedents(ctx, draft, beats, losesTo)
}

// withRetry runs op, retrying only ledger failures
func withRetry[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	operation := func() (T, error) {
		v, err := op()
		if err != nil && !errors.Is(err, model.ErrLedger) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	return backoff.Retry(ctx, backoff.Operation[T](operation),
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(policy.MaxTries),
	)
}
