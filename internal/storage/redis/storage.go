package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Card operations

func (s *Storage) InsertCard(ctx context.Context, card *model.Card) (model.CardID, error) {
	next, err := s.client.Incr(ctx, cardSeqKey()).Result()
	if err != nil {
		return 0, err
	}
	card.ID = model.CardID(next)

	data, err := json.Marshal(card)
	if err != nil {
		return 0, err
	}

	// Card and index land together so ListCardIDs never sees a dangling ID
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, cardKey(card.ID), data, 0)
		pipe.ZAdd(ctx, cardIndexKey(), redis.Z{Score: float64(card.ID), Member: strconv.FormatInt(next, 10)})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return card.ID, nil
}

// InsertCardWithPrecedents writes the card, its index entry and both of its
// outcomes in one MULTI. The outcome pairs involve a fresh ID, so nothing can
// already be stored under them.
func (s *Storage) InsertCardWithPrecedents(ctx context.Context, card *model.Card, beats, losesTo model.CardID) (model.CardID, error) {
	missing, err := s.missingCards(ctx, beats, losesTo)
	if err != nil {
		return 0, err
	}
	if len(missing) > 0 {
		return 0, &model.NonexistentCardError{Missing: missing}
	}

	next, err := s.client.Incr(ctx, cardSeqKey()).Result()
	if err != nil {
		return 0, err
	}
	card.ID = model.CardID(next)

	data, err := json.Marshal(card)
	if err != nil {
		return 0, err
	}
	outcomes := model.SubmissionPrecedents(card, beats, losesTo)
	encoded := make([][]byte, len(outcomes))
	for i, outcome := range outcomes {
		if encoded[i], err = json.Marshal(outcome); err != nil {
			return 0, err
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, cardKey(card.ID), data, 0)
		pipe.ZAdd(ctx, cardIndexKey(), redis.Z{Score: float64(card.ID), Member: strconv.FormatInt(next, 10)})
		for i, outcome := range outcomes {
			pipe.SetNX(ctx, outcomeKey(outcome.Pair()), encoded[i], 0)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return card.ID, nil
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	data, err := s.client.Get(ctx, cardKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCardNotFound
		}
		return nil, err
	}

	var card model.Card
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *Storage) GetCards(ctx context.Context, ids []model.CardID) (map[model.CardID]*model.Card, error) {
	result := make(map[model.CardID]*model.Card, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cardKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // missing key
		}
		var card model.Card
		if err := json.Unmarshal([]byte(raw), &card); err != nil {
			return nil, err
		}
		result[card.ID] = &card
	}
	return result, nil
}

func (s *Storage) ListCards(ctx context.Context) ([]*model.Card, error) {
	ids, err := s.ListCardIDs(ctx)
	if err != nil {
		return nil, err
	}
	byID, err := s.GetCards(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]*model.Card, 0, len(ids))
	for _, id := range ids {
		if card, ok := byID[id]; ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (s *Storage) ListCardIDs(ctx context.Context) ([]model.CardID, error) {
	members, err := s.client.ZRange(ctx, cardIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return parseIDs[model.CardID](members)
}

func (s *Storage) CountCards(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, cardIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Outcome operations

func (s *Storage) GetOutcome(ctx context.Context, pair model.PairKey) (*model.Outcome, error) {
	data, err := s.client.Get(ctx, outcomeKey(pair)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrOutcomeNotFound
		}
		return nil, err
	}

	var outcome model.Outcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// CreateOutcomeIfAbsent relies on SETNX against the canonical pair key, so
// concurrent callers racing on a fresh pair cannot both write.
func (s *Storage) CreateOutcomeIfAbsent(ctx context.Context, outcome *model.Outcome) (*model.Outcome, bool, error) {
	missing, err := s.missingCards(ctx, outcome.WinnerID, outcome.LoserID)
	if err != nil {
		return nil, false, err
	}
	if len(missing) > 0 {
		return nil, false, &model.NonexistentCardError{Missing: missing}
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return nil, false, err
	}

	set, err := s.client.SetNX(ctx, outcomeKey(outcome.Pair()), data, 0).Result()
	if err != nil {
		return nil, false, err
	}
	if set {
		stored := *outcome
		return &stored, true, nil
	}

	existing, err := s.GetOutcome(ctx, outcome.Pair())
	if err != nil {
		return nil, false, fmt.Errorf("read existing outcome: %w", err)
	}
	return existing, false, nil
}

func (s *Storage) missingCards(ctx context.Context, ids ...model.CardID) ([]model.CardID, error) {
	cmds := make([]*redis.IntCmd, len(ids))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.Exists(ctx, cardKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var missing []model.CardID
	for i, cmd := range cmds {
		if cmd.Val() == 0 {
			missing = append(missing, ids[i])
		}
	}
	return missing, nil
}

// Report operations

func (s *Storage) SaveReport(ctx context.Context, report *model.Report) (model.ReportID, error) {
	missing, err := s.missingCards(ctx, report.CardID)
	if err != nil {
		return 0, err
	}
	if len(missing) > 0 {
		return 0, model.ErrCardNotFound
	}

	next, err := s.client.Incr(ctx, reportSeqKey()).Result()
	if err != nil {
		return 0, err
	}
	report.ID = model.ReportID(next)

	data, err := json.Marshal(report)
	if err != nil {
		return 0, err
	}

	member := strconv.FormatInt(next, 10)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, reportKey(report.ID), data, 0)
		pipe.ZAdd(ctx, reportIndexKey(), redis.Z{Score: float64(next), Member: member})
		pipe.SAdd(ctx, reportsForCardIndexKey(report.CardID), member)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return report.ID, nil
}

func (s *Storage) GetReport(ctx context.Context, id model.ReportID) (*model.Report, error) {
	data, err := s.client.Get(ctx, reportKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrReportNotFound
		}
		return nil, err
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Storage) ListReports(ctx context.Context) ([]*model.Report, error) {
	members, err := s.client.ZRange(ctx, reportIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []*model.Report{}, nil
	}

	ids, err := parseIDs[model.ReportID](members)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = reportKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	reports := make([]*model.Report, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var report model.Report
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}
	return reports, nil
}

func (s *Storage) DeleteReport(ctx context.Context, id model.ReportID) error {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}

	member := strconv.FormatInt(int64(id), 10)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, reportKey(id))
		pipe.ZRem(ctx, reportIndexKey(), member)
		pipe.SRem(ctx, reportsForCardIndexKey(report.CardID), member)
		return nil
	})
	return err
}

func (s *Storage) DeleteReportsForCard(ctx context.Context, cardID model.CardID) (int, error) {
	members, err := s.client.SMembers(ctx, reportsForCardIndexKey(cardID)).Result()
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}

	ids, err := parseIDs[model.ReportID](members)
	if err != nil {
		return 0, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, reportKey(id))
		}
		zmembers := make([]any, len(members))
		for i, m := range members {
			zmembers[i] = m
		}
		pipe.ZRem(ctx, reportIndexKey(), zmembers...)
		pipe.Del(ctx, reportsForCardIndexKey(cardID))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func parseIDs[T ~int64](members []string) ([]T, error) {
	ids := make([]T, len(members))
	for i, m := range members {
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", m, err)
		}
		ids[i] = T(n)
	}
	return ids, nil
}
