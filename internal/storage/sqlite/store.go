// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
	"github.com/mcoot/committy/internal/storage/sqlite/migrations"
)

// Config holds SQLite settings
type Config struct {
	// Path is the database file
	Path string

	// BusyTimeout is how long a writer waits on a locked database
	BusyTimeout time.Duration
}

// DefaultConfig returns sensible defaults for SQLite configuration
func DefaultConfig() Config {
	return Config{
		Path:        "committy.db",
		BusyTimeout: 5 * time.Second,
	}
}

// Store persists cards, outcomes and reports in SQLite
type Store struct {
	sqlDB *sql.DB
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations
func Open(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = DefaultConfig().BusyTimeout
	}

	// Write transactions take the lock up front so outcome inserts serialize
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		filepath.Clean(cfg.Path), busy.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Card operations

const cardColumns = "id, name, description, image_url, stat1, stat2, stat3, stat4, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*model.Card, error) {
	var (
		card      model.Card
		createdAt int64
	)
	if err := row.Scan(
		&card.ID,
		&card.Name,
		&card.Description,
		&card.ImageURL,
		&card.Stats[0],
		&card.Stats[1],
		&card.Stats[2],
		&card.Stats[3],
		&createdAt,
	); err != nil {
		return nil, err
	}
	card.CreatedAt = fromMillis(createdAt)
	return &card, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCard(ctx context.Context, e execer, card *model.Card) (model.CardID, error) {
	res, err := e.ExecContext(ctx,
		`INSERT INTO cards (name, description, image_url, stat1, stat2, stat3, stat4, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		card.Name,
		card.Description,
		card.ImageURL,
		card.Stats[0],
		card.Stats[1],
		card.Stats[2],
		card.Stats[3],
		toMillis(card.CreatedAt),
	)
	if err != nil {
		if isConstraint(err, sqlite3lib.SQLITE_CONSTRAINT_CHECK) {
			return 0, &model.StatBudgetError{Stats: card.Stats}
		}
		return 0, fmt.Errorf("insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert card id: %w", err)
	}
	card.ID = model.CardID(id)
	return card.ID, nil
}

func (s *Store) InsertCard(ctx context.Context, card *model.Card) (model.CardID, error) {
	return insertCard(ctx, s.sqlDB, card)
}

// InsertCardWithPrecedents writes the card and both of its outcomes in one
// immediate transaction.
func (s *Store) InsertCardWithPrecedents(ctx context.Context, card *model.Card, beats, losesTo model.CardID) (model.CardID, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin card transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	missing, err := s.missingCards(ctx, tx, beats, losesTo)
	if err != nil {
		return 0, err
	}
	if len(missing) > 0 {
		return 0, &model.NonexistentCardError{Missing: missing}
	}

	if _, err := insertCard(ctx, tx, card); err != nil {
		return 0, err
	}
	for _, outcome := range model.SubmissionPrecedents(card, beats, losesTo) {
		pair := outcome.Pair()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO outcomes (pair_low, pair_high, winner_id, loser_id, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			pair.Low, pair.High, outcome.WinnerID, outcome.LoserID, toMillis(outcome.CreatedAt),
		); err != nil {
			return 0, fmt.Errorf("insert submission outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit card: %w", err)
	}
	return card.ID, nil
}

func (s *Store) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+cardColumns+" FROM cards WHERE id = ?", id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

func (s *Store) GetCards(ctx context.Context, ids []model.CardID) (map[model.CardID]*model.Card, error) {
	result := make(map[model.CardID]*model.Card, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+cardColumns+" FROM cards WHERE id IN ("+strings.Join(placeholders, ", ")+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		result[card.ID] = card
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return result, nil
}

func (s *Store) ListCards(ctx context.Context) ([]*model.Card, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT "+cardColumns+" FROM cards ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []*model.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

func (s *Store) ListCardIDs(ctx context.Context) ([]model.CardID, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT id FROM cards ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list card ids: %w", err)
	}
	defer rows.Close()

	var ids []model.CardID
	for rows.Next() {
		var id model.CardID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card ids: %w", err)
	}
	return ids, nil
}

func (s *Store) CountCards(ctx context.Context) (int, error) {
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM cards").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return count, nil
}

// Outcome operations

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getOutcome(ctx context.Context, q queryer, pair model.PairKey) (*model.Outcome, error) {
	var (
		outcome   model.Outcome
		createdAt int64
	)
	err := q.QueryRowContext(ctx,
		"SELECT winner_id, loser_id, created_at FROM outcomes WHERE pair_low = ? AND pair_high = ?",
		pair.Low, pair.High,
	).Scan(&outcome.WinnerID, &outcome.LoserID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOutcomeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get outcome: %w", err)
	}
	outcome.CreatedAt = fromMillis(createdAt)
	return &outcome, nil
}

func (s *Store) GetOutcome(ctx context.Context, pair model.PairKey) (*model.Outcome, error) {
	return getOutcome(ctx, s.sqlDB, pair)
}

// CreateOutcomeIfAbsent inserts against the (pair_low, pair_high) primary key
// and reads back whatever is stored, all inside one immediate transaction.
func (s *Store) CreateOutcomeIfAbsent(ctx context.Context, outcome *model.Outcome) (*model.Outcome, bool, error) {
	pair := outcome.Pair()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin outcome transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO outcomes (pair_low, pair_high, winner_id, loser_id, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (pair_low, pair_high) DO NOTHING`,
		pair.Low, pair.High, outcome.WinnerID, outcome.LoserID, toMillis(outcome.CreatedAt),
	)
	if err != nil {
		if isConstraint(err, sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY) {
			missing, lookupErr := s.missingCards(ctx, tx, outcome.WinnerID, outcome.LoserID)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			return nil, false, &model.NonexistentCardError{Missing: missing}
		}
		return nil, false, fmt.Errorf("insert outcome: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert outcome rows: %w", err)
	}

	stored, err := getOutcome(ctx, tx, pair)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit outcome: %w", err)
	}
	return stored, inserted == 1, nil
}

func (s *Store) missingCards(ctx context.Context, q queryer, ids ...model.CardID) ([]model.CardID, error) {
	var missing []model.CardID
	for _, id := range ids {
		var found int
		err := q.QueryRowContext(ctx, "SELECT 1 FROM cards WHERE id = ?", id).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("check card %d: %w", id, err)
		}
	}
	return missing, nil
}

// Report operations

func (s *Store) SaveReport(ctx context.Context, report *model.Report) (model.ReportID, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO reports (card_id, created_at) VALUES (?, ?)",
		report.CardID, toMillis(report.CreatedAt),
	)
	if err != nil {
		if isConstraint(err, sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY) {
			return 0, model.ErrCardNotFound
		}
		return 0, fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert report id: %w", err)
	}
	report.ID = model.ReportID(id)
	return report.ID, nil
}

func (s *Store) GetReport(ctx context.Context, id model.ReportID) (*model.Report, error) {
	var (
		report    model.Report
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, card_id, created_at FROM reports WHERE id = ?", id,
	).Scan(&report.ID, &report.CardID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	report.CreatedAt = fromMillis(createdAt)
	return &report, nil
}

func (s *Store) ListReports(ctx context.Context) ([]*model.Report, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT id, card_id, created_at FROM reports ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []*model.Report{}
	for rows.Next() {
		var (
			report    model.Report
			createdAt int64
		)
		if err := rows.Scan(&report.ID, &report.CardID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		report.CreatedAt = fromMillis(createdAt)
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func (s *Store) DeleteReport(ctx context.Context, id model.ReportID) error {
	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete report rows: %w", err)
	}
	if n == 0 {
		return model.ErrReportNotFound
	}
	return nil
}

func (s *Store) DeleteReportsForCard(ctx context.Context, cardID model.CardID) (int, error) {
	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM reports WHERE card_id = ?", cardID)
	if err != nil {
		return 0, fmt.Errorf("delete reports for card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete reports for card rows: %w", err)
	}
	return int(n), nil
}

func isConstraint(err error, code int) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == code
}
