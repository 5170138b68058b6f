// Package report handles player reports against cards and their admin review.
package report

import (
	"context"
	"log/slog"

	"github.com/mcoot/committy/internal/dependencies/clock"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/storage"
)

// Service files and reviews reports
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new report Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Report flags a card for review. The card must exist.
func (s *Service) Report(ctx context.Context, cardID model.CardID) (*model.Report, error) {
	report := &model.Report{
		CardID:    cardID,
		CreatedAt: s.clock.Now(),
	}
	if _, err := s.storage.SaveReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("card reported",
		slog.Int64("report_id", int64(report.ID)),
		slog.Int64("card_id", int64(cardID)),
	)
	return report, nil
}

// List returns every open report, oldest first
func (s *Service) List(ctx context.Context) ([]*model.Report, error) {
	return s.storage.ListReports(ctx)
}

// Get returns a single report
func (s *Service) Get(ctx context.Context, id model.ReportID) (*model.Report, error) {
	return s.storage.GetReport(ctx, id)
}

// Dismiss removes a single report
func (s *Service) Dismiss(ctx context.Context, id model.ReportID) error {
	if err := s.storage.DeleteReport(ctx, id); err != nil {
		return err
	}
	s.logger.Info("report dismissed", slog.Int64("report_id", int64(id)))
	return nil
}

// DismissForCard removes every report against a card and returns how many
// were removed
func (s *Service) DismissForCard(ctx context.Context, cardID model.CardID) (int, error) {
	n, err := s.storage.DeleteReportsForCard(ctx, cardID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("reports cleared",
		slog.Int64("card_id", int64(cardID)),
		slog.Int("count", n),
	)
	return n, nil
}
