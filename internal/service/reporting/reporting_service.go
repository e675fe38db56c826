package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/repository/sheets"
)

const (
	dateLayout      = "2006-01-02"
	stockWriteRange = "Stock!A:G"
)

// Service builds branch stock summaries from the ledger and exports them.
type Service struct {
	ledger mongodb.LedgerStore
	sheets sheets.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(ledger mongodb.LedgerStore, sheetsRepo sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger: ledger,
		sheets: sheetsRepo,
		logger: logger,
		now:    time.Now,
	}
}

// BranchReport summarizes the current ledger state of one branch.
func (s *Service) BranchReport(ctx context.Context, branch string) (models.BranchStockReport, error) {
	records, err := s.ledger.ListByBranch(ctx, branch)
	if err != nil {
		return models.BranchStockReport{}, fmt.Errorf("load branch ledger: %w", err)
	}

	report := models.BranchStockReport{
		Branch:      branch,
		GeneratedAt: s.now().UTC(),
		Lines:       make([]models.StockReportLine, 0, len(records)),
	}

	for _, record := range records {
		value := record.QuantityKg * record.UnitPrice
		report.Lines = append(report.Lines, models.StockReportLine{
			ProduceName: record.ProduceName,
			ProduceType: record.ProduceType,
			QuantityKg:  record.QuantityKg,
			UnitPrice:   record.UnitPrice,
			StockValue:  value,
		})
		report.TotalValue += value
	}

	return report, nil
}

// ExportDailyReport appends every branch's current stock positions to the
// spreadsheet, one row per ledger key.
func (s *Service) ExportDailyReport(ctx context.Context) error {
	if s.sheets == nil {
		s.logger.Debug("sheets export not configured, skipping")
		return nil
	}

	branches, err := s.ledger.Branches(ctx)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	date := s.now().UTC().Format(dateLayout)
	for _, branch := range branches {
		report, err := s.BranchReport(ctx, branch)
		if err != nil {
			return err
		}

		for _, line := range report.Lines {
			row := []interface{}{
				date,
				branch,
				line.ProduceName,
				line.ProduceType,
				line.QuantityKg,
				line.UnitPrice,
				line.StockValue,
			}
			if err := s.sheets.WriteRow(ctx, stockWriteRange, row); err != nil {
				return fmt.Errorf("export stock row for %s: %w", branch, err)
			}
		}

		s.logger.Info("branch stock exported",
			zap.String("branch", branch),
			zap.Int("positions", len(report.Lines)),
			zap.Float64("total_value", report.TotalValue))
	}

	return nil
}
