package alerts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
)

const dedupeWindow = 30 * time.Minute

// Service records stock notifications. Writing the alert document is the
// trigger contract; delivery to staff happens out of band.
type Service struct {
	store  mongodb.AlertStore
	dedupe *dedupeCache
	logger *zap.Logger
}

// NewService constructs the alert recorder.
func NewService(store mongodb.AlertStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		dedupe: newDedupeCache(dedupeWindow),
		logger: logger,
	}
}

// StockUnavailable records that a sale named produce with no ledger record.
func (s *Service) StockUnavailable(ctx context.Context, produceName, branch string) error {
	subject := fmt.Sprintf("unavailable|%s|%s", produceName, branch)
	if !s.dedupe.shouldEmit(subject) {
		return nil
	}

	return s.write(ctx, models.StockAlert{
		Kind:        models.AlertStockUnavailable,
		ProduceName: produceName,
		Branch:      branch,
		Message:     fmt.Sprintf("%s is not stocked at %s", produceName, branch),
	})
}

// LowStockBlock records a sale refused for insufficient stock.
func (s *Service) LowStockBlock(ctx context.Context, key models.LedgerKey, requestedKg, availableKg float64) error {
	subject := fmt.Sprintf("low|%s|%s|%s", key.ProduceName, key.ProduceType, key.Branch)
	if !s.dedupe.shouldEmit(subject) {
		return nil
	}

	return s.write(ctx, models.StockAlert{
		Kind:        models.AlertLowStockBlock,
		ProduceName: key.ProduceName,
		ProduceType: key.ProduceType,
		Branch:      key.Branch,
		QuantityKg:  availableKg,
		Message: fmt.Sprintf("sale of %.2f kg %s/%s blocked at %s; only %.2f kg left",
			requestedKg, key.ProduceName, key.ProduceType, key.Branch, availableKg),
	})
}

// OutOfStock records that an adjustment drove a counter to exactly zero.
func (s *Service) OutOfStock(ctx context.Context, key models.LedgerKey) error {
	subject := fmt.Sprintf("out|%s|%s|%s", key.ProduceName, key.ProduceType, key.Branch)
	if !s.dedupe.shouldEmit(subject) {
		return nil
	}

	return s.write(ctx, models.StockAlert{
		Kind:        models.AlertOutOfStock,
		ProduceName: key.ProduceName,
		ProduceType: key.ProduceType,
		Branch:      key.Branch,
		Message: fmt.Sprintf("%s/%s is out of stock at %s",
			key.ProduceName, key.ProduceType, key.Branch),
	})
}

func (s *Service) write(ctx context.Context, alert models.StockAlert) error {
	if _, err := s.store.Insert(ctx, alert); err != nil {
		return err
	}

	s.logger.Info("stock alert recorded",
		zap.String("kind", string(alert.Kind)),
		zap.String("produce", alert.ProduceName),
		zap.String("branch", alert.Branch))

	return nil
}
