package stock

import (
	"context"

	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
)

// Compensation reverses a previously applied stock adjustment: equal and
// opposite delta, restoring the prior unit price when one was overridden.
type Compensation func(ctx context.Context) error

// Engine performs guarded stock adjustments and hands back the compensating
// operation for each one. Composite workflows apply several adjustments in
// sequence and, when a later step fails, run the compensations of the
// succeeded steps in reverse order before surfacing the error. This is a
// best-effort saga rather than a transaction: a crash between an adjustment
// and its compensation leaves the ledger and the event log inconsistent until
// manually reconciled.
type Engine struct {
	ledger mongodb.LedgerStore
	logger *zap.Logger
}

// NewEngine wires a mutation engine over the ledger store.
func NewEngine(ledger mongodb.LedgerStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{ledger: ledger, logger: logger}
}

// Apply performs one guarded adjustment. On success it returns the
// post-adjustment record together with the closure that undoes it.
func (e *Engine) Apply(ctx context.Context, key models.LedgerKey, deltaKg, requiredFloor float64, priceOverride *float64) (models.StockRecord, Compensation, error) {
	before, after, err := e.ledger.Adjust(ctx, key, deltaKg, requiredFloor, priceOverride)
	if err != nil {
		return models.StockRecord{}, nil, err
	}

	e.logger.Debug("stock adjusted",
		zap.String("produce", key.ProduceName),
		zap.String("type", key.ProduceType),
		zap.String("branch", key.Branch),
		zap.Float64("delta_kg", deltaKg),
		zap.Float64("quantity_kg", after.QuantityKg))

	var restorePrice *float64
	if priceOverride != nil && before != nil {
		prior := before.UnitPrice
		restorePrice = &prior
	}

	compensation := func(ctx context.Context) error {
		if _, _, err := e.ledger.Adjust(ctx, key, -deltaKg, 0, restorePrice); err != nil {
			e.logger.Error("stock compensation failed",
				zap.String("produce", key.ProduceName),
				zap.String("type", key.ProduceType),
				zap.String("branch", key.Branch),
				zap.Float64("delta_kg", -deltaKg),
				zap.Error(err))
			return err
		}
		return nil
	}

	return after, compensation, nil
}
