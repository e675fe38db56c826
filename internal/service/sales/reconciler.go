package sales

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/config"
	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/service/stock"
)

// ErrSettlementVariantImmutable indicates an attempt to change a sale's
// settlement variant after creation.
var ErrSettlementVariantImmutable = errors.New("settlement variant cannot be changed")

// AlertSink receives the stock notifications the reconciler triggers. All
// calls are best-effort: a failed write never blocks the sale itself.
type AlertSink interface {
	StockUnavailable(ctx context.Context, produceName, branch string) error
	LowStockBlock(ctx context.Context, key models.LedgerKey, requestedKg, availableKg float64) error
	OutOfStock(ctx context.Context, key models.LedgerKey) error
}

// Service reconciles sale events with the stock ledger. A sale consumes
// stock, so the delta logic mirrors procurement with inverted sign: growing a
// sale must pass the sufficiency guard, shrinking one credits stock back
// unconditionally.
type Service struct {
	engine *stock.Engine
	events mongodb.SaleStore
	ledger mongodb.LedgerStore
	alerts AlertSink
	cfg    config.LedgerConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs a sale reconciler.
func NewService(engine *stock.Engine, events mongodb.SaleStore, ledger mongodb.LedgerStore, alerts AlertSink, cfg config.LedgerConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine: engine,
		events: events,
		ledger: ledger,
		alerts: alerts,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// resolveKey turns a request into an exact ledger key. An omitted produce type
// resolves only when the produce name is unambiguous within the branch.
func (s *Service) resolveKey(ctx context.Context, req models.SaleRequest) (models.LedgerKey, error) {
	if req.ProduceType != "" {
		return models.LedgerKey{
			ProduceName: req.ProduceName,
			ProduceType: req.ProduceType,
			Branch:      req.Branch,
		}, nil
	}

	matches, err := s.ledger.ListByNameAndBranch(ctx, req.ProduceName, req.Branch)
	if err != nil {
		return models.LedgerKey{}, err
	}

	switch len(matches) {
	case 0:
		s.notifyUnavailable(ctx, req.ProduceName, req.Branch)
		return models.LedgerKey{}, &models.LedgerKeyNotFoundError{
			Key: models.LedgerKey{ProduceName: req.ProduceName, Branch: req.Branch},
		}
	case 1:
		return matches[0].Key(), nil
	default:
		types := make([]string, 0, len(matches))
		for _, m := range matches {
			types = append(types, m.ProduceType)
		}
		return models.LedgerKey{}, &models.AmbiguousProduceTypeError{
			ProduceName: req.ProduceName,
			Branch:      req.Branch,
			Types:       types,
		}
	}
}

// priceAndTotal reads the ledger price for the key and validates the caller's
// declared settlement amount against the derived total.
func (s *Service) priceAndTotal(ctx context.Context, key models.LedgerKey, req models.SaleRequest) (price, total float64, err error) {
	record, err := s.ledger.Get(ctx, key)
	if err != nil {
		var notFound *models.LedgerKeyNotFoundError
		if errors.As(err, &notFound) {
			s.notifyUnavailable(ctx, key.ProduceName, key.Branch)
		}
		return 0, 0, err
	}

	total = record.UnitPrice * req.TonnageKg
	if math.Abs(req.Amount-total) > s.cfg.PriceTolerance {
		return 0, 0, &models.PriceMismatchError{Key: key, Declared: req.Amount, Expected: total}
	}
	if total < s.cfg.MinTransactionValue {
		return 0, 0, &models.BelowMinimumTransactionValueError{Total: total, Minimum: s.cfg.MinTransactionValue}
	}
	return record.UnitPrice, total, nil
}

// CreateOutflow records a sale: it debits the ledger under the sufficiency
// guard, persists the event, and compensates the debit when persistence fails.
func (s *Service) CreateOutflow(ctx context.Context, actor models.Actor, variant models.SettlementVariant, req models.SaleRequest) (models.SaleEvent, error) {
	key, err := s.resolveKey(ctx, req)
	if err != nil {
		return models.SaleEvent{}, err
	}

	price, total, err := s.priceAndTotal(ctx, key, req)
	if err != nil {
		return models.SaleEvent{}, err
	}

	after, compensate, err := s.engine.Apply(ctx, key, -req.TonnageKg, 0, nil)
	if err != nil {
		s.notifyBlocked(ctx, key, err)
		return models.SaleEvent{}, err
	}

	event := models.SaleEvent{
		Variant:     variant,
		ProduceName: key.ProduceName,
		ProduceType: key.ProduceType,
		Branch:      key.Branch,
		TonnageKg:   req.TonnageKg,
		UnitPrice:   price,
		Total:       total,
		SoldBy:      actor.Name,
		Date:        s.eventDate(req.Date),
	}
	applyCounterparty(&event, variant, req)

	persisted, err := s.events.Insert(ctx, event)
	if err != nil {
		if rbErr := compensate(ctx); rbErr != nil {
			s.logger.Error("sale compensation failed", zap.Error(rbErr))
		}
		return models.SaleEvent{}, &models.PersistenceError{Op: "sale creation", Err: err}
	}

	if after.QuantityKg == 0 {
		s.notifyExhausted(ctx, key)
	}

	s.logger.Info("sale recorded",
		zap.String("produce", key.ProduceName),
		zap.String("branch", key.Branch),
		zap.Float64("tonnage_kg", req.TonnageKg),
		zap.Float64("total", total),
		zap.String("sold_by", actor.Name))

	return persisted, nil
}

// Revise re-resolves the key, re-validates the amount against the current
// ledger price and applies the tonnage difference with a sale's sign. The
// settlement variant is immutable and checked before any stock mutation.
func (s *Service) Revise(ctx context.Context, actor models.Actor, eventID primitive.ObjectID, variant models.SettlementVariant, req models.SaleRequest) (models.SaleEvent, error) {
	old, err := s.events.Get(ctx, eventID)
	if err != nil {
		return models.SaleEvent{}, err
	}

	if variant != "" && variant != old.Variant {
		return models.SaleEvent{}, ErrSettlementVariantImmutable
	}

	key, err := s.resolveKey(ctx, req)
	if err != nil {
		return models.SaleEvent{}, err
	}

	price, total, err := s.priceAndTotal(ctx, key, req)
	if err != nil {
		return models.SaleEvent{}, err
	}

	uow := stock.NewUnitOfWork(s.logger)

	if key == old.Key() {
		// Inverted sign: selling more consumes stock and must pass the guard,
		// selling less returns stock unconditionally.
		delta := req.TonnageKg - old.TonnageKg
		if delta != 0 {
			_, compensate, err := s.engine.Apply(ctx, key, -delta, 0, nil)
			if err != nil {
				s.notifyBlocked(ctx, key, err)
				return models.SaleEvent{}, err
			}
			uow.Defer(compensate)
		}
	} else {
		_, creditComp, err := s.engine.Apply(ctx, old.Key(), old.TonnageKg, 0, nil)
		if err != nil {
			return models.SaleEvent{}, err
		}
		uow.Defer(creditComp)

		_, debitComp, err := s.engine.Apply(ctx, key, -req.TonnageKg, 0, nil)
		if err != nil {
			s.notifyBlocked(ctx, key, err)
			if rbErr := uow.Rollback(ctx); rbErr != nil {
				s.logger.Error("sale migration rollback failed", zap.Error(rbErr))
			}
			return models.SaleEvent{}, err
		}
		uow.Defer(debitComp)
	}

	updated := old
	updated.ProduceName = key.ProduceName
	updated.ProduceType = key.ProduceType
	updated.Branch = key.Branch
	updated.TonnageKg = req.TonnageKg
	updated.UnitPrice = price
	updated.Total = total
	updated.Date = s.eventDate(req.Date)
	applyCounterparty(&updated, old.Variant, req)

	if err := s.events.Update(ctx, updated); err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			s.logger.Error("sale revision rollback failed", zap.Error(rbErr))
		}
		return models.SaleEvent{}, &models.PersistenceError{Op: "sale revision", Err: err}
	}

	s.logger.Info("sale revised",
		zap.String("event_id", eventID.Hex()),
		zap.String("revised_by", actor.Name))

	return updated, nil
}

// Remove credits the sold tonnage back to the ledger and deletes the event,
// re-debiting when the delete fails.
func (s *Service) Remove(ctx context.Context, actor models.Actor, eventID primitive.ObjectID) error {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}

	_, compensate, err := s.engine.Apply(ctx, event.Key(), event.TonnageKg, 0, nil)
	if err != nil {
		return err
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		if rbErr := compensate(ctx); rbErr != nil {
			s.logger.Error("sale removal compensation failed", zap.Error(rbErr))
		}
		return &models.PersistenceError{Op: "sale removal", Err: err}
	}

	s.logger.Info("sale removed",
		zap.String("event_id", eventID.Hex()),
		zap.String("removed_by", actor.Name))

	return nil
}

func applyCounterparty(event *models.SaleEvent, variant models.SettlementVariant, req models.SaleRequest) {
	switch variant {
	case models.SettlementImmediate:
		event.BuyerName = req.BuyerName
		event.AmountPaid = req.Amount
	case models.SettlementDeferred:
		event.DealerName = req.DealerName
		event.DealerLocation = req.DealerLocation
		event.DealerContact = req.DealerContact
		event.AmountDue = req.Amount
		event.DueDate = req.DueDate
	}
}

func (s *Service) notifyUnavailable(ctx context.Context, produceName, branch string) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.StockUnavailable(ctx, produceName, branch); err != nil {
		s.logger.Warn("stock-unavailable alert failed", zap.Error(err))
	}
}

func (s *Service) notifyBlocked(ctx context.Context, key models.LedgerKey, cause error) {
	var insufficient *models.InsufficientStockError
	if s.alerts == nil || !errors.As(cause, &insufficient) {
		return
	}
	if err := s.alerts.LowStockBlock(ctx, key, insufficient.RequestedKg, insufficient.AvailableKg); err != nil {
		s.logger.Warn("low-stock alert failed", zap.Error(err))
	}
}

func (s *Service) notifyExhausted(ctx context.Context, key models.LedgerKey) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.OutOfStock(ctx, key); err != nil {
		s.logger.Warn("out-of-stock alert failed", zap.Error(err))
	}
}

func (s *Service) eventDate(date time.Time) time.Time {
	if date.IsZero() {
		return s.now().UTC()
	}
	return date
}
